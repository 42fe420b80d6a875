package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/lockbox/internal/mediator"
	"github.com/MKhiriev/lockbox/internal/store"
)

var (
	errInvalidEntryID = errors.New("invalid entry id")
	errInvalidState   = errors.New("invalid state filter")
	errInvalidLimit   = errors.New("invalid limit")
)

var errorStatusMap = map[error]int{
	errInvalidEntryID: http.StatusBadRequest,
	errInvalidState:   http.StatusBadRequest,
	errInvalidLimit:   http.StatusBadRequest,

	mediator.ErrNotReplayable: http.StatusConflict,
	mediator.ErrInvalidEvent:  http.StatusBadRequest,

	store.ErrEntryNotFound: http.StatusNotFound,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
