package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/internal/utils"
	"github.com/MKhiriev/lockbox/models"
)

const maxListLimit = 1000

// GET /api/queue?state=failed&limit=50
func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var state models.EntryState
	if raw := r.URL.Query().Get("state"); raw != "" {
		parsed, err := models.ParseEntryState(raw)
		if err != nil {
			h.fail(w, r, "*Handler.listEntries", fmt.Errorf("%w: %w", errInvalidState, err))
			return
		}
		state = parsed
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			h.fail(w, r, "*Handler.listEntries", fmt.Errorf("%w: %q", errInvalidLimit, raw))
			return
		}
		limit = parsed
	}

	entries, err := h.queue.List(r.Context(), state, limit)
	if err != nil {
		h.fail(w, r, "*Handler.listEntries", err)
		return
	}
	if entries == nil {
		entries = []models.QueueEntry{}
	}

	if _, err := utils.WriteJSON(w, entries, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.listEntries").Msg("error writing response")
	}
}

// GET /api/queue/{id}
func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		h.fail(w, r, "*Handler.getEntry", err)
		return
	}

	entry, err := h.queue.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "*Handler.getEntry", err)
		return
	}

	utils.WriteJSON(w, entry, http.StatusOK)
}

// POST /api/queue/{id}/replay
func (h *Handler) replayEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		h.fail(w, r, "*Handler.replayEntry", err)
		return
	}

	entry, err := h.queue.Replay(r.Context(), id)
	if err != nil {
		h.fail(w, r, "*Handler.replayEntry", err)
		return
	}

	logger.FromRequest(r).Info().Int64("entry_id", id).Int64("replayed_as", entry.ID).Msg("entry replayed")
	utils.WriteJSON(w, entry, http.StatusCreated)
}

// GET /api/wip
func (h *Handler) workInProgress(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.queue.WorkInProgress(), http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		logger.FromRequest(r).Err(err).Str("func", fn).Msg("request failed")
		utils.WriteError(w, http.StatusText(status), status)
		return
	}
	utils.WriteError(w, err.Error(), status)
}

func entryID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", errInvalidEntryID, raw)
	}
	return id, nil
}
