package http

import (
	"context"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
)

// QueueService is the part of the mediator the status API reads and drives.
type QueueService interface {
	List(ctx context.Context, state models.EntryState, limit int) ([]models.QueueEntry, error)
	Get(ctx context.Context, id int64) (models.QueueEntry, error)
	Replay(ctx context.Context, id int64) (models.QueueEntry, error)
	WorkInProgress() map[string]string
}

type Handler struct {
	queue   QueueService
	version string

	logger *logger.Logger
}

func NewHandler(queue QueueService, version string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		queue:   queue,
		version: version,
		logger:  logger,
	}
}
