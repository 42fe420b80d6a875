package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/internal/utils"
	"github.com/MKhiriev/lockbox/models"
)

type httpStatusAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPStatusAdapter constructs the HTTP implementation of [StatusAdapter].
// It normalises the base URL from cfg.HTTPAddress and fails if the address
// is empty or cannot be parsed.
func NewHTTPStatusAdapter(cfg config.Adapter, logger *logger.Logger) (StatusAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpStatusAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpStatusAdapter) ListEntries(ctx context.Context, state models.EntryState, limit int) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry

	req := h.client.R().SetContext(ctx).SetResult(&entries)
	if state != "" {
		req.SetQueryParam("state", string(state))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	resp, err := req.Get("/api/queue")
	if err != nil {
		h.logger.Err(err).Str("func", "httpStatusAdapter.ListEntries").Msg("request failed")
		return nil, fmt.Errorf("list entries request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return entries, nil
}

func (h *httpStatusAdapter) GetEntry(ctx context.Context, id int64) (models.QueueEntry, error) {
	var entry models.QueueEntry

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&entry).
		Get("/api/queue/{id}")
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("get entry request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.QueueEntry{}, err
	}

	return entry, nil
}

func (h *httpStatusAdapter) Replay(ctx context.Context, id int64) (models.QueueEntry, error) {
	var entry models.QueueEntry

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&entry).
		Post("/api/queue/{id}/replay")
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("replay request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.QueueEntry{}, err
	}

	return entry, nil
}

func (h *httpStatusAdapter) WorkInProgress(ctx context.Context) (map[string]string, error) {
	wip := map[string]string{}

	resp, err := h.client.R().SetContext(ctx).SetResult(&wip).Get("/api/wip")
	if err != nil {
		return nil, fmt.Errorf("work in progress request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return wip, nil
}

func (h *httpStatusAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.String()), nil
}
