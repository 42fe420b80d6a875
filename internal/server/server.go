package server

import (
	"net/http"

	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/logger"
)

// NewServer returns the status API server for handler. It fails when no
// listen address is configured.
func NewServer(handler http.Handler, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return newHTTPServer(handler, cfg, logger), nil
}
