package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/logger"
)

const shutdownTimeout = 5 * time.Second

type httpServer struct {
	server *http.Server
	logger *logger.Logger
}

func newHTTPServer(handler http.Handler, cfg config.Server, logger *logger.Logger) *httpServer {
	if cfg.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, cfg.RequestTimeout, "request timed out")
	}

	return &httpServer{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (h *httpServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return err
	}
	return h.serve(ctx, listener)
}

func (h *httpServer) serve(ctx context.Context, listener net.Listener) error {
	served := make(chan error, 1)
	go func() {
		h.logger.Info().Str("address", listener.Addr().String()).Msg("Launching HTTP server")
		served <- h.server.Serve(listener)
	}()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		h.logger.Err(err).Str("func", "httpServer.Run").Msg("HTTP server Shutdown")
		return err
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	h.logger.Info().Msg("server Shutdown gracefully")
	return nil
}
