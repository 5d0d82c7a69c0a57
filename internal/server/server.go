package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/Juicern/sttrelay/internal/config"
)

type Server struct {
	cfg     config.HTTPConfig
	handler http.Handler
	logger  *slog.Logger
}

func New(cfg config.HTTPConfig, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort("", s.cfg.Port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve handles requests on l until ctx is cancelled, then shuts down within
// the configured timeout. If the listener fails first, Serve returns its error
// once the shutdown goroutine has exited.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpServer := &http.Server{
		Handler: s.handler,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed", slog.Any("error", err))
		}
	}()

	s.logger.Info("server listening", slog.String("address", "http://"+l.Addr().String()))
	err := httpServer.Serve(l)
	cancel()
	<-done

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
