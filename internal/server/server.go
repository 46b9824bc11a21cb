package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-gatekeeper/internal/logger"
)

type server struct {
	mux    *Multiplexor
	logger *logger.Logger
}

// NewServer wraps a bound multiplexor in the process lifecycle.
func NewServer(mux *Multiplexor, logger *logger.Logger) Server {
	logger.Info().Msg("creating new server...")

	return &server{
		mux:    mux,
		logger: logger,
	}
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Err(err).Msg("error running server")
	}
}

func (s *server) Shutdown() {
	s.mux.Shutdown()
}

func (s *server) run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	s.logger.Info().Msg("launching TCP server")
	if err := s.mux.Run(ctx); err != nil {
		return err
	}

	s.logger.Info().Msg("server shutdown gracefully")
	return nil
}
