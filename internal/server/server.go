package server

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/handler"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// transport is one listener of the sync server: REST with the websocket
// push channel, or the gRPC push stream.
type transport interface {
	Server
	Name() string
	Address() string
}

type server struct {
	transports []transport
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	s := &server{logger: logger}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		s.transports = append(s.transports, newHTTPServer(handlers.HTTP.Init(), cfg, logger))
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		s.transports = append(s.transports, newGRPCServer(handlers.GRPC, cfg, logger))
	}

	if len(s.transports) == 0 {
		return nil, errNoServersAreCreated
	}
	return s, nil
}

// RunServer blocks until SIGTERM, SIGINT or SIGQUIT, then shuts every
// transport down.
func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	s.run(ctx)
}

// Shutdown stops all transports in parallel and waits for them.
func (s *server) Shutdown() {
	var wg sync.WaitGroup
	for _, t := range s.transports {
		wg.Go(t.Shutdown)
	}
	wg.Wait()
}

func (s *server) run(ctx context.Context) {
	for _, t := range s.transports {
		s.logger.Info().Str("transport", t.Name()).Str("address", t.Address()).Msg("launching server")
		go t.RunServer()
	}

	<-ctx.Done()

	s.Shutdown()
	s.logger.Info().Msg("server shut down gracefully")
}
