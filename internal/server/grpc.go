package server

import (
	"net"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-offline-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/pushrpc"
)

type grpcServer struct {
	server  *grpc.Server
	address string

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	server := grpc.NewServer()
	pushrpc.RegisterPushServer(server, handler)

	return &grpcServer{
		server:  server,
		address: cfg.GRPCAddress,
		logger:  logger,
	}
}

func (g *grpcServer) Name() string    { return "grpc" }
func (g *grpcServer) Address() string { return g.address }

func (g *grpcServer) RunServer() {
	lis, err := net.Listen("tcp", g.address)
	if err != nil {
		g.logger.Error().Err(err).Str("func", "*grpcServer.RunServer").Str("address", g.address).Msg("gRPC listen failed")
		return
	}

	if err := g.server.Serve(lis); err != nil {
		g.logger.Error().Err(err).Str("func", "*grpcServer.RunServer").Msg("gRPC server Serve failed")
	}
}

// Shutdown stops the server. Push streams never finish on their own, so
// GracefulStop is not used.
func (g *grpcServer) Shutdown() {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.server.Stop()
}
