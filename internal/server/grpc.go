package server

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer carries a health-check endpoint so orchestrators that probe
// gRPC can track daemon liveness next to the HTTP API.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewGRPCServer(logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	reflection.Register(srv)
	return &GRPCServer{srv: srv, health: h, logger: logger}
}

// Serve blocks on the listener until Stop is called.
func (g *GRPCServer) Serve(lis net.Listener) error {
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	g.logger.Info("grpc.serve", "addr", lis.Addr().String())
	return g.srv.Serve(lis)
}

// Stop marks the server unhealthy and drains in-flight RPCs.
func (g *GRPCServer) Stop() {
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	g.srv.GracefulStop()
}
