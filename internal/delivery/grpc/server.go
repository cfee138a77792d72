package grpc

import (
	grpcprom "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/Xausdorf/upi-qr-pay/internal/rpc/linkv1"
)

// NewServer wires the handler into a gRPC server with per-method metrics
// registered on reg.
func NewServer(h *Handler, reg prometheus.Registerer) *grpc.Server {
	serverMetrics := grpcprom.NewServerMetrics()
	reg.MustRegister(serverMetrics)

	srv := grpc.NewServer(
		grpc.UnaryInterceptor(serverMetrics.UnaryServerInterceptor()),
		grpc.StreamInterceptor(serverMetrics.StreamServerInterceptor()),
	)
	linkv1.RegisterPaymentLinksServer(srv, h)
	serverMetrics.InitializeMetrics(srv)

	return srv
}
