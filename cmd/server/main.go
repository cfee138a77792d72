package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	grpcdelivery "github.com/Xausdorf/upi-qr-pay/internal/delivery/grpc"
	httpdelivery "github.com/Xausdorf/upi-qr-pay/internal/delivery/http"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/receipt"
	"github.com/Xausdorf/upi-qr-pay/internal/domain/upi"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/config"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/metrics"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/qrgenerator"
	"github.com/Xausdorf/upi-qr-pay/internal/infrastructure/sessionstore"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/checkout"
	"github.com/Xausdorf/upi-qr-pay/internal/usecase/generateqr"
)

const (
	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 5 * time.Second
	sessionSweepInterval  = time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if !upi.ValidVPA(cfg.MerchantVPA) || cfg.MerchantName == "" {
		return errors.New("MERCHANT_VPA must be a valid upi id and MERCHANT_NAME non-empty")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	qrGen := qrgenerator.NewGenerator(cfg.QRSize)
	generateQRUC := generateqr.NewUseCase(qrGen)
	checkoutUC := checkout.NewUseCase(
		checkout.Merchant{VPA: cfg.MerchantVPA, Name: cfg.MerchantName},
		receipt.SystemClock{},
		receipt.RandomIDs{},
	)

	sessions := sessionstore.New[httpdelivery.Session](cfg.SessionTTL)
	go sessions.RunJanitor(ctx, sessionSweepInterval)

	handler := httpdelivery.NewHandler(checkoutUC, generateQRUC, sessions, m, logger)
	router := httpdelivery.NewRouter(handler, httpdelivery.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        m,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	grpcSrv := grpcdelivery.NewServer(grpcdelivery.NewHandler(generateQRUC, m), reg)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	go func() {
		logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
		if serveErr := grpcSrv.Serve(lis); serveErr != nil {
			logger.Error("grpc serve failed", "error", serveErr)
			cancel()
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "merchant", cfg.MerchantVPA)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", serveErr)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	grpcSrv.GracefulStop()

	return nil
}
