// Command factshare-server starts the factshare gRPC server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/factshare/internal/janitor"
	"github.com/and161185/factshare/internal/limiter"
	"github.com/and161185/factshare/internal/migrate"
	"github.com/and161185/factshare/internal/repository"
	"github.com/and161185/factshare/internal/repository/memory"
	"github.com/and161185/factshare/internal/repository/postgres"
	"github.com/and161185/factshare/internal/rpc"
	grpcserver "github.com/and161185/factshare/internal/server/grpc"
	"github.com/and161185/factshare/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type stores struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	facts    repository.FactRepository
	lim      limiter.Limiter
	close    func()
}

// main loads .env, parses configuration and serves until SIGINT/SIGTERM.
func main() {
	_ = godotenv.Load()

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// buildLogger returns a production logger at level; outputs default to stderr.
func buildLogger(level string, outputs ...string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	if len(outputs) > 0 {
		zc.OutputPaths = outputs
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

func openStores(ctx context.Context, cfg serverConfig, log *zap.Logger) (stores, error) {
	if cfg.Store == storeMemory {
		log.Warn("using in-memory store; data is lost on exit")
		m := memory.New()
		return stores{
			users:    m.Users(),
			sessions: m.Sessions(),
			facts:    m.Facts(),
			lim:      limiter.NewMemory(limiter.DefaultPolicy),
			close:    func() {},
		}, nil
	}

	if err := migrate.Up(ctx, cfg.DSN, log); err != nil {
		return stores{}, fmt.Errorf("migrate up: %w", err)
	}
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return stores{}, fmt.Errorf("connect: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return stores{}, fmt.Errorf("ping: %w", err)
	}
	return stores{
		users:    postgres.NewUserRepo(db),
		sessions: postgres.NewSessionRepo(db),
		facts:    postgres.NewFactRepo(db),
		lim:      limiter.NewPG(db.Pool, limiter.DefaultPolicy),
		close:    db.Close,
	}, nil
}

func run(ctx context.Context, cfg serverConfig, logger *zap.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	authSvc := service.NewAuthService(st.users, st.sessions, []byte(cfg.JWTKey), cfg.AccessTTL, st.lim)
	factSvc := service.NewFactService(st.facts)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := grpcserver.NewMetrics(reg)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			metrics.Unary(),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(authSvc, grpcserver.PublicMethods()...),
		),
	}
	if !cfg.Plaintext {
		creds, err := credentials.NewServerTLSFromFile(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("serving without TLS")
	}
	s := grpc.NewServer(opts...)
	rpc.RegisterFactsServer(s, grpcserver.New(authSvc, factSvc))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	jan, err := janitor.New(st.sessions, cfg.JanitorEvery, logger.Named("janitor"))
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", !cfg.Plaintext))
		errCh <- s.Serve(lis)
	}()

	jan.Start()
	defer func() { _ = jan.Shutdown() }()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	hs.Shutdown()
	if metricsSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(sctx)
		cancel()
	}
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Stop()
	}
	return runErr
}
