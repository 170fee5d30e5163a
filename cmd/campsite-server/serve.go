package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"campsite/backend/internal/config"
	"campsite/backend/internal/logging"
	"campsite/backend/internal/service/reservations"
	"campsite/backend/internal/store"
	"campsite/backend/internal/store/memory"
	"campsite/backend/internal/store/postgres"
	"campsite/backend/internal/telemetry"
	ginserver "campsite/backend/internal/transport/gin"
	grpcTransport "campsite/backend/internal/transport/grpc"
	"campsite/backend/migrations"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cfg, migrateUp)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations before serving")
	return cmd
}

func serve(cfg config.Config, migrateUp bool) error {
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, serviceName)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	st, ready, closeStore, err := openStore(ctx, log, cfg, migrateUp)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := reservations.NewService(st, reservations.WithPolicy(reservations.Policy{
		MaxNights:     cfg.MaxNights,
		HorizonMonths: cfg.HorizonMonths,
		MaxWindowDays: cfg.AvailabilityMaxDays,
	}))

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcTransport.UnaryServerRequestIDInterceptor(),
			grpcTransport.DefaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
		),
	)
	grpcTransport.RegisterCampsiteServiceServer(grpcServer, grpcTransport.NewCampsiteServer(svc, log,
		grpcTransport.WithDefaultWindowDays(cfg.AvailabilityDefaultDays),
	))

	handlers := ginserver.Handlers{
		Reservation:  ginserver.ReservationHandler{Svc: svc, Log: log},
		Availability: ginserver.AvailabilityHandler{Svc: svc, Log: log, DefaultDays: cfg.AvailabilityDefaultDays},
		Health:       ginserver.HealthHandlers{Ready: ready},
	}
	if cfg.RateLimitEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed", slog.Any("err", err), slog.String("redis_addr", cfg.RedisAddr), slog.Bool("fail_open", cfg.RateLimitFailOpen))
		}
		limiter := ginserver.NewRedisRateLimiter(rdb, ginserver.RateLimitConfig{
			Limit:    cfg.RateLimitLimit,
			Window:   cfg.RateLimitWindow,
			FailOpen: cfg.RateLimitFailOpen,
		}, log)
		handlers.RateLimit = limiter.Middleware()
		log.Info("rate limiting enabled", slog.Int("limit", cfg.RateLimitLimit), slog.Duration("window", cfg.RateLimitWindow))
	}
	httpServer := ginserver.NewServer(ginserver.ServerConfig{Addr: cfg.HTTPAddr, Mode: cfg.HTTPMode}, log, handlers)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", cfg.GRPCAddr(), err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("http_addr", cfg.HTTPAddr))

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped with error", slog.Any("err", err))
			serveErr = err
		}
	}

	shutdown(log, grpcServer, httpServer, cfg.ShutdownTimeout)
	return serveErr
}

// openStore returns the configured reservation store together with its
// readiness check and a close func.
func openStore(ctx context.Context, log *slog.Logger, cfg config.Config, migrateUp bool) (store.ReservationStore, func(context.Context) error, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory reservation store; data is lost on restart")
		st := memory.NewReservationStore()
		return st, st.Ping, func() {}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}

	if migrateUp {
		applied, err := migrations.Up(ctx, db)
		if err != nil {
			closeDB()
			return nil, nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("migrations applied", slog.Int("count", len(applied)))
	}

	return postgres.NewReservationRepo(db), postgres.ReadyCheck(db), closeDB, nil
}

func shutdown(log *slog.Logger, g *grpc.Server, h *http.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		g.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("servers stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		g.Stop()
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
