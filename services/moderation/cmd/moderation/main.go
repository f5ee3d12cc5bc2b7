package main

import (
	"context"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/example/mentor-platform/internal/platform/auth"
	"github.com/example/mentor-platform/internal/platform/events"
	"github.com/example/mentor-platform/internal/platform/httpserver"
	"github.com/example/mentor-platform/internal/platform/logging"
	"github.com/example/mentor-platform/internal/platform/metrics"
	"github.com/example/mentor-platform/internal/platform/natsconn"
	"github.com/example/mentor-platform/internal/platform/run"
	"github.com/example/mentor-platform/services/moderation/internal/bootstrap"
	"github.com/example/mentor-platform/services/moderation/internal/config"
	"github.com/example/mentor-platform/services/moderation/internal/flags"
	"github.com/example/mentor-platform/services/moderation/internal/grpcapi"
	"github.com/example/mentor-platform/services/moderation/internal/handlers"
	"github.com/example/mentor-platform/services/moderation/internal/messages"
	"github.com/example/mentor-platform/services/moderation/internal/store"
	"github.com/example/mentor-platform/services/moderation/internal/votes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New("moderation")

	kv, closeKV, err := bootstrap.OpenKV(context.Background(), cfg.Storage, log, m)
	if err != nil {
		log.Error("storage init", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}
	st := store.New(kv, cfg.Storage.Namespace)

	// Events are best effort: without NATS the service runs with a no-op publisher.
	pub := events.New(nil, log)
	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.ServiceName, Logger: log})
	if err != nil {
		log.Warn("nats unavailable, moderation events disabled", zap.Error(err))
	} else {
		js, err := nc.JetStream()
		if err != nil {
			log.Warn("jetstream unavailable, moderation events disabled", zap.Error(err))
		} else if err := events.EnsureStream(js); err != nil {
			log.Warn("ensure moderation stream", zap.Error(err))
		} else {
			pub = events.New(js, log)
		}
	}

	deps := handlers.Deps{
		Store:    st,
		Votes:    votes.New(st, votes.WithMetrics(m)),
		Flags:    flags.New(st, flags.WithPublisher(pub), flags.WithMetrics(m)),
		Messages: messages.New(st, messages.WithPublisher(pub), messages.WithMetrics(m)),
		Log:      log,
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, every authenticated route will reject tokens")
	}
	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return kv.Ping(ctx)
		},
		Metrics: m.Handler(),
		Logger:  log,
	})
	handlers.Mount(r, deps, verifier)

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Router: r})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		closeKV()
		_ = log.Sync()
		run.Exit(1)
	}
	grpcSrv, health := grpcapi.NewServer(&grpcapi.ModerationService{
		Votes:    deps.Votes,
		Flags:    deps.Flags,
		Messages: deps.Messages,
		Log:      log,
	}, verifier)
	go func() {
		log.Info("grpc server starting", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		return srv.Start(log)
	})

	health.SetServingStatus(grpcapi.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	runner.Graceful(
		srv.Shutdown,
		func(ctx context.Context) error {
			stopped := make(chan struct{})
			go func() {
				grpcSrv.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-ctx.Done():
				grpcSrv.Stop()
			}
			return nil
		},
	)

	if nc != nil {
		// Drain flushes async publishes still in flight.
		if err := nc.Drain(); err != nil {
			log.Warn("nats drain", zap.Error(err))
		}
	}
	log.Info("exit", zap.Int("code", code))
	closeKV()
	_ = log.Sync()
	run.Exit(code)
}
