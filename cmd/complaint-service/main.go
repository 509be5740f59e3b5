package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/auth"
	"github.com/beashaj2001/complaintsManagement/internal/config"
	"github.com/beashaj2001/complaintsManagement/internal/httpapi"
	"github.com/beashaj2001/complaintsManagement/internal/hub"
	"github.com/beashaj2001/complaintsManagement/internal/metrics"
	"github.com/beashaj2001/complaintsManagement/internal/notify"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
	"github.com/beashaj2001/complaintsManagement/internal/store/postgres"
	"github.com/beashaj2001/complaintsManagement/internal/sweeper"
	"github.com/beashaj2001/complaintsManagement/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup(context.Background(), "complaint-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, nil)
	if err != nil {
		log.Fatalf("auth config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool, postgres.Options{BcryptCost: cfg.BcryptCost})

	var revoker auth.Revoker = auth.NewMemoryRevoker(nil)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := auth.ConnectRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer func() { _ = client.Close() }()
		revoker = auth.NewRedisRevoker(client)
		log.Printf("token revocation backend=redis")
	}

	evaluator := sla.NewEvaluator(sla.Options{Logger: log.Default()})
	m := metrics.New()
	h := hub.New()
	sweep := sweeper.New(store, sweeper.Options{
		BatchSize: cfg.SweepBatchSize,
		Evaluator: evaluator,
		Publisher: h,
		Notifier:  notify.NewProvider(cfg.NotifyProvider, cfg.NotifyWebhookToken),
		Metrics:   m,
	})

	handler := httpapi.NewHandler(store, httpapi.Options{
		Issuer:    issuer,
		Revoker:   revoker,
		Evaluator: evaluator,
		Hub:       h,
		Sweeper:   sweep,
		Metrics:   m,
		Live:      cfg.ChatbotLiveEnabled,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:   cfg.RateLimitPerMinute,
		IPBurst:       cfg.RateLimitBurst,
		UserPerMinute: cfg.UserRateLimitPerMinute,
		UserBurst:     cfg.UserRateLimitBurst,
	})

	routes := handler.AuthMiddleware(limiter.UserMiddleware(handler.Routes()))
	chain := httpapi.LoggingMiddleware(m, httpapi.CORSMiddleware(cfg.CORSOrigins, limiter.Middleware(routes)))
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     otelhttp.NewHandler(chain, "complaint-service"),
		ReadTimeout: 10 * time.Second,
		// Live sessions stream over long-lived responses.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	if !cfg.ChatbotLiveEnabled {
		server.WriteTimeout = 15 * time.Second
	}

	ctx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweep.Run(ctx, cfg.SweepInterval)

	go func() {
		log.Printf("complaint-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
