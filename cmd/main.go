package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/tmarcken/hushroom/internal/infrastructure/configs"
	"github.com/tmarcken/hushroom/internal/infrastructure/logging"
	"github.com/tmarcken/hushroom/internal/infrastructure/metrics"
	"github.com/tmarcken/hushroom/internal/infrastructure/ratelimiter"
	"github.com/tmarcken/hushroom/internal/infrastructure/tracing"
	"github.com/tmarcken/hushroom/internal/infrastructure/ws"
	"github.com/tmarcken/hushroom/internal/presentation/api"
	"github.com/tmarcken/hushroom/internal/presentation/handler/health"
	"github.com/tmarcken/hushroom/internal/presentation/handler/rooms"
)

const (
	serviceName = "hushroom-relay"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})

	m := metrics.New()

	registry := ws.NewRegistry(logger, m, ws.Options{
		DestroyGraceDelay: cfg.Rooms.DestroyGraceDelay,
		MaxFrameBytes:     cfg.Rooms.MaxFrameBytes,
	})
	upgrader := ws.NewUpgrader(cfg.HTTP.AllowedOrigins)

	roomHandler := rooms.NewHandler(registry, upgrader, logger)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, *roomHandler, *healthHandler, m.Handler(), logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
