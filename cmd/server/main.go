// Package main runs the holder report HTTP service:
// - POST /api/v1/reports and GET /api/v1/reports/:mint build reports on demand
// - /api/v1/usage summarizes upstream usage and credits
// - /health and /metrics for operations
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"solana-holder-lab/internal/app"
	"solana-holder-lab/internal/config"
	"solana-holder-lab/internal/handler"
	"solana-holder-lab/internal/logger"
	"solana-holder-lab/internal/observability"
)

const serviceName = "holder-lab"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(serviceName)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	// Parse flags (env values as defaults)
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string for usage events")
	flag.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string for usage events")
	flag.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis address for the upstream response cache")
	flag.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "YAML known-address catalog override")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "Human-readable console logs")
	useMemory := flag.Bool("use-memory", false, "Keep usage events in memory even if DSNs are set (only the most recent 100000 are retained)")
	flag.Parse()

	if *useMemory {
		cfg.PostgresDSN, cfg.ClickhouseDSN = "", ""
	}

	log := logger.NewWithConfig(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Version: app.Version,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("shutdown complete")
}

func newRouter(a *app.App, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(serviceName), requestLogger(log))

	r.GET("/metrics", gin.WrapH(observability.HandlerFor(a.Registry)))
	handler.New(a.Tracer, a.Assembler, a.Usage, log).RegisterRoutes(r)
	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
