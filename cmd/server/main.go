package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ljn0099/picoweather/internal/api"
	"github.com/ljn0099/picoweather/internal/config"
	"github.com/ljn0099/picoweather/internal/credential"
	"github.com/ljn0099/picoweather/internal/metrics"
	"github.com/ljn0099/picoweather/internal/pool"
	"github.com/ljn0099/picoweather/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "picoweather-server",
		Short: "picoweather server — multi-tenant weather-telemetry API",
		Long: `picoweather server exposes a REST API over historical weather
readings uploaded by stations, plus identity, session and API-key
management for the tenants that own those stations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("picoweather-server %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting picoweather server",
		zap.String("version", version),
		zap.Int("api_port", cfg.APIPort),
		zap.Int("max_db_conn", cfg.MaxDBConn),
		zap.String("default_timezone", cfg.DefaultTimezone),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPool, err := pool.New(ctx, pool.Config{
		DSN:    cfg.DSN(),
		Size:   cfg.MaxDBConn,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize connection pool: %w", err)
	}
	defer dbPool.Close()

	credEngine := credential.New(dbPool, logger)
	svc := service.New(dbPool, credEngine, logger, cfg.DefaultTimezone)
	handler := api.NewHandler(svc, logger, cfg.SecureCookies)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", handler)

	var rootHandler http.Handler = mux
	rootHandler = api.CORS(rootHandler)
	rootHandler = metrics.Middleware(rootHandler)
	rootHandler = api.RequestLogger(logger)(rootHandler)
	rootHandler = api.Recoverer(logger)(rootHandler)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	statsTicker := time.NewTicker(10 * time.Second)
	defer statsTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-statsTicker.C:
				metrics.ObservePool(dbPool)
			}
		}
	}()

	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.APIPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down picoweather server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server graceful shutdown error", zap.Error(err))
	}

	logger.Info("picoweather server stopped")
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
