package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/myze/momentum/internal/api"
	"github.com/myze/momentum/internal/api/handlers"
	"github.com/myze/momentum/internal/engine"
	"github.com/myze/momentum/internal/external/fmp"
	"github.com/myze/momentum/internal/refresh"
	"github.com/myze/momentum/internal/scanner"
	"github.com/myze/momentum/internal/scheduler"
	"github.com/myze/momentum/pkg/config"
	"github.com/myze/momentum/pkg/httputil"
	"github.com/myze/momentum/pkg/logger"
	"github.com/myze/momentum/pkg/metrics"
	"github.com/myze/momentum/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the momentum proxy server",
	Long: `Starts the HTTP server and the 60-second snapshot refresh loop.

This command:
- Serves the momentum snapshot API and the embedded widget
- Polls FMP on the configured interval
- Pushes fresh snapshots over the websocket

Endpoints:
  GET /health             - Health check
  GET /momentum/low       - Low-float snapshot
  GET /momentum/high      - High-float snapshot
  GET /momentum/raw       - Both buckets
  GET /momentum/ws        - Snapshot push stream
  GET /metrics            - Prometheus metrics
  GET /                   - Embedded widget

Example:
  go run ./cmd/momentum serve
  go run ./cmd/momentum serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"interval": cfg.RefreshInterval,
	}).Info("Initializing momentum proxy")

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	httpClient := httputil.New(log).
		WithRateLimit(cfg.FMP.RateLimit, cfg.FMP.Burst)
	fmpClient := fmp.NewClient(cfg, httpClient, log, rec)

	scan := scanner.New(cfg.Scanner, fmpClient, log)
	refresher := refresh.New(cfg, scan, fmpClient, eng, rec, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(refresh.NewJob(refresher, cfg.RefreshInterval)); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	// First snapshot before the first tick so early widget loads are
	// not a guaranteed 503.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RefreshInterval)
		defer cancel()
		if err := refresher.Refresh(ctx); err != nil {
			log.WithError(err).Warn("Initial refresh failed")
		}
	}()

	sched.Start()
	defer sched.Stop()

	static, err := web.Static()
	if err != nil {
		return fmt.Errorf("widget assets: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Momentum:       handlers.NewMomentumHandler(refresher, log),
		WS:             handlers.NewWSHandler(refresher, log),
		Static:         static,
		MetricsEnabled: cfg.MetricsEnabled,
	}, log)

	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("Momentum proxy started")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// buildEngine wires the derivation engine from config, loading the
// optional bin threshold override file.
func buildEngine(cfg *config.Config, log *logger.Logger) (*engine.Engine, error) {
	engCfg := engine.Config{
		MinIntradayBars: cfg.Engine.MinIntradayBars,
		Location:        cfg.Exchange.Location,
		Signals: engine.SignalThresholds{
			ReversionPct: cfg.Engine.ReversionPct,
			BouncePct:    cfg.Engine.BouncePct,
			RVol:         cfg.Engine.RVolThreshold,
		},
	}

	if cfg.BinsFile != "" {
		bins, err := engine.LoadBinThresholds(cfg.BinsFile)
		if err != nil {
			return nil, fmt.Errorf("load bin thresholds: %w", err)
		}
		engCfg.Bins = bins
		log.WithField("file", cfg.BinsFile).Info("Loaded bin thresholds")
	}

	return engine.New(engCfg, log), nil
}
