package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/myze/momentum/internal/external/fmp"
	"github.com/myze/momentum/internal/refresh"
	"github.com/myze/momentum/internal/scanner"
	"github.com/myze/momentum/pkg/httputil"
	"github.com/myze/momentum/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan cycle and print the snapshot",
	Long: `Runs a single scan-fetch-derive cycle and prints the resulting
snapshot as JSON, without starting the server.

Useful for checking FMP credentials and threshold tuning.

Example:
  go run ./cmd/momentum scan
  go run ./cmd/momentum scan --bucket low`,
	RunE: runScan,
}

var (
	scanBucket  string
	scanTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanBucket, "bucket", "raw", "bucket to print (low|high|raw)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "scan timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanBucket != "low" && scanBucket != "high" && scanBucket != "raw" {
		return fmt.Errorf("invalid bucket %q (must be low, high or raw)", scanBucket)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg)

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	httpClient := httputil.New(log).
		WithRateLimit(cfg.FMP.RateLimit, cfg.FMP.Burst)
	fmpClient := fmp.NewClient(cfg, httpClient, log, nil)

	scan := scanner.New(cfg.Scanner, fmpClient, log)
	refresher := refresh.New(cfg, scan, fmpClient, eng, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if err := refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	snap := refresher.Snapshot()

	out := map[string]interface{}{
		"market_status": snap.MarketStatus,
		"note":          snap.Note,
		"timestamp":     snap.Timestamp,
	}
	switch scanBucket {
	case "low":
		out["low_float"] = snap.LowFloat
	case "high":
		out["high_float"] = snap.HighFloat
	default:
		out["low_float"] = snap.LowFloat
		out["high_float"] = snap.HighFloat
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
