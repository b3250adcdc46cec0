package scanner

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/myze/momentum/internal/engine"
	"github.com/myze/momentum/internal/external/fmp"
	"github.com/myze/momentum/pkg/config"
	"github.com/myze/momentum/pkg/logger"
)

// QuoteSource is the provider surface the scanner needs.
type QuoteSource interface {
	StockList(ctx context.Context, max int) ([]string, error)
	BatchQuotes(ctx context.Context, symbols []string, batchSize int) ([]fmp.Quote, error)
}

// Scanner turns the raw symbol universe into ranked momentum inputs,
// bucketed by float size.
type Scanner struct {
	cfg config.ScannerConfig
	src QuoteSource
	log *logger.Logger
}

// Result holds the ranked buckets of one scan, highest rvol first.
type Result struct {
	High []engine.MomentumInput
	Low  []engine.MomentumInput
}

// New creates a scanner over the given quote source.
func New(cfg config.ScannerConfig, src QuoteSource, log *logger.Logger) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{cfg: cfg, src: src, log: log}
}

// Scan fetches the universe, enriches every quote and returns the top
// N of each float bucket ranked by relative volume.
func (s *Scanner) Scan(ctx context.Context) (Result, error) {
	symbols, err := s.src.StockList(ctx, s.cfg.MaxSymbols)
	if err != nil {
		return Result{}, fmt.Errorf("scan universe: %w", err)
	}

	quotes, err := s.src.BatchQuotes(ctx, symbols, s.cfg.BatchSize)
	if err != nil {
		return Result{}, fmt.Errorf("scan quotes: %w", err)
	}

	var high, low []engine.MomentumInput
	skipped := 0
	for _, q := range quotes {
		in, ok := s.enrich(q)
		if !ok {
			skipped++
			continue
		}
		switch in.Bucket {
		case engine.BucketHigh:
			high = append(high, in)
		case engine.BucketLow:
			low = append(low, in)
		}
	}

	rankByRVol(high)
	rankByRVol(low)

	res := Result{
		High: top(high, s.cfg.TopN),
		Low:  top(low, s.cfg.TopN),
	}

	s.log.WithFields(map[string]interface{}{
		"universe": len(symbols),
		"quotes":   len(quotes),
		"skipped":  skipped,
		"high":     len(res.High),
		"low":      len(res.Low),
	}).Info("Scan completed")

	return res, nil
}

// enrich derives the scan-level fields for one quote. The false return
// covers quotes that are ineligible (price floor, mid-size float) or
// malformed enough to fail input validation.
func (s *Scanner) enrich(q fmp.Quote) (engine.MomentumInput, bool) {
	price := q.Price
	if price <= 0 {
		price = q.Open
	}
	if price < s.cfg.MinPrice || price <= 0 {
		return engine.MomentumInput{}, false
	}

	floatShares := q.FloatShares
	if floatShares == 0 {
		floatShares = q.SharesOutstanding
	}

	bucket, ok := s.bucketFor(floatShares)
	if !ok {
		return engine.MomentumInput{}, false
	}

	open := q.Open
	prevClose := q.PreviousClose
	if prevClose == 0 {
		prevClose = open
	}
	high := q.DayHigh
	if high == 0 {
		high = open
	}
	low := q.DayLow
	if low == 0 {
		low = open
	}

	var gapPct float64
	if prevClose > 0 {
		gapPct = (open - prevClose) / prevClose * 100
	}

	// True range of the day as the volatility proxy.
	atr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(prevClose-low)))
	if atr < 0 {
		atr = 0
	}

	avgVolume := q.AvgVolume
	if avgVolume == 0 {
		avgVolume = q.Volume
	}
	var rvol float64
	if avgVolume > 0 {
		rvol = float64(q.Volume) / float64(avgVolume)
	}

	in, err := engine.NewMomentumInput(q.Symbol, bucket, price, q.Volume, floatShares, rvol, atr, gapPct)
	if err != nil {
		s.log.WithError(err).WithField("symbol", q.Symbol).Debug("Skipping malformed quote")
		return engine.MomentumInput{}, false
	}

	return in, true
}

// bucketFor assigns the float bucket. Mid-size floats belong to
// neither momentum list and are dropped.
func (s *Scanner) bucketFor(floatShares int64) (engine.Bucket, bool) {
	switch {
	case floatShares > 0 && floatShares < s.cfg.LowFloatMax:
		return engine.BucketLow, true
	case floatShares >= s.cfg.HighFloatMin:
		return engine.BucketHigh, true
	default:
		return "", false
	}
}

func rankByRVol(inputs []engine.MomentumInput) {
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].RVol > inputs[j].RVol
	})
}

func top(inputs []engine.MomentumInput, n int) []engine.MomentumInput {
	if n > 0 && len(inputs) > n {
		return inputs[:n]
	}
	return inputs
}
