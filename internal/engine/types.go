package engine

import (
	"fmt"
	"time"
)

// Bucket classifies a ticker by float size. Assigned upstream by the
// scanner, never inside the engine.
type Bucket string

const (
	BucketHigh Bucket = "HIGH"
	BucketLow  Bucket = "LOW"
)

// Signal is the categorical entry signal attached to a record.
// String values match what the widget displays.
type Signal string

const (
	SignalNone           Signal = ""
	SignalShortReversion Signal = "Short Reversion"
	SignalLongReversion  Signal = "Long Reversion"
	SignalLongBias       Signal = "Long Bias"
	SignalShortBias      Signal = "Short Bias"
	SignalBounceZone     Signal = "Bounce Zone"
)

// Direction is the change-from-open arrow shown in the Type column.
type Direction string

const (
	DirectionUp   Direction = "↑"
	DirectionDown Direction = "↓"
	DirectionFlat Direction = "→"
)

// TimeUnavailable marks a record whose VWAP time could not be determined.
const TimeUnavailable = "—"

// Bar is a single intraday OHLCV bar. Timestamps carry the exchange
// local time; a bar slice is ordered ascending.
type Bar struct {
	Timestamp time.Time
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// EODRecord is the latest end-of-day record for a ticker, used as the
// VWAP fallback when intraday data is too sparse.
type EODRecord struct {
	Date  time.Time
	Open  *float64
	Close *float64
	VWAP  *float64
}

// RawQuote carries the per-ticker data supplied by the quote
// aggregator. Any field may be absent; absent means unknown, never zero.
type RawQuote struct {
	Ticker string
	Open   *float64
	Close  *float64
	Bars   []Bar
	EOD    *EODRecord
}

// MomentumInput is the already-known per-ticker data handed to the
// engine by the scanning/ranking step.
type MomentumInput struct {
	Ticker     string  `json:"ticker"`
	Bucket     Bucket  `json:"strategy"`
	Price      float64 `json:"price"`
	Volume     int64   `json:"volume"`
	Float      int64   `json:"float,omitempty"`
	RVol       float64 `json:"rvol"`
	ATR        float64 `json:"atr"`
	GapPercent float64 `json:"gap_pct"`
}

// NewMomentumInput builds a validated MomentumInput. A missing ticker
// or non-positive price is a contract violation, not a data-quality
// problem, so it is rejected here rather than deep inside derivation.
func NewMomentumInput(ticker string, bucket Bucket, price float64, volume, floatShares int64, rvol, atr, gapPct float64) (MomentumInput, error) {
	if ticker == "" {
		return MomentumInput{}, fmt.Errorf("momentum input: ticker is required")
	}
	if price <= 0 {
		return MomentumInput{}, fmt.Errorf("momentum input %s: price must be positive, got %v", ticker, price)
	}
	if volume < 0 {
		return MomentumInput{}, fmt.Errorf("momentum input %s: volume must be non-negative, got %d", ticker, volume)
	}
	if floatShares < 0 {
		return MomentumInput{}, fmt.Errorf("momentum input %s: float must be non-negative, got %d", ticker, floatShares)
	}
	if rvol < 0 {
		return MomentumInput{}, fmt.Errorf("momentum input %s: rvol must be non-negative, got %v", ticker, rvol)
	}
	if atr < 0 {
		return MomentumInput{}, fmt.Errorf("momentum input %s: atr must be non-negative, got %v", ticker, atr)
	}

	return MomentumInput{
		Ticker:     ticker,
		Bucket:     bucket,
		Price:      price,
		Volume:     volume,
		Float:      floatShares,
		RVol:       rvol,
		ATR:        atr,
		GapPercent: gapPct,
	}, nil
}

// MomentumRecord is the fully-derived output for one ticker. It is
// computed fresh each refresh cycle and never mutated afterwards.
// Nil pointer fields mean "unknown" and render as a placeholder.
type MomentumRecord struct {
	MomentumInput

	VWAP           *float64 `json:"vwap,omitempty"`
	VWAPTime       string   `json:"time"`
	ChangeFromOpen *float64 `json:"change_from_open,omitempty"`
	VWAPDeviation  *float64 `json:"vwap_deviation,omitempty"`
	FloatPercent   *float64 `json:"float_pct,omitempty"`
	Signal         Signal    `json:"entry"`
	Direction      Direction `json:"type"`

	// Presentation bin per colorable field, keyed by field name.
	Bins map[string]string `json:"bins,omitempty"`
}
