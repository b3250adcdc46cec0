package engine

import (
	"time"

	"github.com/myze/momentum/pkg/logger"
)

// Engine derives momentum records from raw per-ticker market data.
// Pure, synchronous computation over already-fetched inputs: it never
// blocks, retries or errors on data quality. Missing upstream data
// degrades to nil derived fields and Signal None.
type Engine struct {
	cfg Config
	loc *time.Location
	log *logger.Logger
}

// Config holds the engine's derivation thresholds and session rules.
type Config struct {
	// Bars below this count trigger the EOD VWAP fallback.
	MinIntradayBars int

	// Exchange location used to bucket bars into sessions and to
	// format time labels. Defaults to UTC.
	Location *time.Location

	Signals SignalThresholds
	Bins    BinThresholds
}

// New creates an engine, filling zero config fields with defaults.
func New(cfg Config, log *logger.Logger) *Engine {
	if cfg.MinIntradayBars <= 0 {
		cfg.MinIntradayBars = 20
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Signals == (SignalThresholds{}) {
		cfg.Signals = DefaultSignalThresholds()
	}
	if cfg.Bins == nil {
		cfg.Bins = DefaultBinThresholds()
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Engine{cfg: cfg, loc: cfg.Location, log: log}
}

// Bins exposes the engine's presentation threshold tables.
func (e *Engine) Bins() BinThresholds {
	return e.cfg.Bins
}

// Derive computes the full momentum record for one ticker. The raw
// quote may be entirely absent; each derived field then stays nil and
// the record carries no signal.
func (e *Engine) Derive(in MomentumInput, q RawQuote) MomentumRecord {
	vwap, vwapTime := e.vwapWithFallback(q)

	open := q.Open
	if open == nil && q.EOD != nil {
		open = q.EOD.Open
	}

	change := pctChange(in.Price, open)
	deviation := pctChange(in.Price, vwap)
	floatPct := floatPercent(in.Volume, in.Float)

	rec := MomentumRecord{
		MomentumInput:  in,
		VWAP:           vwap,
		VWAPTime:       vwapTime,
		ChangeFromOpen: change,
		VWAPDeviation:  deviation,
		FloatPercent:   floatPct,
		Signal:         classifySignal(deviation, in.RVol, in.Price, vwap, e.cfg.Signals),
		Direction:      directionOf(change),
	}
	rec.Bins = e.binsFor(rec)

	e.log.WithFields(map[string]interface{}{
		"ticker": in.Ticker,
		"signal": rec.Signal,
		"vwap":   vwapTime,
	}).Debug("Derived momentum record")

	return rec
}

// pctChange computes (price-base)/base*100, nil when the base is
// unknown or zero. Never a sentinel numeric, never NaN.
func pctChange(price float64, base *float64) *float64 {
	if base == nil || *base == 0 {
		return nil
	}
	v := (price - *base) / *base * 100
	return &v
}

// floatPercent computes volume as a percentage of the public float.
func floatPercent(volume, floatShares int64) *float64 {
	if floatShares <= 0 {
		return nil
	}
	v := float64(volume) / float64(floatShares) * 100
	return &v
}

// binsFor maps every colorable field of the record to its bin label.
// Fields with unknown values carry no bin.
func (e *Engine) binsFor(rec MomentumRecord) map[string]string {
	bins := map[string]string{
		FieldGapPct: e.cfg.Bins.BinFor(FieldGapPct, rec.GapPercent),
		FieldVolume: e.cfg.Bins.BinFor(FieldVolume, float64(rec.Volume)),
		FieldATR:    e.cfg.Bins.BinFor(FieldATR, rec.ATR),
		FieldRVol:   e.cfg.Bins.BinFor(FieldRVol, rec.RVol),
	}
	if rec.ChangeFromOpen != nil {
		bins[FieldChange] = e.cfg.Bins.BinFor(FieldChange, *rec.ChangeFromOpen)
	}
	if rec.FloatPercent != nil {
		bins[FieldFloatPct] = e.cfg.Bins.BinFor(FieldFloatPct, *rec.FloatPercent)
	}
	return bins
}
