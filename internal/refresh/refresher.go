package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/myze/momentum/internal/engine"
	"github.com/myze/momentum/internal/scanner"
	"github.com/myze/momentum/pkg/config"
	"github.com/myze/momentum/pkg/logger"
	"github.com/myze/momentum/pkg/metrics"
)

// Universe produces the ranked momentum inputs for one cycle.
type Universe interface {
	Scan(ctx context.Context) (scanner.Result, error)
}

// QuoteAggregator fetches the per-ticker raw data the engine derives from.
type QuoteAggregator interface {
	IntradayBars(ctx context.Context, ticker string) ([]engine.Bar, error)
	EODFull(ctx context.Context, ticker string) (*engine.EODRecord, error)
}

// Snapshot is one full derivation cycle's output. Immutable once
// published; the next cycle replaces it wholesale.
type Snapshot struct {
	MarketStatus string                  `json:"market_status"`
	Note         string                  `json:"note"`
	Timestamp    int64                   `json:"timestamp"`
	HighFloat    []engine.MomentumRecord `json:"high_float"`
	LowFloat     []engine.MomentumRecord `json:"low_float"`
}

// Refresher runs the fetch-derive cycle and holds the latest snapshot.
// The snapshot cache is the only state that survives between cycles.
type Refresher struct {
	cfg      *config.Config
	log      *logger.Logger
	universe Universe
	quotes   QuoteAggregator
	engine   *engine.Engine
	metrics  *metrics.Recorder

	mu   sync.RWMutex
	snap *Snapshot

	subMu sync.Mutex
	subs  map[chan *Snapshot]struct{}

	now func() time.Time // injectable clock for tests
}

// New creates a refresher.
func New(cfg *config.Config, universe Universe, quotes QuoteAggregator, eng *engine.Engine, rec *metrics.Recorder, log *logger.Logger) *Refresher {
	if log == nil {
		log = logger.Nop()
	}
	return &Refresher{
		cfg:      cfg,
		log:      log,
		universe: universe,
		quotes:   quotes,
		engine:   eng,
		metrics:  rec,
		subs:     make(map[chan *Snapshot]struct{}),
		now:      time.Now,
	}
}

// Snapshot returns the latest published snapshot, or nil before the
// first successful cycle.
func (r *Refresher) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Subscribe registers for snapshot pushes. The channel keeps only the
// latest snapshot; slow consumers never block a cycle. The returned
// cancel func must be called to release the subscription.
func (r *Refresher) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)

	r.subMu.Lock()
	r.subs[ch] = struct{}{}
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		delete(r.subs, ch)
		r.subMu.Unlock()
	}
	return ch, cancel
}

// Refresh runs one full scan-fetch-derive cycle and publishes the
// result. Individual ticker failures degrade to records with unknown
// fields; only a failed universe scan fails the cycle.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := r.now()

	res, err := r.universe.Scan(ctx)
	if err != nil {
		r.metrics.RecordRefresh("error", time.Since(start).Seconds())
		return err
	}

	snap := &Snapshot{
		MarketStatus: marketStatus(start, r.cfg.Exchange.Location),
		Note:         r.cfg.SnapshotNote,
		Timestamp:    start.Unix(),
		HighFloat:    r.deriveAll(ctx, res.High),
		LowFloat:     r.deriveAll(ctx, res.Low),
	}

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()

	elapsed := time.Since(start)
	r.metrics.RecordRefresh("ok", elapsed.Seconds())
	r.metrics.RecordLastRefresh(float64(start.Unix()))
	r.metrics.RecordSnapshotRows("high", len(snap.HighFloat))
	r.metrics.RecordSnapshotRows("low", len(snap.LowFloat))

	r.log.WithFields(map[string]interface{}{
		"high":     len(snap.HighFloat),
		"low":      len(snap.LowFloat),
		"duration": elapsed,
		"status":   snap.MarketStatus,
	}).Info("Snapshot refreshed")

	r.broadcast(snap)
	return nil
}

// deriveAll fans out one goroutine per ticker and derives each record
// independently, preserving the ranked order.
func (r *Refresher) deriveAll(ctx context.Context, inputs []engine.MomentumInput) []engine.MomentumRecord {
	if len(inputs) == 0 {
		return []engine.MomentumRecord{}
	}

	records := make([]engine.MomentumRecord, len(inputs))

	var wg sync.WaitGroup
	wg.Add(len(inputs))
	for i, in := range inputs {
		go func(i int, in engine.MomentumInput) {
			defer wg.Done()
			records[i] = r.engine.Derive(in, r.fetchRawQuote(ctx, in.Ticker))
		}(i, in)
	}
	wg.Wait()

	return records
}

// fetchRawQuote gathers the raw per-ticker data. Every fetch failure
// degrades to an absent field; this function never fails.
func (r *Refresher) fetchRawQuote(ctx context.Context, ticker string) engine.RawQuote {
	q := engine.RawQuote{Ticker: ticker}

	eod, err := r.quotes.EODFull(ctx, ticker)
	if err != nil {
		r.log.WithError(err).WithField("ticker", ticker).Warn("EOD fetch failed")
	} else if eod != nil {
		q.EOD = eod
		q.Open = eod.Open
		q.Close = eod.Close
	}

	bars, err := r.quotes.IntradayBars(ctx, ticker)
	if err != nil {
		r.log.WithError(err).WithField("ticker", ticker).Warn("Intraday fetch failed")
	} else {
		q.Bars = bars
	}

	return q
}

// broadcast pushes the snapshot to all subscribers, latest wins.
func (r *Refresher) broadcast(snap *Snapshot) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for ch := range r.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale pending snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
