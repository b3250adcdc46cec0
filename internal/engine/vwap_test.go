package engine

import (
	"math"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func barsAt(loc *time.Location, day time.Time, specs [][4]float64) []Bar {
	bars := make([]Bar, 0, len(specs))
	for i, s := range specs {
		bars = append(bars, Bar{
			Timestamp: time.Date(day.Year(), day.Month(), day.Day(), 9, 30+i, 0, 0, loc),
			High:      s[0],
			Low:       s[1],
			Close:     s[2],
			Volume:    int64(s[3]),
		})
	}
	return bars
}

func TestSessionVWAP(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	e := New(Config{Location: loc}, nil)

	// Spec example: typical prices 9 and 10 -> (9*100+10*200)/300
	bars := barsAt(loc, day, [][4]float64{
		{10, 8, 9, 100},
		{11, 9, 10, 200},
	})

	vwap, label := e.sessionVWAP(bars)
	if vwap == nil {
		t.Fatal("expected vwap, got nil")
	}

	want := (9.0*100 + 10.0*200) / 300
	if math.Abs(*vwap-want) > 1e-9 {
		t.Errorf("vwap = %v, want %v", *vwap, want)
	}

	if label != "09:31" {
		t.Errorf("time label = %q, want 09:31", label)
	}
}

func TestSessionVWAPZeroVolume(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	e := New(Config{Location: loc}, nil)

	bars := barsAt(loc, day, [][4]float64{
		{10, 8, 9, 0},
		{11, 9, 10, 0},
	})

	vwap, label := e.sessionVWAP(bars)
	if vwap != nil {
		t.Errorf("expected nil vwap for zero-volume session, got %v", *vwap)
	}
	if label != TimeUnavailable {
		t.Errorf("label = %q, want unavailable marker", label)
	}
}

func TestSessionVWAPEmpty(t *testing.T) {
	e := New(Config{}, nil)

	vwap, label := e.sessionVWAP(nil)
	if vwap != nil || label != TimeUnavailable {
		t.Errorf("expected nil/%q for empty bars, got %v/%q", TimeUnavailable, vwap, label)
	}
}

func TestSessionVWAPFiltersToLastBarDate(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	e := New(Config{Location: loc}, nil)

	// Yesterday's bar must not leak into today's session.
	yesterday := time.Date(2026, 8, 28, 0, 0, 0, 0, loc)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)

	bars := append(
		barsAt(loc, yesterday, [][4]float64{{100, 90, 95, 10_000}}),
		barsAt(loc, today, [][4]float64{{10, 8, 9, 100}})...,
	)

	vwap, _ := e.sessionVWAP(bars)
	if vwap == nil {
		t.Fatal("expected vwap, got nil")
	}

	// Only today's single bar counts: tp = (10+8+9)/3 = 9
	if math.Abs(*vwap-9.0) > 1e-9 {
		t.Errorf("vwap = %v, want 9.0 (yesterday's bar must be excluded)", *vwap)
	}
}

func TestVWAPWithFallback(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	eodVWAP := 42.5

	tests := []struct {
		name      string
		quote     RawQuote
		wantVWAP  *float64
		wantLabel string
	}{
		{
			name: "too few intraday bars falls back to EOD",
			quote: RawQuote{
				Ticker: "ABC",
				Bars:   barsAt(loc, day, [][4]float64{{10, 8, 9, 100}}),
				EOD:    &EODRecord{Date: day, VWAP: &eodVWAP},
			},
			wantVWAP:  &eodVWAP,
			wantLabel: "EOD 2026-08-31",
		},
		{
			name:      "nothing available",
			quote:     RawQuote{Ticker: "ABC"},
			wantVWAP:  nil,
			wantLabel: TimeUnavailable,
		},
		{
			name: "EOD without vwap is still unavailable",
			quote: RawQuote{
				Ticker: "ABC",
				EOD:    &EODRecord{Date: day},
			},
			wantVWAP:  nil,
			wantLabel: TimeUnavailable,
		},
	}

	e := New(Config{MinIntradayBars: 20, Location: loc}, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vwap, label := e.vwapWithFallback(tt.quote)

			if (vwap == nil) != (tt.wantVWAP == nil) {
				t.Fatalf("vwap = %v, want %v", vwap, tt.wantVWAP)
			}
			if vwap != nil && *vwap != *tt.wantVWAP {
				t.Errorf("vwap = %v, want %v", *vwap, *tt.wantVWAP)
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
		})
	}
}

func TestVWAPWithFallbackPrefersIntraday(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	eodVWAP := 99.0

	specs := make([][4]float64, 25)
	for i := range specs {
		specs[i] = [4]float64{10, 8, 9, 100}
	}

	e := New(Config{MinIntradayBars: 20, Location: loc}, nil)
	vwap, label := e.vwapWithFallback(RawQuote{
		Ticker: "ABC",
		Bars:   barsAt(loc, day, specs),
		EOD:    &EODRecord{Date: day, VWAP: &eodVWAP},
	})

	if vwap == nil || math.Abs(*vwap-9.0) > 1e-9 {
		t.Errorf("vwap = %v, want intraday 9.0 over EOD fallback", vwap)
	}
	if label == TimeUnavailable || label[:3] == "EOD" {
		t.Errorf("label = %q, want an intraday clock time", label)
	}
}
