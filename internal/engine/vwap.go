package engine

// Session VWAP from intraday bars, with the EOD fallback policy.
//
// The current session is the calendar date, in the exchange location,
// of the chronologically last bar. Provider snapshots disagree on how
// to pick the session; the last bar's date is the rule here and it is
// applied everywhere.

// sessionVWAP computes the volume-weighted average price over the
// current session's bars. Returns nil when there are no session bars
// or no bar carries positive volume, plus the last session bar's
// time-of-day label for display.
func (e *Engine) sessionVWAP(bars []Bar) (*float64, string) {
	if len(bars) == 0 {
		return nil, TimeUnavailable
	}

	last := bars[len(bars)-1].Timestamp.In(e.loc)
	sy, sm, sd := last.Date()

	var tpv, vol float64
	for _, b := range bars {
		by, bm, bd := b.Timestamp.In(e.loc).Date()
		if by != sy || bm != sm || bd != sd {
			continue
		}
		tp := (b.High + b.Low + b.Close) / 3
		tpv += tp * float64(b.Volume)
		vol += float64(b.Volume)
	}

	if vol == 0 {
		return nil, TimeUnavailable
	}

	vwap := tpv / vol
	return &vwap, last.Format("15:04")
}

// vwapWithFallback applies the fallback policy: intraday session VWAP
// when enough bars exist, otherwise the EOD record's reported VWAP
// labeled with an end-of-day marker, otherwise unknown.
func (e *Engine) vwapWithFallback(q RawQuote) (*float64, string) {
	if len(q.Bars) >= e.cfg.MinIntradayBars {
		if vwap, label := e.sessionVWAP(q.Bars); vwap != nil {
			return vwap, label
		}
	}

	if q.EOD != nil && q.EOD.VWAP != nil {
		return q.EOD.VWAP, "EOD " + q.EOD.Date.In(e.loc).Format("2006-01-02")
	}

	return nil, TimeUnavailable
}
