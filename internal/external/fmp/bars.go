package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/myze/momentum/internal/engine"
)

const (
	intradayTimeLayout = "2006-01-02 15:04:05"
	eodDateLayout      = "2006-01-02"
)

// intradayBar is a single FMP /historical-chart/1min entry.
type intradayBar struct {
	Date   string  `json:"date"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// IntradayBars fetches the 1-minute bars for a ticker, oldest first.
// FMP returns them newest first; the engine contract wants ascending.
func (c *Client) IntradayBars(ctx context.Context, ticker string) ([]engine.Bar, error) {
	path := fmt.Sprintf("/historical-chart/1min/%s", ticker)

	var raw []intradayBar
	if err := c.getJSON(ctx, "historical_chart_1min", c.endpoint(path, nil), &raw); err != nil {
		return nil, err
	}

	bars := make([]engine.Bar, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		b := raw[i]
		ts, err := time.ParseInLocation(intradayTimeLayout, b.Date, c.loc)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"date":   b.Date,
			}).Warn("Skipping intraday bar with bad timestamp")
			continue
		}
		bars = append(bars, engine.Bar{
			Timestamp: ts,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	return bars, nil
}

// eodEntry is a single FMP /historical-price-eod/full entry.
type eodEntry struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	Close  *float64 `json:"close"`
	VWAP   *float64 `json:"vwap"`
	Volume int64    `json:"volume"`
}

// EODFull fetches the most recent end-of-day record for a ticker.
// Returns nil when the provider has no history for the symbol.
func (c *Client) EODFull(ctx context.Context, ticker string) (*engine.EODRecord, error) {
	params := url.Values{"symbol": {ticker}}

	var entries []eodEntry
	if err := c.getJSON(ctx, "historical_price_eod", c.endpoint("/historical-price-eod/full", params), &entries); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, nil
	}

	// First entry is the most recent session.
	e := entries[0]
	date, err := time.ParseInLocation(eodDateLayout, e.Date, c.loc)
	if err != nil {
		return nil, fmt.Errorf("fmp eod %s: bad date %q: %w", ticker, e.Date, err)
	}

	return &engine.EODRecord{
		Date:  date,
		Open:  e.Open,
		Close: e.Close,
		VWAP:  e.VWAP,
	}, nil
}
