package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Quote is a single FMP /quote entry. Zero-valued fields simply were
// not present in the payload; the scanner decides what that means.
type Quote struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Open              float64 `json:"open"`
	PreviousClose     float64 `json:"previousClose"`
	DayHigh           float64 `json:"dayHigh"`
	DayLow            float64 `json:"dayLow"`
	Volume            int64   `json:"volume"`
	AvgVolume         int64   `json:"avgVolume"`
	FloatShares       int64   `json:"floatShares"`
	SharesOutstanding int64   `json:"sharesOutstanding"`
}

// listEntry is a single FMP /stock/list entry.
type listEntry struct {
	Symbol string `json:"symbol"`
}

// StockList returns up to max tradable symbols.
func (c *Client) StockList(ctx context.Context, max int) ([]string, error) {
	var entries []listEntry
	if err := c.getJSON(ctx, "stock_list", c.endpoint("/stock/list", nil), &entries); err != nil {
		return nil, err
	}

	if max > 0 && len(entries) > max {
		entries = entries[:max]
	}

	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Symbol != "" {
			symbols = append(symbols, e.Symbol)
		}
	}

	c.logger.WithField("count", len(symbols)).Debug("Fetched symbol universe")
	return symbols, nil
}

// BatchQuotes fetches quotes for the given symbols in batches. A batch
// whose quote endpoint comes back empty or failing is retried against
// the last daily record, so one bad batch never sinks the scan.
func (c *Client) BatchQuotes(ctx context.Context, symbols []string, batchSize int) ([]Quote, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	out := make([]Quote, 0, len(symbols))
	for start := 0; start < len(symbols); start += batchSize {
		end := start + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		quotes, err := c.quoteBatch(ctx, batch)
		if err != nil || len(quotes) == 0 {
			if err != nil {
				c.logger.WithError(err).WithField("batch_start", start).Warn("Quote batch failed, trying daily fallback")
			}
			quotes, err = c.dailyFallback(ctx, batch)
			if err != nil {
				return nil, err
			}
		}

		out = append(out, quotes...)
	}

	return out, nil
}

// quoteBatch fetches one /quote/{s1,s2,...} batch.
func (c *Client) quoteBatch(ctx context.Context, symbols []string) ([]Quote, error) {
	path := fmt.Sprintf("/quote/%s", strings.Join(symbols, ","))

	var quotes []Quote
	if err := c.getJSON(ctx, "quote", c.endpoint(path, nil), &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// historicalBatch mirrors the /historical-price-full multi-symbol shape.
type historicalBatch struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"historical"`
}

// dailyFallback synthesizes quotes from each symbol's last daily bar.
func (c *Client) dailyFallback(ctx context.Context, symbols []string) ([]Quote, error) {
	path := fmt.Sprintf("/historical-price-full/%s", strings.Join(symbols, ","))
	params := url.Values{"limit": {"1"}}

	var hist []historicalBatch
	if err := c.getJSON(ctx, "historical_price_full", c.endpoint(path, params), &hist); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(hist))
	for _, h := range hist {
		if len(h.Historical) == 0 {
			continue
		}
		d := h.Historical[0]
		quotes = append(quotes, Quote{
			Symbol:        h.Symbol,
			Price:         d.Close,
			Open:          d.Open,
			PreviousClose: d.Close,
			DayHigh:       d.High,
			DayLow:        d.Low,
			Volume:        d.Volume,
			AvgVolume:     d.Volume,
		})
	}

	return quotes, nil
}
