package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/myze/momentum/pkg/config"
	"github.com/myze/momentum/pkg/httputil"
	"github.com/myze/momentum/pkg/logger"
	"github.com/myze/momentum/pkg/metrics"
)

// Client handles communication with the Financial Modeling Prep API.
// All FMP calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	metrics    *metrics.Recorder
	apiKey     string
	baseURL    string
	loc        *time.Location
}

// NewClient creates a new FMP API client. The shared rate limit lives
// on the HTTP client so every endpoint draws from the same budget.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger, rec *metrics.Recorder) *Client {
	loc := cfg.Exchange.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		metrics:    rec,
		apiKey:     cfg.FMP.APIKey,
		baseURL:    cfg.FMP.BaseURL,
		loc:        loc,
	}
}

// endpoint builds a full request URL with the API key attached.
func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// getJSON fetches and decodes one endpoint, recording the outcome.
func (c *Client) getJSON(ctx context.Context, name, url string, v interface{}) error {
	if err := c.httpClient.GetJSON(ctx, url, v); err != nil {
		c.metrics.RecordAPIRequest(name, "error")
		return fmt.Errorf("fmp %s: %w", name, err)
	}
	c.metrics.RecordAPIRequest(name, "ok")
	return nil
}
