// Package sneaker wraps the two RapidAPI services the app depends on: a
// StockX-style retail search and a SneakerDB-style resell price lookup.
package sneaker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ErrNoResults is returned when the retail search responds without a hits
// array at all.
var ErrNoResults = errors.New("no shoes found")

// Hit is one retail search result.
type Hit struct {
	Title       string `json:"title"`
	RetailPrice any    `json:"retail_price"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	Image       string `json:"image"`
}

type searchResponse struct {
	Hits []Hit `json:"hits"`
}

type Options struct {
	SearchHost string
	SearchKey  string
	PriceHost  string
	PriceKey   string

	// MaxRetries is the total number of attempts per request.
	MaxRetries int
	// RetryDelay is the base backoff; waits grow exponentially from it.
	RetryDelay time.Duration
}

type Client struct {
	http   *resty.Client
	opts   Options
	logger zerolog.Logger
}

func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	// Retry on transport errors, 5xx and 429 only; other client errors are
	// the caller's problem and retrying them just burns API quota.
	httpClient := resty.New().
		SetRetryCount(opts.MaxRetries - 1).
		SetRetryWaitTime(opts.RetryDelay).
		SetRetryMaxWaitTime(opts.RetryDelay * (1 << uint(opts.MaxRetries))).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError ||
				r.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{
		http:   httpClient,
		opts:   opts,
		logger: logger.With().Str("service", "SneakerClient").Logger(),
	}
}

// Search queries the retail search API and returns its hits.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-RapidAPI-Key", c.opts.SearchKey).
		SetHeader("X-RapidAPI-Host", c.opts.SearchHost).
		SetQueryParam("query", query).
		SetResult(&out).
		Get(baseURL(c.opts.SearchHost) + "/search")
	if err != nil {
		return nil, fmt.Errorf("retail search request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("retail search returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Hits == nil {
		return nil, ErrNoResults
	}
	return out.Hits, nil
}

// ProductPrice looks up resell prices by manufacturer style id. The response
// shape varies per platform, so it is handed back raw for normalization.
func (c *Client) ProductPrice(ctx context.Context, styleID string) (map[string]any, error) {
	var out map[string]any
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-RapidAPI-Key", c.opts.PriceKey).
		SetHeader("X-RapidAPI-Host", c.opts.PriceHost).
		SetQueryParam("styleId", styleID).
		SetResult(&out).
		Get(baseURL(c.opts.PriceHost) + "/productprice")
	if err != nil {
		return nil, fmt.Errorf("product price request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product price returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return out, nil
}

// PriceSearch is the fallback lookup used when a direct style-id query comes
// back empty: a free-text search on the price API.
func (c *Client) PriceSearch(ctx context.Context, query string) (map[string]any, error) {
	var out map[string]any
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-RapidAPI-Key", c.opts.PriceKey).
		SetHeader("X-RapidAPI-Host", c.opts.PriceHost).
		SetQueryParam("query", query).
		SetResult(&out).
		Get(baseURL(c.opts.PriceHost) + "/search")
	if err != nil {
		return nil, fmt.Errorf("price search request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("price search returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return out, nil
}

// baseURL accepts either a bare RapidAPI host or a full URL (used by tests).
func baseURL(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + host
}
