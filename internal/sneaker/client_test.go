package sneaker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"shoescout/internal/logger"
)

func testClient(searchURL, priceURL string) *Client {
	return NewClient(Options{
		SearchHost: searchURL,
		SearchKey:  "test-key",
		PriceHost:  priceURL,
		PriceKey:   "test-key",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}, logger.New())
}

func TestSearchRetriesUntilSuccess(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": [{"title": "Nike Dunk Low", "sku": "DD1391-100"}]}`))
	}))
	defer srv.Close()

	hits, err := testClient(srv.URL, srv.URL).Search(context.Background(), "nike dunk")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(hits) != 1 || hits[0].Title != "Nike Dunk Low" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, srv.URL).Search(context.Background(), "nike")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected a single attempt for a client error, got %d", got)
	}
}

func TestSearchRetriesRateLimits(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": []}`))
	}))
	defer srv.Close()

	hits, err := testClient(srv.URL, srv.URL).Search(context.Background(), "nike")
	if err != nil {
		t.Fatalf("expected success after rate-limit retry, got %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %+v", hits)
	}
}

func TestSearchExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, srv.URL).Search(context.Background(), "nike")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestSearchMissingHitsIsErrNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "nothing here"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, srv.URL).Search(context.Background(), "nike")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestProductPriceSendsRapidAPIHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/productprice" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("styleId") != "DD1391-100" {
			t.Errorf("unexpected styleId %q", r.URL.Query().Get("styleId"))
		}
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Errorf("missing RapidAPI key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lowestResellPrice": {"stockX": 150}}`))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL, srv.URL).ProductPrice(context.Background(), "DD1391-100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["lowestResellPrice"]; !ok {
		t.Fatalf("expected raw payload, got %+v", raw)
	}
}
