//go:build !integration

package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solana-payment-relay/internal/domain"
)

func TestCoinGeckoSource_FetchPriceUSD(t *testing.T) {
	ctx := context.Background()

	t.Run("parses the simple price payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"solana":{"usd":147.33}}`))
		}))
		defer srv.Close()

		source, err := NewCoinGeckoSource(srv.URL)
		if err != nil {
			t.Fatalf("source: %v", err)
		}
		price, err := source.FetchPriceUSD(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if price != 147.33 {
			t.Errorf("expected 147.33, got %v", price)
		}
	})

	t.Run("treats a non-200 as unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		source, _ := NewCoinGeckoSource(srv.URL)
		if _, err := source.FetchPriceUSD(ctx); !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Fatalf("expected ErrPriceUnavailable, got: %v", err)
		}
	})

	t.Run("treats a missing price field as unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		source, _ := NewCoinGeckoSource(srv.URL)
		if _, err := source.FetchPriceUSD(ctx); !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Fatalf("expected ErrPriceUnavailable, got: %v", err)
		}
	})

	t.Run("rejects an empty endpoint", func(t *testing.T) {
		if _, err := NewCoinGeckoSource(""); err == nil {
			t.Fatal("expected an error")
		}
	})
}
