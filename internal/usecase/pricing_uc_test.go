//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/usecase"
)

func TestPricingUseCase_GetQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("should serve a fresh cached quote without refetching", func(t *testing.T) {
		// --- Arrange ---
		cache := &MockPricingCache{}
		cache.Seed(model.PriceQuote{PriceUSD: 150, UpdatedAt: time.Now().Add(-time.Minute)})
		source := &MockPriceSource{}
		uc := usecase.NewPricingUseCase(cache, source, newTestLogger())

		// --- Act ---
		res, err := uc.GetQuote(ctx)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Quote.PriceUSD != 150 {
			t.Errorf("expected cached price 150, got %v", res.Quote.PriceUSD)
		}
		if res.Degraded {
			t.Error("a fresh cached quote is not degraded")
		}
		if source.Calls != 0 {
			t.Errorf("expected no upstream call for a fresh cache, got %d", source.Calls)
		}
	})

	t.Run("should refresh once when the cache is stale", func(t *testing.T) {
		cache := &MockPricingCache{}
		cache.Seed(model.PriceQuote{PriceUSD: 150, UpdatedAt: time.Now().Add(-6 * time.Minute)})
		source := &MockPriceSource{FetchPriceUSDFunc: func(ctx context.Context) (float64, error) {
			return 160, nil
		}}
		uc := usecase.NewPricingUseCase(cache, source, newTestLogger())

		res, err := uc.GetQuote(ctx)

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Quote.PriceUSD != 160 {
			t.Errorf("expected refreshed price 160, got %v", res.Quote.PriceUSD)
		}
		if source.Calls != 1 {
			t.Errorf("expected exactly one upstream call, got %d", source.Calls)
		}
		if cache.Puts != 1 {
			t.Errorf("expected the refreshed quote to be cached, got %d puts", cache.Puts)
		}
	})

	t.Run("should fall back to the stale quote when refresh fails", func(t *testing.T) {
		cache := &MockPricingCache{}
		cache.Seed(model.PriceQuote{PriceUSD: 150, UpdatedAt: time.Now().Add(-2 * time.Hour)})
		source := &MockPriceSource{FetchPriceUSDFunc: func(ctx context.Context) (float64, error) {
			return 0, errors.New("upstream 500")
		}}
		uc := usecase.NewPricingUseCase(cache, source, newTestLogger())

		res, err := uc.GetQuote(ctx)

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Quote.PriceUSD != 150 {
			t.Errorf("expected stale price 150, got %v", res.Quote.PriceUSD)
		}
		if !res.Degraded {
			t.Error("a stale fallback must be flagged degraded")
		}
	})

	t.Run("should error when there is no cache and refresh fails", func(t *testing.T) {
		cache := &MockPricingCache{}
		source := &MockPriceSource{FetchPriceUSDFunc: func(ctx context.Context) (float64, error) {
			return 0, errors.New("upstream 500")
		}}
		uc := usecase.NewPricingUseCase(cache, source, newTestLogger())

		_, err := uc.GetQuote(ctx)

		if !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Fatalf("expected ErrPriceUnavailable, got: %v", err)
		}
	})

	t.Run("should fetch on a cold cache and store the result", func(t *testing.T) {
		cache := &MockPricingCache{}
		source := &MockPriceSource{FetchPriceUSDFunc: func(ctx context.Context) (float64, error) {
			return 147.33, nil
		}}
		uc := usecase.NewPricingUseCase(cache, source, newTestLogger())

		res, err := uc.GetQuote(ctx)

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Quote.PriceUSD != 147.33 {
			t.Errorf("expected 147.33, got %v", res.Quote.PriceUSD)
		}
		if cache.Puts != 1 {
			t.Errorf("expected one cache write, got %d", cache.Puts)
		}
	})
}

func TestPricingUseCase_PlanQuotes(t *testing.T) {
	ctx := context.Background()

	cache := &MockPricingCache{}
	cache.Seed(model.PriceQuote{PriceUSD: 100, UpdatedAt: time.Now()})
	uc := usecase.NewPricingUseCase(cache, &MockPriceSource{}, newTestLogger())

	quotes, err := uc.PlanQuotes(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if quotes.PriceUSD != 100 {
		t.Errorf("expected price 100, got %v", quotes.PriceUSD)
	}
	if quotes.ProSOL != 0.5 {
		t.Errorf("expected pro tier 0.5 SOL, got %v", quotes.ProSOL)
	}
	if quotes.EnterpriseSOL != 1.5 {
		t.Errorf("expected enterprise tier 1.5 SOL, got %v", quotes.EnterpriseSOL)
	}
}
