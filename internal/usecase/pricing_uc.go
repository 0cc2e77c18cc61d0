// File: internal/usecase/pricing_uc.go
package usecase

import (
	"errors"
	"time"

	"context"

	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/adapter"
	"solana-payment-relay/internal/domain/ports/repository"
	"solana-payment-relay/internal/infra/metrics"
)

var _ PricingUseCase = (*pricingUC)(nil)

// PriceResult is a quote plus whether it came from a stale fallback.
type PriceResult struct {
	Quote    model.PriceQuote
	Degraded bool
}

// PlanQuotes is the client-facing pricing payload: current price and the
// derived SOL cost per plan tier.
type PlanQuotes struct {
	PriceUSD      float64
	ProSOL        float64
	EnterpriseSOL float64
	Degraded      bool
}

type PricingUseCase interface {
	// GetQuote serves the cached quote while fresh, makes exactly one refresh
	// attempt when stale, and falls back to the stale value (degraded) if the
	// refresh fails. No cache at all and a failed refresh is an error.
	GetQuote(ctx context.Context) (*PriceResult, error)
	PlanQuotes(ctx context.Context) (*PlanQuotes, error)
}

type pricingUC struct {
	cache  repository.PricingCacheRepository
	source adapter.PriceSource
	log    *zerolog.Logger
	now    func() time.Time // injectable for staleness tests
}

func NewPricingUseCase(cache repository.PricingCacheRepository, source adapter.PriceSource, logger *zerolog.Logger) *pricingUC {
	ucLog := logger.With().Str("component", "PricingUC").Logger()
	return &pricingUC{
		cache:  cache,
		source: source,
		log:    &ucLog,
		now:    time.Now,
	}
}

func (u *pricingUC) GetQuote(ctx context.Context) (*PriceResult, error) {
	now := u.now()

	cached, cacheErr := u.cache.Latest(ctx, nil)
	if cacheErr == nil && cached.FreshAt(now) {
		return &PriceResult{Quote: *cached}, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, domain.ErrNotFound) {
		u.log.Warn().Err(cacheErr).Msg("pricing cache read failed")
	}

	// Single refresh attempt; callers poll, so no retry here.
	priceUSD, err := u.source.FetchPriceUSD(ctx)
	if err == nil {
		metrics.IncPriceRefresh("ok")
		quote := &model.PriceQuote{PriceUSD: priceUSD, UpdatedAt: now}
		if perr := u.cache.Put(ctx, nil, quote); perr != nil {
			u.log.Warn().Err(perr).Msg("pricing cache write failed")
		}
		return &PriceResult{Quote: *quote}, nil
	}
	metrics.IncPriceRefresh("error")
	u.log.Warn().Err(err).Msg("price refresh failed")

	// Stale fallback, regardless of age.
	if cacheErr == nil {
		return &PriceResult{Quote: *cached, Degraded: true}, nil
	}
	return nil, domain.ErrPriceUnavailable
}

func (u *pricingUC) PlanQuotes(ctx context.Context) (*PlanQuotes, error) {
	res, err := u.GetQuote(ctx)
	if err != nil {
		return nil, err
	}
	return &PlanQuotes{
		PriceUSD:      res.Quote.PriceUSD,
		ProSOL:        model.CostInSOL(model.PlanPriceProUSD, res.Quote.PriceUSD),
		EnterpriseSOL: model.CostInSOL(model.PlanPriceEnterpriseUSD, res.Quote.PriceUSD),
		Degraded:      res.Degraded,
	}, nil
}
