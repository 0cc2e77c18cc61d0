package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/repository"
	"solana-payment-relay/internal/infra/metrics"
	red "solana-payment-relay/internal/infra/redis"
)

var _ repository.PricingCacheRepository = (*pricingRepoCacheDecorator)(nil)

// pricingRepoCacheDecorator fronts the durable pricing_cache row with redis so
// the hot read path (every pricing request) skips Postgres entirely. The redis
// TTL matches the quote freshness window; a redis miss falls through to the
// inner repository.
type pricingRepoCacheDecorator struct {
	inner repository.PricingCacheRepository
	cache red.RedisClient
	ttl   time.Duration
}

const priceQuoteKey = "price:sol_usd"

func NewPricingRepoCacheDecorator(inner repository.PricingCacheRepository, cache red.RedisClient) repository.PricingCacheRepository {
	return &pricingRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   model.PriceFreshness,
	}
}

func (d *pricingRepoCacheDecorator) Latest(ctx context.Context, tx repository.Tx) (*model.PriceQuote, error) {
	val, err := d.cache.Get(ctx, priceQuoteKey)
	if err == nil {
		var quote model.PriceQuote
		if json.Unmarshal([]byte(val), &quote) == nil {
			metrics.IncCacheRequest("price", "hit")
			return &quote, nil
		}
	} else if err != redis.Nil {
		// Redis trouble is not fatal; the durable row still answers.
		metrics.IncCacheRequest("price", "error")
	}
	metrics.IncCacheRequest("price", "miss")
	quote, err := d.inner.Latest(ctx, tx)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(quote); err == nil {
		_ = d.cache.Set(ctx, priceQuoteKey, bytes, d.ttl)
	}
	return quote, nil
}

func (d *pricingRepoCacheDecorator) Put(ctx context.Context, tx repository.Tx, quote *model.PriceQuote) error {
	if err := d.inner.Put(ctx, tx, quote); err != nil {
		return err
	}
	if bytes, err := json.Marshal(quote); err == nil {
		_ = d.cache.Set(ctx, priceQuoteKey, bytes, d.ttl)
	}
	return nil
}
