package repository

import (
	"context"

	"solana-payment-relay/internal/domain/model"
)

// PricingCacheRepository stores the single cached SOL/USD quote.
type PricingCacheRepository interface {
	// Latest returns the most recent cached quote, or domain.ErrNotFound
	// when no quote has ever been stored.
	Latest(ctx context.Context, tx Tx) (*model.PriceQuote, error)
	Put(ctx context.Context, tx Tx, q *model.PriceQuote) error
}
