package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/repository"
)

var _ repository.PricingCacheRepository = (*pricingCacheRepo)(nil)

// pricingCacheRepo keeps the single-row SOL price cache. The table may grow a
// history of quotes; Latest always serves the newest row.
type pricingCacheRepo struct{ pool *pgxpool.Pool }

func NewPricingCacheRepo(pool *pgxpool.Pool) *pricingCacheRepo {
	return &pricingCacheRepo{pool: pool}
}

func (r *pricingCacheRepo) Latest(ctx context.Context, tx repository.Tx) (*model.PriceQuote, error) {
	const q = `SELECT sol_price_usd, updated_at FROM pricing_cache ORDER BY updated_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}

	quote := &model.PriceQuote{}
	if err := row.Scan(&quote.PriceUSD, &quote.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return quote, nil
}

func (r *pricingCacheRepo) Put(ctx context.Context, tx repository.Tx, quote *model.PriceQuote) error {
	const q = `
INSERT INTO pricing_cache (id, sol_price_usd, updated_at)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET sol_price_usd=$1, updated_at=$2;`

	_, err := execSQL(ctx, r.pool, tx, q, quote.PriceUSD, quote.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
