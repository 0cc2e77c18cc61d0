package repository

import (
	"context"
	"time"

	"solana-payment-relay/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByTransactionHash(ctx context.Context, tx Tx, hash string) (*model.Payment, error)
	// UpdateStatusIfPending atomically moves a payment out of `pending` and
	// reports whether a row changed; terminal rows are left untouched.
	UpdateStatusIfPending(ctx context.Context, tx Tx, hash string, status model.PaymentStatus, confirmedAt *time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	SumConfirmedUSDByPeriod(ctx context.Context, tx Tx, period string) (float64, error)
}
