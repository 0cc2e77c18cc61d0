package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, transaction_hash, amount_sol, amount_usd, sol_price_usd, plan_type, status, confirmed_at, created_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.TransactionHash, &p.AmountSOL, &p.AmountUSD, &p.SolPriceUSD, &p.PlanType, &p.Status, &p.ConfirmedAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, user_id, transaction_hash, amount_sol, amount_usd, sol_price_usd, plan_type, status, confirmed_at, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
);`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.TransactionHash, p.AmountSOL, p.AmountUSD, p.SolPriceUSD, p.PlanType, p.Status, p.ConfirmedAt, p.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByTransactionHash(ctx context.Context, tx repository.Tx, hash string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_hash=$1 LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, hash)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// UpdateStatusIfPending atomically updates status only when the current
// status is still 'pending'. Terminal rows stay immutable.
func (r *paymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, hash string, status model.PaymentStatus, confirmedAt *time.Time) (bool, error) {
	const q = `
    UPDATE payments
       SET status = $2,
           confirmed_at = COALESCE($3, confirmed_at)
     WHERE transaction_hash = $1
       AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, hash, string(status), confirmedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := new(model.Payment)
		if err := rows.Scan(&p.ID, &p.UserID, &p.TransactionHash, &p.AmountSOL, &p.AmountUSD, &p.SolPriceUSD, &p.PlanType, &p.Status, &p.ConfirmedAt, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepo) SumConfirmedUSDByPeriod(ctx context.Context, tx repository.Tx, period string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount_usd),0) FROM payments WHERE status='confirmed' AND confirmed_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}

	var sum float64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
