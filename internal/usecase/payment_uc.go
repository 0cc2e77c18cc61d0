// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/adapter"
	"solana-payment-relay/internal/domain/ports/repository"
	"solana-payment-relay/internal/infra/logging"
	"solana-payment-relay/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentData is the client-declared intent accompanying a signed transaction.
// The transfer itself is what gets validated; these values are recorded as the
// quote the client saw at signing time.
type PaymentData struct {
	UserID      string
	PlanType    model.PlanType
	AmountSOL   float64
	AmountUSD   float64
	SolPriceUSD float64
}

// PaymentResult is returned to the client on a confirmed payment.
type PaymentResult struct {
	TransactionHash string
	Subscription    *model.Subscription
}

type PaymentUseCase interface {
	// Process runs the full relay pipeline for one signed transaction:
	// inspect, validate recipient, submit, persist pending, await settlement,
	// write the terminal state and activate the subscription.
	Process(ctx context.Context, data PaymentData, signedTxBase64 string) (*PaymentResult, error)
	// Settle finalizes an already-broadcast pending payment (used by the
	// reconciler after a crash or a lost confirmation wait).
	Settle(ctx context.Context, p *model.Payment) (*model.Subscription, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	ledger   adapter.LedgerGateway
	tm       repository.TransactionManager
	treasury string
	log      *zerolog.Logger
	now      func() time.Time
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	ledger adapter.LedgerGateway,
	tm repository.TransactionManager,
	treasuryWallet string,
	logger *zerolog.Logger,
) *paymentUC {
	ucLog := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		payments: payments,
		subs:     subs,
		ledger:   ledger,
		tm:       tm,
		treasury: treasuryWallet,
		log:      &ucLog,
		now:      time.Now,
	}
}

func (u *paymentUC) Process(ctx context.Context, data PaymentData, signedTxBase64 string) (*PaymentResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Process")()

	if data.UserID == "" || signedTxBase64 == "" || data.AmountSOL <= 0 || data.AmountUSD <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := model.ParsePlanType(string(data.PlanType)); err != nil {
		return nil, err
	}

	// Validation precedes any network or database side effect.
	info, err := u.ledger.InspectTransfer(signedTxBase64)
	if err != nil {
		metrics.IncPayment("rejected")
		return nil, err
	}
	if info.Recipient != u.treasury {
		u.log.Warn().
			Str("user_id", data.UserID).
			Str("recipient", info.Recipient).
			Msg("transfer destination does not match treasury")
		metrics.IncPayment("rejected")
		return nil, domain.ErrInvalidRecipient
	}
	// The transfer amount is deliberately not checked against the plan price;
	// only the recipient is validated. The observed lamports are logged so a
	// mismatch is at least visible.
	u.log.Info().
		Str("user_id", data.UserID).
		Str("plan", string(data.PlanType)).
		Uint64("lamports", info.Lamports).
		Float64("amount_sol", data.AmountSOL).
		Msg("transfer validated")

	txHash, err := u.ledger.Submit(ctx, signedTxBase64)
	if err != nil {
		metrics.IncPayment("submission_failed")
		return nil, err
	}
	ctx = logging.WithTxHash(ctx, txHash)
	log := logging.With(ctx, u.log)
	log.Info().Msg("transaction sent")

	payment, err := model.NewPendingPayment(
		ulid.Make().String(),
		data.UserID,
		txHash,
		data.AmountSOL,
		data.AmountUSD,
		data.SolPriceUSD,
		data.PlanType,
	)
	if err != nil {
		return nil, err
	}
	if err := u.payments.Save(ctx, nil, payment); err != nil {
		// The transaction is already broadcast at this point; the pending row
		// is the anchor for reconciliation, so its absence is fatal.
		log.Error().Err(err).Msg("failed to create payment record")
		return nil, domain.ErrLedgerWriteFailed
	}
	metrics.IncPayment("pending")

	sub, err := u.Settle(ctx, payment)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{TransactionHash: txHash, Subscription: sub}, nil
}

// Settle awaits the ledger outcome for a pending payment and writes exactly
// one terminal transition. On success the confirmed-payment update and the
// subscription upsert happen in a single database transaction.
func (u *paymentUC) Settle(ctx context.Context, p *model.Payment) (*model.Subscription, error) {
	log := logging.With(ctx, u.log)

	waitStart := u.now()
	err := u.ledger.AwaitSettlement(ctx, p.TransactionHash)
	metrics.ObserveSettlementWait(u.now().Sub(waitStart).Seconds())

	if errors.Is(err, domain.ErrTransactionFailedOnChain) {
		if _, uerr := u.payments.UpdateStatusIfPending(ctx, nil, p.TransactionHash, model.PaymentStatusFailed, nil); uerr != nil {
			log.Error().Err(uerr).Msg("failed to mark payment failed")
		}
		metrics.IncPayment("failed")
		log.Warn().Msg("transaction failed on chain")
		return nil, domain.ErrTransactionFailedOnChain
	}
	if err != nil {
		// Settlement outcome unknown (timeout, RPC trouble). The payment stays
		// pending; the reconciler picks it up later.
		log.Warn().Err(err).Msg("settlement wait ended without outcome")
		return nil, err
	}

	confirmedAt := u.now()
	sub, err := model.NewSubscription(
		uuid.NewString(),
		p.UserID,
		p.PlanType,
		confirmedAt,
		p.AmountSOL,
		p.AmountUSD,
	)
	if err != nil {
		return nil, err
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		updated, err := u.payments.UpdateStatusIfPending(ctx, tx, p.TransactionHash, model.PaymentStatusConfirmed, &confirmedAt)
		if err != nil {
			return err
		}
		if !updated {
			// Already finalized by a concurrent settle; nothing to do.
			return domain.ErrAlreadyExists
		}
		return u.subs.Upsert(ctx, tx, sub)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		existing, ferr := u.subs.FindByUser(ctx, nil, p.UserID)
		if ferr != nil {
			return nil, ferr
		}
		return existing, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to finalize confirmed payment")
		return nil, err
	}

	metrics.IncPayment("confirmed")
	metrics.AddPaymentRevenueUSD(string(p.PlanType), p.AmountUSD)
	metrics.IncSubscriptionActivated(string(p.PlanType))
	log.Info().
		Str("user_id", p.UserID).
		Str("plan", string(p.PlanType)).
		Time("expires_at", sub.ExpiresAt).
		Msg("payment confirmed, subscription active")
	return sub, nil
}
