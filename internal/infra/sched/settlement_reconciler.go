package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain/ports/repository"
	"solana-payment-relay/internal/infra/logging"
	"solana-payment-relay/internal/usecase"
)

// SettlementReconciler periodically scans for stale pending payments and tries
// to finalize them by re-checking the ledger. This covers the case where the
// process crashed (or the confirmation wait timed out) after a transaction was
// broadcast but before a terminal status was written.
type SettlementReconciler struct {
	uc         usecase.PaymentUseCase
	payments   repository.PaymentRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewSettlementReconciler(uc usecase.PaymentUseCase, payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *SettlementReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	wLog := logger.With().Str("component", "SettlementReconciler").Logger()
	return &SettlementReconciler{uc: uc, payments: payments, interval: interval, staleAfter: staleAfter, log: &wLog}
}

func (w *SettlementReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *SettlementReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list pending payments failed")
		return
	}
	for _, p := range pending {
		// A stale pending payment has long since settled one way or the
		// other; bound the status check so one hash cannot stall the sweep.
		sctx, cancel := context.WithTimeout(logging.WithTxHash(ctx, p.TransactionHash), 15*time.Second)
		_, err := w.uc.Settle(sctx, p)
		cancel()
		if err != nil {
			w.log.Warn().Err(err).Str("payment_id", p.ID).Str("tx_hash", p.TransactionHash).Msg("settle failed")
			continue
		}
		w.log.Info().Str("payment_id", p.ID).Msg("reconciled payment")
	}
}
