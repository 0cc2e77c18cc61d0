//go:build !integration

package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
)

type fakeSubscriptionUC struct {
	calls   int64
	expired int
}

func (f *fakeSubscriptionUC) ByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeSubscriptionUC) FinishExpired(ctx context.Context) (int, error) {
	atomic.AddInt64(&f.calls, 1)
	return f.expired, nil
}

func (f *fakeSubscriptionUC) CountActiveByPlan(ctx context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func TestExpiryWorker_Run(t *testing.T) {
	t.Run("ticks until the context is cancelled", func(t *testing.T) {
		uc := &fakeSubscriptionUC{expired: 3}
		w := NewExpiryWorker(10*time.Millisecond, uc, silentLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := w.Run(ctx)
		if err != context.DeadlineExceeded {
			t.Fatalf("expected the context error back, got: %v", err)
		}
		if atomic.LoadInt64(&uc.calls) == 0 {
			t.Error("expected at least one expiry pass")
		}
	})
}
