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

func TestSubscriptionUseCase_ByUser(t *testing.T) {
	ctx := context.Background()
	subs := NewMockSubscriptionRepo()
	uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

	t.Run("should return not found for a user without history", func(t *testing.T) {
		_, err := uc.ByUser(ctx, "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("should return the subscription row even after expiry", func(t *testing.T) {
		old, _ := model.NewSubscription("s1", "user-1", model.PlanTypePro, time.Now().AddDate(0, -2, 0), 0.5, 50)
		old.Status = model.SubscriptionStatusExpired
		_ = subs.Upsert(ctx, nil, old)

		got, err := uc.ByUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if got.Status != model.SubscriptionStatusExpired {
			t.Errorf("expected the expired row back, got status %q", got.Status)
		}
	})
}

func TestSubscriptionUseCase_FinishExpired(t *testing.T) {
	ctx := context.Background()
	subs := NewMockSubscriptionRepo()
	uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

	overdue, _ := model.NewSubscription("s1", "user-1", model.PlanTypePro, time.Now().AddDate(0, -2, 0), 0.5, 50)
	current, _ := model.NewSubscription("s2", "user-2", model.PlanTypeEnterprise, time.Now(), 1.5, 150)
	_ = subs.Upsert(ctx, nil, overdue)
	_ = subs.Upsert(ctx, nil, current)

	n, err := uc.FinishExpired(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired subscription, got %d", n)
	}

	got, _ := uc.ByUser(ctx, "user-2")
	if got.Status != model.SubscriptionStatusActive {
		t.Error("current subscription must stay active")
	}
}
