package repository

import (
	"context"
	"time"

	"solana-payment-relay/internal/domain/model"
)

// SubscriptionRepository is the port for user entitlements.
type SubscriptionRepository interface {
	// Upsert creates or renews the user's subscription row (one per user).
	Upsert(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// ExpireOverdue flips active subscriptions past their expiry and returns
	// how many rows changed.
	ExpireOverdue(ctx context.Context, tx Tx, now time.Time) (int, error)
	CountActiveByPlan(ctx context.Context, tx Tx) (map[string]int, error)
}
