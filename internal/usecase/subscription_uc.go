// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/repository"
)

var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// ByUser returns the user's subscription row (active or expired), or
	// domain.ErrNotFound when the user never subscribed.
	ByUser(ctx context.Context, userID string) (*model.Subscription, error)
	// FinishExpired flips active subscriptions past their expiry and returns
	// how many were changed.
	FinishExpired(ctx context.Context) (int, error)
	CountActiveByPlan(ctx context.Context) (map[string]int, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
	now  func() time.Time
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *subscriptionUC {
	ucLog := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{subs: subs, log: &ucLog, now: time.Now}
}

func (u *subscriptionUC) ByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	return u.subs.FindByUser(ctx, nil, userID)
}

func (u *subscriptionUC) FinishExpired(ctx context.Context) (int, error) {
	return u.subs.ExpireOverdue(ctx, nil, u.now())
}

func (u *subscriptionUC) CountActiveByPlan(ctx context.Context) (map[string]int, error) {
	return u.subs.CountActiveByPlan(ctx, nil)
}
