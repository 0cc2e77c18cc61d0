package model

import (
	"time"

	"solana-payment-relay/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription is the entitlement granted after a confirmed payment.
// One row per user (upserted on renewal); expiry is always derived from the
// confirmation time plus a fixed one-month term, with no partial periods.
type Subscription struct {
	ID            string // UUID
	UserID        string
	PlanType      PlanType
	Status        SubscriptionStatus
	ExpiresAt     time.Time
	SolAmountPaid float64
	USDAmountPaid float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSubscription activates a subscription starting at confirmedAt.
func NewSubscription(id, userID string, plan PlanType, confirmedAt time.Time, solPaid, usdPaid float64) (*Subscription, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := ParsePlanType(string(plan)); err != nil {
		return nil, err
	}
	return &Subscription{
		ID:            id,
		UserID:        userID,
		PlanType:      plan,
		Status:        SubscriptionStatusActive,
		ExpiresAt:     confirmedAt.AddDate(0, 1, 0),
		SolAmountPaid: solPaid,
		USDAmountPaid: usdPaid,
		CreatedAt:     confirmedAt,
		UpdatedAt:     confirmedAt,
	}, nil
}

func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.ExpiresAt)
}
