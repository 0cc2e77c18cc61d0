package model

import (
	"time"

	"solana-payment-relay/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // broadcast to the ledger; awaiting settlement
	PaymentStatusConfirmed PaymentStatus = "confirmed" // ledger reported success
	PaymentStatusFailed    PaymentStatus = "failed"    // ledger reported failure
)

// Payment records one on-chain transfer attempt for a subscription purchase.
// A row is created in `pending` state right after the raw transaction is
// broadcast, and transitions to exactly one terminal state once settlement is
// observed. Terminal rows are never modified again.
type Payment struct {
	ID              string // ULID
	UserID          string
	TransactionHash string // ledger signature, unique
	AmountSOL       float64
	AmountUSD       float64
	SolPriceUSD     float64 // quote used to compute AmountSOL
	PlanType        PlanType
	Status          PaymentStatus
	ConfirmedAt     *time.Time // set when status becomes confirmed
	CreatedAt       time.Time
}

// NewPendingPayment validates and constructs a pending payment row.
func NewPendingPayment(id, userID, txHash string, amountSOL, amountUSD, solPriceUSD float64, plan PlanType) (*Payment, error) {
	if id == "" || userID == "" || txHash == "" || amountSOL <= 0 || amountUSD <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := ParsePlanType(string(plan)); err != nil {
		return nil, err
	}
	return &Payment{
		ID:              id,
		UserID:          userID,
		TransactionHash: txHash,
		AmountSOL:       amountSOL,
		AmountUSD:       amountUSD,
		SolPriceUSD:     solPriceUSD,
		PlanType:        plan,
		Status:          PaymentStatusPending,
		CreatedAt:       time.Now(),
	}, nil
}

func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusConfirmed || p.Status == PaymentStatusFailed
}
