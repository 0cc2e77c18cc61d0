package model

import (
	"math"

	"solana-payment-relay/internal/domain"
)

type PlanType string

const (
	PlanTypePro        PlanType = "pro"
	PlanTypeEnterprise PlanType = "enterprise"
)

// Fixed USD prices per plan tier. The SOL amount is derived at payment time
// from the current price quote, never stored on the plan itself.
const (
	PlanPriceProUSD        = 50.0
	PlanPriceEnterpriseUSD = 150.0
)

func ParsePlanType(s string) (PlanType, error) {
	switch PlanType(s) {
	case PlanTypePro, PlanTypeEnterprise:
		return PlanType(s), nil
	default:
		return "", domain.ErrInvalidArgument
	}
}

func (p PlanType) PriceUSD() float64 {
	switch p {
	case PlanTypePro:
		return PlanPriceProUSD
	case PlanTypeEnterprise:
		return PlanPriceEnterpriseUSD
	default:
		return 0
	}
}

// CostInSOL converts a USD plan price to SOL at the quoted price,
// rounded to 4 decimal places.
func CostInSOL(planUSD, solPriceUSD float64) float64 {
	if solPriceUSD <= 0 {
		return 0
	}
	return math.Round(planUSD/solPriceUSD*10000) / 10000
}
