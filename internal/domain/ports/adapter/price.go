package adapter

import "context"

// PriceSource fetches the current SOL/USD price from an external API.
// One attempt per call; staleness and fallback policy live in the use case.
type PriceSource interface {
	FetchPriceUSD(ctx context.Context) (float64, error)
}
