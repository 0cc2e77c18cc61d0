package model

import "time"

// PriceQuote is the cached SOL/USD price. A quote older than the freshness
// window triggers a single refresh attempt; on refresh failure the stale
// value is served as a degraded fallback.
type PriceQuote struct {
	PriceUSD  float64
	UpdatedAt time.Time
}

// PriceFreshness is how long a cached quote is served without refresh.
const PriceFreshness = 5 * time.Minute

func (q PriceQuote) FreshAt(now time.Time) bool {
	return now.Sub(q.UpdatedAt) < PriceFreshness
}
