package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, priceRefreshTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Tracks cache hits and misses for various caches.",
		},
		[]string{"cache", "result"}, // e.g., cache="price", result="hit"
	)

	priceRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_refresh_total",
			Help: "External price API refresh attempts by outcome (ok/error).",
		},
		[]string{"outcome"},
	)
)

func IncCacheRequest(cache, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cache), norm(result)).Inc()
}

func IncPriceRefresh(outcome string) {
	priceRefreshTotal.WithLabelValues(norm(outcome)).Inc()
}
