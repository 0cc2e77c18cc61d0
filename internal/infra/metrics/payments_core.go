package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueUSDTotal,
		settlementWaitSeconds,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by terminal status (confirmed/failed) and rejection kind.",
		},
		[]string{"status"},
	)

	paymentsRevenueUSDTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_usd_total",
			Help: "Total USD value of confirmed payments, labeled by plan.",
		},
		[]string{"plan"},
	)

	settlementWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_settlement_wait_seconds",
			Help:    "Time spent awaiting ledger confirmation per payment.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenueUSD(plan string, amountUSD float64) {
	paymentsRevenueUSDTotal.WithLabelValues(norm(plan)).Add(amountUSD)
}

func ObserveSettlementWait(seconds float64) {
	settlementWaitSeconds.Observe(seconds)
}
