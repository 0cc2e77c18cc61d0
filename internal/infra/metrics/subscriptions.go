package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(subscriptionsActivatedTotal, subscriptionsExpiredTotal) }

var (
	subscriptionsActivatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Subscriptions activated or renewed after a confirmed payment, by plan.",
		},
		[]string{"plan"},
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Subscriptions flipped to expired by the expiry worker.",
		},
	)
)

func IncSubscriptionActivated(plan string) {
	subscriptionsActivatedTotal.WithLabelValues(norm(plan)).Inc()
}

func IncSubscriptionsExpired(n int) {
	subscriptionsExpiredTotal.Add(float64(n))
}
