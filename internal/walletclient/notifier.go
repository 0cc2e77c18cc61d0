// File: internal/walletclient/notifier.go
package walletclient

import (
	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/infra/api"
)

// LogNotifier reports outcomes through the structured log and invokes an
// optional refresh hook after a confirmed payment.
type LogNotifier struct {
	log     *zerolog.Logger
	refresh func()
}

func NewLogNotifier(logger *zerolog.Logger, refresh func()) *LogNotifier {
	nLog := logger.With().Str("component", "payment-notifier").Logger()
	return &LogNotifier{log: &nLog, refresh: refresh}
}

func (n *LogNotifier) PaymentSucceeded(planType model.PlanType, truncatedTxHash string) {
	n.log.Info().
		Str("plan", string(planType)).
		Str("tx", truncatedTxHash).
		Msgf("Payment successful! Transaction: %s", truncatedTxHash)
	if n.refresh != nil {
		n.refresh()
	}
}

func (n *LogNotifier) PaymentFailed(err error) {
	n.log.Error().Err(err).Msg(api.UserMessage(err))
}
