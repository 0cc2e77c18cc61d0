package api

import (
	"errors"

	"solana-payment-relay/internal/domain"
)

// UserMessage maps an error kind to the message shown to the paying user.
// Every kind in the taxonomy has an entry; unknown errors fall through to a
// generic message so internals never leak into the UI.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrWalletNotConnected):
		return "Please connect your wallet to continue"
	case errors.Is(err, domain.ErrUserRejected):
		return "Signing request was rejected"
	case errors.Is(err, domain.ErrBlockhashExpired):
		return "Transaction expired, please try again"
	case errors.Is(err, domain.ErrMalformedTransaction):
		return "Invalid transaction: malformed"
	case errors.Is(err, domain.ErrInvalidRecipient):
		return "Invalid transaction: wrong recipient"
	case errors.Is(err, domain.ErrSubmissionFailed):
		return "Failed to send transaction"
	case errors.Is(err, domain.ErrLedgerWriteFailed):
		return "Failed to create payment record"
	case errors.Is(err, domain.ErrTransactionFailedOnChain):
		return "Transaction failed on blockchain"
	case errors.Is(err, domain.ErrPriceUnavailable):
		return "Failed to fetch SOL price"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Invalid request"
	default:
		return "Payment failed, please try again"
	}
}
