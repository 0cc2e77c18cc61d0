package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Repository-level failures
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")

	// Signing-side failures (wallet client)
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrUserRejected       = errors.New("signing request rejected by user")
	ErrBlockhashExpired   = errors.New("transaction blockhash expired")

	// Relay-side validation failures
	ErrMalformedTransaction = errors.New("invalid transaction: could not be parsed")
	ErrInvalidRecipient     = errors.New("invalid transaction: wrong recipient")

	// Relay-side infrastructure failures
	ErrSubmissionFailed  = errors.New("transaction submission failed")
	ErrLedgerWriteFailed = errors.New("failed to create payment record")

	// Observed settlement failure
	ErrTransactionFailedOnChain = errors.New("transaction failed on blockchain")

	// Pricing failures
	ErrPriceUnavailable = errors.New("failed to fetch SOL price")
)
