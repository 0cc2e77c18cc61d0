package adapter

import "context"

// TransferInfo is what the relay learns from inspecting a signed transaction
// before deciding whether to broadcast it.
type TransferInfo struct {
	Sender    string
	Recipient string
	Lamports  uint64
}

// LedgerGateway is the hex port for the settlement ledger (Solana).
type LedgerGateway interface {
	// InspectTransfer decodes a base64 signed transaction and extracts the
	// system-transfer details of its first instruction. Returns
	// domain.ErrMalformedTransaction when the payload cannot be parsed or the
	// instruction is not a system transfer.
	InspectTransfer(signedTxBase64 string) (TransferInfo, error)

	// Submit broadcasts the raw signed transaction and returns the ledger
	// transaction hash (signature).
	Submit(ctx context.Context, signedTxBase64 string) (string, error)

	// AwaitSettlement blocks until the ledger reports a terminal outcome for
	// the hash. Returns nil on confirmed settlement and
	// domain.ErrTransactionFailedOnChain on an observed on-chain failure.
	AwaitSettlement(ctx context.Context, txHash string) error
}
