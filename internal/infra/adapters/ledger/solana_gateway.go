// File: internal/infra/adapters/ledger/solana_gateway.go
package ledger

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/ports/adapter"
)

var _ adapter.LedgerGateway = (*SolanaGateway)(nil)

// system program Transfer instruction index
const systemTransferIndex = 2

// SolanaGateway implements adapter.LedgerGateway against a Solana RPC node.
// Confirmation uses the node's own signature-status polling; the only local
// bound is the configured timeout.
type SolanaGateway struct {
	client          *rpc.Client
	commitment      rpc.CommitmentType
	confirmTimeout  time.Duration
	confirmInterval time.Duration
	log             *zerolog.Logger
}

func NewSolanaGateway(rpcURL, commitment string, confirmTimeout, confirmInterval time.Duration, logger *zerolog.Logger) (*SolanaGateway, error) {
	if rpcURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	c := rpc.CommitmentConfirmed
	switch commitment {
	case "", "confirmed":
	case "processed":
		c = rpc.CommitmentProcessed
	case "finalized":
		c = rpc.CommitmentFinalized
	default:
		return nil, fmt.Errorf("unknown commitment %q: %w", commitment, domain.ErrInvalidArgument)
	}
	gwLog := logger.With().Str("component", "SolanaGateway").Logger()
	return &SolanaGateway{
		client:          rpc.New(rpcURL),
		commitment:      c,
		confirmTimeout:  confirmTimeout,
		confirmInterval: confirmInterval,
		log:             &gwLog,
	}, nil
}

// InspectTransfer decodes the signed transaction and extracts the transfer
// details of instruction 0 without touching the network.
func (g *SolanaGateway) InspectTransfer(signedTxBase64 string) (adapter.TransferInfo, error) {
	raw, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return adapter.TransferInfo{}, fmt.Errorf("base64 decode: %w", domain.ErrMalformedTransaction)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return adapter.TransferInfo{}, fmt.Errorf("deserialize: %w", domain.ErrMalformedTransaction)
	}
	return inspectTransfer(tx)
}

func inspectTransfer(tx *solana.Transaction) (adapter.TransferInfo, error) {
	msg := &tx.Message
	if len(msg.Instructions) == 0 {
		return adapter.TransferInfo{}, fmt.Errorf("no instructions: %w", domain.ErrInvalidRecipient)
	}
	inst := msg.Instructions[0]

	if int(inst.ProgramIDIndex) >= len(msg.AccountKeys) {
		return adapter.TransferInfo{}, fmt.Errorf("program index out of range: %w", domain.ErrMalformedTransaction)
	}
	program := msg.AccountKeys[inst.ProgramIDIndex]
	if !program.Equals(solana.SystemProgramID) {
		return adapter.TransferInfo{}, fmt.Errorf("not a system transfer: %w", domain.ErrInvalidRecipient)
	}

	// System transfer layout: u32 instruction index, u64 lamports.
	if len(inst.Data) < 12 || binary.LittleEndian.Uint32(inst.Data[:4]) != systemTransferIndex {
		return adapter.TransferInfo{}, fmt.Errorf("not a transfer instruction: %w", domain.ErrInvalidRecipient)
	}
	lamports := binary.LittleEndian.Uint64(inst.Data[4:12])

	if len(inst.Accounts) < 2 {
		return adapter.TransferInfo{}, fmt.Errorf("missing transfer accounts: %w", domain.ErrMalformedTransaction)
	}
	senderIdx, destIdx := int(inst.Accounts[0]), int(inst.Accounts[1])
	if senderIdx >= len(msg.AccountKeys) || destIdx >= len(msg.AccountKeys) {
		return adapter.TransferInfo{}, fmt.Errorf("account index out of range: %w", domain.ErrMalformedTransaction)
	}

	return adapter.TransferInfo{
		Sender:    msg.AccountKeys[senderIdx].String(),
		Recipient: msg.AccountKeys[destIdx].String(),
		Lamports:  lamports,
	}, nil
}

func (g *SolanaGateway) Submit(ctx context.Context, signedTxBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", domain.ErrMalformedTransaction)
	}
	sig, err := g.client.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		PreflightCommitment: g.commitment,
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("sendRawTransaction failed")
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	return sig.String(), nil
}

// AwaitSettlement polls signature status until the configured commitment is
// reached, an on-chain error is reported, or the timeout elapses. Transient
// RPC errors do not abort the wait.
func (g *SolanaGateway) AwaitSettlement(ctx context.Context, txHash string) error {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return fmt.Errorf("bad signature %q: %w", txHash, domain.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(g.confirmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("settlement wait for %s: %w", txHash, ctx.Err())
		case <-ticker.C:
			out, err := g.client.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				g.log.Debug().Err(err).Msg("getSignatureStatuses failed; retrying")
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			st := out.Value[0]
			if st.Err != nil {
				return domain.ErrTransactionFailedOnChain
			}
			if g.settled(st.ConfirmationStatus) {
				return nil
			}
		}
	}
}

func (g *SolanaGateway) settled(status rpc.ConfirmationStatusType) bool {
	switch g.commitment {
	case rpc.CommitmentProcessed:
		return status != ""
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}
