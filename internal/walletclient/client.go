// File: internal/walletclient/client.go
package walletclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
)

// Signer is the wallet session. Signing suspends until the user approves or
// declines in their wallet; a decline surfaces as domain.ErrUserRejected.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// Notifier receives every terminal outcome of a payment attempt. There are no
// silent failures: each error path ends in exactly one PaymentFailed call.
// Implementations should refresh subscription-dependent state on success.
type Notifier interface {
	PaymentSucceeded(planType model.PlanType, truncatedTxHash string)
	PaymentFailed(err error)
}

// PlanQuotes mirrors the relay's pricing payload.
type PlanQuotes struct {
	PriceUSD      float64 `json:"priceUSD"`
	ProSOL        float64 `json:"proSOL"`
	EnterpriseSOL float64 `json:"enterpriseSOL"`
	Degraded      bool    `json:"degraded"`
}

// Client drives the signing side of the payment pipeline: resolve endpoints,
// build and sign the transfer, hand the signed transaction to the relay once,
// and report the outcome. No step is retried automatically.
type Client struct {
	relayURL  string
	authToken string
	http      *http.Client
	signer    Signer
	notifier  Notifier
	log       *zerolog.Logger
}

func NewClient(relayURL, authToken string, signer Signer, notifier Notifier, logger *zerolog.Logger) *Client {
	cLog := logger.With().Str("component", "walletclient").Logger()
	return &Client{
		relayURL:  relayURL,
		authToken: authToken,
		http:      &http.Client{Timeout: 3 * time.Minute},
		signer:    signer,
		notifier:  notifier,
		log:       &cLog,
	}
}

// ResolveRPCEndpoint asks the relay for the RPC URL, falling back to the
// public mainnet cluster when the lookup fails. No retry; the fallback is the
// recovery.
func (c *Client) ResolveRPCEndpoint(ctx context.Context) string {
	var out struct {
		RPCURL string `json:"rpcUrl"`
	}
	if err := c.getJSON(ctx, "/api/v1/config/rpc-url", &out); err != nil || out.RPCURL == "" {
		c.log.Warn().Err(err).Msg("rpc url lookup failed, using public cluster")
		return rpc.MainNetBeta_RPC
	}
	return out.RPCURL
}

// FetchTreasury returns the treasury address payments must be sent to.
func (c *Client) FetchTreasury(ctx context.Context) (solana.PublicKey, error) {
	var out struct {
		TeamWallet string `json:"teamWallet"`
	}
	if err := c.getJSON(ctx, "/api/v1/config/treasury", &out); err != nil {
		return solana.PublicKey{}, fmt.Errorf("treasury lookup: %w", err)
	}
	key, err := solana.PublicKeyFromBase58(out.TeamWallet)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("treasury address %q: %w", out.TeamWallet, err)
	}
	return key, nil
}

// FetchQuotes returns current plan pricing. An error here means the price is
// unresolved and a payment must not be started.
func (c *Client) FetchQuotes(ctx context.Context) (*PlanQuotes, error) {
	var out PlanQuotes
	if err := c.getJSON(ctx, "/api/v1/price", &out); err != nil {
		return nil, domain.ErrPriceUnavailable
	}
	return &out, nil
}

// Pay runs the whole client-side flow for one plan purchase. Every outcome,
// success or failure, is delivered to the notifier; the returned error lets
// callers decide whether to keep the payment dialog open for a retry.
func (c *Client) Pay(ctx context.Context, userID string, plan model.PlanType) error {
	if c.signer == nil {
		c.notifier.PaymentFailed(domain.ErrWalletNotConnected)
		return domain.ErrWalletNotConnected
	}

	quotes, err := c.FetchQuotes(ctx)
	if err != nil {
		c.notifier.PaymentFailed(err)
		return err
	}
	amountUSD := plan.PriceUSD()
	var amountSOL float64
	switch plan {
	case model.PlanTypePro:
		amountSOL = quotes.ProSOL
	case model.PlanTypeEnterprise:
		amountSOL = quotes.EnterpriseSOL
	default:
		c.notifier.PaymentFailed(domain.ErrInvalidArgument)
		return domain.ErrInvalidArgument
	}

	treasury, err := c.FetchTreasury(ctx)
	if err != nil {
		c.notifier.PaymentFailed(err)
		return err
	}

	signedB64, err := c.buildAndSign(ctx, treasury, amountSOL)
	if err != nil {
		c.notifier.PaymentFailed(err)
		return err
	}

	txHash, err := c.submit(ctx, userID, plan, amountSOL, amountUSD, quotes.PriceUSD, signedB64)
	if err != nil {
		c.notifier.PaymentFailed(err)
		return err
	}

	c.notifier.PaymentSucceeded(plan, truncateHash(txHash))
	return nil
}

func (c *Client) buildAndSign(ctx context.Context, treasury solana.PublicKey, amountSOL float64) (string, error) {
	from := c.signer.PublicKey()
	lamports := uint64(math.Floor(amountSOL * float64(solana.LAMPORTS_PER_SOL)))

	endpoint := c.ResolveRPCEndpoint(ctx)
	rpcClient := rpc.New(endpoint)
	recent, err := rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, from, treasury).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	signed, err := c.signer.SignTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (c *Client) submit(ctx context.Context, userID string, plan model.PlanType, amountSOL, amountUSD, priceUSD float64, signedB64 string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"paymentData": map[string]interface{}{
			"userId":      userID,
			"planType":    string(plan),
			"amountSOL":   amountSOL,
			"amountUSD":   amountUSD,
			"solPriceUSD": priceUSD,
		},
		"signedTransaction": signedB64,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+"/api/v1/payments/process", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Success         bool   `json:"success"`
		TransactionHash string `json:"transactionHash"`
		Error           string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("relay response: %w", err)
	}
	if !out.Success {
		if out.Error == "" {
			out.Error = "Payment failed"
		}
		return "", fmt.Errorf("payment rejected: %s", out.Error)
	}
	return out.TransactionHash, nil
}

func truncateHash(hash string) string {
	if len(hash) <= 8 {
		return hash
	}
	return hash[:8] + "..."
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.relayURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
