// File: internal/infra/adapters/pricing/coingecko.go
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/ports/adapter"
)

var _ adapter.PriceSource = (*CoinGeckoSource)(nil)

// CoinGeckoSource fetches the SOL/USD spot price from the CoinGecko simple
// price API. Single attempt per call; callers own caching and fallback.
type CoinGeckoSource struct {
	endpoint string
	client   *http.Client
}

func NewCoinGeckoSource(endpoint string) (*CoinGeckoSource, error) {
	if endpoint == "" {
		return nil, errors.New("price endpoint empty")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid price endpoint: %w", err)
	}
	return &CoinGeckoSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *CoinGeckoSource) FetchPriceUSD(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", domain.ErrPriceUnavailable, resp.StatusCode)
	}

	var out struct {
		Solana struct {
			USD float64 `json:"usd"`
		} `json:"solana"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}
	if out.Solana.USD <= 0 {
		return 0, fmt.Errorf("%w: missing price field", domain.ErrPriceUnavailable)
	}
	return out.Solana.USD, nil
}
