//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/domain/ports/adapter"
	"solana-payment-relay/internal/domain/ports/repository"
)

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu     sync.Mutex
	data   map[string]*model.Payment // by id
	byHash map[string]string         // transaction hash -> id

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	FindByIDFunc              func(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error)
	FindByTransactionHashFunc func(ctx context.Context, tx repository.Tx, hash string) (*model.Payment, error)
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, hash string, status model.PaymentStatus, confirmedAt *time.Time) (bool, error)
	ListPendingOlderThanFunc  func(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	SumConfirmedUSDFunc       func(ctx context.Context, tx repository.Tx, period string) (float64, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}, byHash: map[string]string{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	r.byHash[p.TransactionHash] = p.ID
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) FindByTransactionHash(ctx context.Context, tx repository.Tx, hash string) (*model.Payment, error) {
	if r.FindByTransactionHashFunc != nil {
		return r.FindByTransactionHashFunc(ctx, tx, hash)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byHash[hash]; ok {
		cp := *r.data[id]
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, hash string, status model.PaymentStatus, confirmedAt *time.Time) (bool, error) {
	if r.UpdateStatusIfPendingFunc != nil {
		return r.UpdateStatusIfPendingFunc(ctx, tx, hash, status, confirmedAt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHash[hash]
	if !ok {
		return false, nil
	}
	p := r.data[id]
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.ConfirmedAt = confirmedAt
	return true, nil
}

func (r *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if r.ListPendingOlderThanFunc != nil {
		return r.ListPendingOlderThanFunc(ctx, tx, olderThan, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) SumConfirmedUSDByPeriod(ctx context.Context, tx repository.Tx, period string) (float64, error) {
	if r.SumConfirmedUSDFunc != nil {
		return r.SumConfirmedUSDFunc(ctx, tx, period)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, p := range r.data {
		if p.Status == model.PaymentStatusConfirmed {
			sum += p.AmountUSD
		}
	}
	return sum, nil
}

// Get returns the stored payment by transaction hash for assertions.
func (r *MockPaymentRepo) Get(hash string) *model.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byHash[hash]; ok {
		cp := *r.data[id]
		return &cp
	}
	return nil
}

// Len reports how many payment rows were written.
func (r *MockPaymentRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription // by user id

	UpsertFunc        func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	FindByUserFunc    func(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error)
	ExpireOverdueFunc func(ctx context.Context, tx repository.Tx, now time.Time) (int, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{subs: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, sub)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	if prev, ok := r.subs[sub.UserID]; ok {
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
	}
	r.subs[sub.UserID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if r.FindByUserFunc != nil {
		return r.FindByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) ExpireOverdue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	if r.ExpireOverdueFunc != nil {
		return r.ExpireOverdueFunc(ctx, tx, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.subs {
		if s.Status == model.SubscriptionStatusActive && !s.ExpiresAt.After(now) {
			s.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) CountActiveByPlan(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, s := range r.subs {
		if s.Status == model.SubscriptionStatusActive {
			out[string(s.PlanType)]++
		}
	}
	return out, nil
}

// ---- Mock PricingCacheRepository ----

type MockPricingCache struct {
	mu    sync.Mutex
	quote *model.PriceQuote
	Puts  int

	LatestFunc func(ctx context.Context, tx repository.Tx) (*model.PriceQuote, error)
	PutFunc    func(ctx context.Context, tx repository.Tx, q *model.PriceQuote) error
}

var _ repository.PricingCacheRepository = (*MockPricingCache)(nil)

func (r *MockPricingCache) Latest(ctx context.Context, tx repository.Tx) (*model.PriceQuote, error) {
	if r.LatestFunc != nil {
		return r.LatestFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.quote == nil {
		return nil, domain.ErrNotFound
	}
	cp := *r.quote
	return &cp, nil
}

func (r *MockPricingCache) Put(ctx context.Context, tx repository.Tx, q *model.PriceQuote) error {
	if r.PutFunc != nil {
		return r.PutFunc(ctx, tx, q)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *q
	r.quote = &cp
	r.Puts++
	return nil
}

func (r *MockPricingCache) Seed(q model.PriceQuote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quote = &q
}

// ---- Mock LedgerGateway ----

type MockLedger struct {
	mu sync.Mutex

	InspectTransferFunc func(signedTxBase64 string) (adapter.TransferInfo, error)
	SubmitFunc          func(ctx context.Context, signedTxBase64 string) (string, error)
	AwaitSettlementFunc func(ctx context.Context, txHash string) error

	Submitted []string
	Awaited   []string
}

var _ adapter.LedgerGateway = (*MockLedger)(nil)

func (m *MockLedger) InspectTransfer(signedTxBase64 string) (adapter.TransferInfo, error) {
	if m.InspectTransferFunc != nil {
		return m.InspectTransferFunc(signedTxBase64)
	}
	return adapter.TransferInfo{}, domain.ErrMalformedTransaction
}

func (m *MockLedger) Submit(ctx context.Context, signedTxBase64 string) (string, error) {
	if m.SubmitFunc != nil {
		m.mu.Lock()
		m.Submitted = append(m.Submitted, signedTxBase64)
		m.mu.Unlock()
		return m.SubmitFunc(ctx, signedTxBase64)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted = append(m.Submitted, signedTxBase64)
	return "sig-" + signedTxBase64, nil
}

func (m *MockLedger) AwaitSettlement(ctx context.Context, txHash string) error {
	m.mu.Lock()
	m.Awaited = append(m.Awaited, txHash)
	m.mu.Unlock()
	if m.AwaitSettlementFunc != nil {
		return m.AwaitSettlementFunc(ctx, txHash)
	}
	return nil
}

// ---- Mock PriceSource ----

type MockPriceSource struct {
	mu    sync.Mutex
	Calls int

	FetchPriceUSDFunc func(ctx context.Context) (float64, error)
}

var _ adapter.PriceSource = (*MockPriceSource)(nil)

func (m *MockPriceSource) FetchPriceUSD(ctx context.Context) (float64, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.FetchPriceUSDFunc != nil {
		return m.FetchPriceUSDFunc(ctx)
	}
	return 0, domain.ErrPriceUnavailable
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction unless a
// test overrides WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
