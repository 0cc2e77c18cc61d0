package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"solana-payment-relay/internal/domain"
	"solana-payment-relay/internal/domain/model"
	"solana-payment-relay/internal/infra/logging"
	red "solana-payment-relay/internal/infra/redis"
	"solana-payment-relay/internal/usecase"
)

// Server exposes the payment relay and its lookup endpoints.
type Server struct {
	payUC     usecase.PaymentUseCase
	pricingUC usecase.PricingUseCase
	subUC     usecase.SubscriptionUseCase
	auth      *AuthManager
	limiter   *red.RateLimiter
	rateLimit int
	rpcURL    string
	treasury  string
	log       *zerolog.Logger
}

func NewServer(
	payUC usecase.PaymentUseCase,
	pricingUC usecase.PricingUseCase,
	subUC usecase.SubscriptionUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	rateLimit int,
	rpcURL string,
	treasuryWallet string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "api").Logger()
	return &Server{
		payUC:     payUC,
		pricingUC: pricingUC,
		subUC:     subUC,
		auth:      auth,
		limiter:   limiter,
		rateLimit: rateLimit,
		rpcURL:    rpcURL,
		treasury:  treasuryWallet,
		log:       &srvLog,
	}
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	common := []Middleware{
		TraceID(s.log),
		RequestLog(s.log),
		Recover(s.log),
	}

	r.Method(http.MethodGet, "/health", Chain(http.HandlerFunc(s.handleHealth), common...))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/config/rpc-url", Chain(http.HandlerFunc(s.handleRPCURL), common...))
		r.Method(http.MethodGet, "/config/treasury", Chain(http.HandlerFunc(s.handleTreasury), common...))
		r.Method(http.MethodGet, "/price", Chain(http.HandlerFunc(s.handlePrice), common...))
		r.Method(http.MethodGet, "/subscriptions/{userID}", Chain(http.HandlerFunc(s.handleSubscription), common...))

		// Settlement waiting dominates this route's latency; the timeout has
		// to outlive the ledger confirmation window.
		processChain := append([]Middleware{}, common...)
		processChain = append(processChain, Timeout(2*time.Minute), RequireUser(s.auth))
		r.Method(http.MethodPost, "/payments/process", Chain(http.HandlerFunc(s.handleProcessPayment), processChain...))
	})

	return r
}

// ===== handlers =====

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRPCURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"rpcUrl": s.rpcURL})
}

func (s *Server) handleTreasury(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"teamWallet": s.treasury})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.pricingUC.PlanQuotes(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"priceUSD":      quotes.PriceUSD,
		"proSOL":        quotes.ProSOL,
		"enterpriseSOL": quotes.EnterpriseSOL,
		"degraded":      quotes.Degraded,
	})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sub, err := s.subUC.ByUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no subscription"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, subscriptionPayload(sub))
}

type paymentRequest struct {
	PaymentData struct {
		UserID      string  `json:"userId"`
		PlanType    string  `json:"planType"`
		AmountSOL   float64 `json:"amountSOL"`
		AmountUSD   float64 `json:"amountUSD"`
		SolPriceUSD float64 `json:"solPriceUSD"`
	} `json:"paymentData"`
	SignedTransaction string `json:"signedTransaction"`
}

func (s *Server) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	userID := req.PaymentData.UserID

	if subject := AuthSubject(ctx); subject != "" && subject != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, red.PaymentKey(userID), s.rateLimit, time.Minute)
		if err != nil {
			// Redis being down must not block payments.
			s.log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many payment attempts, try again later"})
			return
		}
	}

	ctx = logging.WithUserID(ctx, userID)
	result, err := s.payUC.Process(ctx, usecase.PaymentData{
		UserID:      userID,
		PlanType:    model.PlanType(req.PaymentData.PlanType),
		AmountSOL:   req.PaymentData.AmountSOL,
		AmountUSD:   req.PaymentData.AmountUSD,
		SolPriceUSD: req.PaymentData.SolPriceUSD,
	}, req.SignedTransaction)
	if err != nil {
		s.writeRelayError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"transactionHash": result.TransactionHash,
		"subscription":    subscriptionPayload(result.Subscription),
	})
}

// writeRelayError maps pipeline failures to the response contract: known
// error kinds are reported as a JSON error body without an HTTP error status;
// only unexpected failures produce a 500.
func (s *Server) writeRelayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": UserMessage(err)})
	case errors.Is(err, domain.ErrMalformedTransaction),
		errors.Is(err, domain.ErrInvalidRecipient),
		errors.Is(err, domain.ErrSubmissionFailed),
		errors.Is(err, domain.ErrLedgerWriteFailed),
		errors.Is(err, domain.ErrTransactionFailedOnChain):
		writeJSON(w, http.StatusOK, map[string]string{"error": UserMessage(err)})
	default:
		s.log.Error().Err(err).Msg("payment processing failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func subscriptionPayload(sub *model.Subscription) map[string]interface{} {
	return map[string]interface{}{
		"planType":  string(sub.PlanType),
		"status":    string(sub.Status),
		"expiresAt": sub.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
