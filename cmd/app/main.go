// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-payment-relay/internal/config"
	"solana-payment-relay/internal/infra/adapters/ledger"
	"solana-payment-relay/internal/infra/adapters/pricing"
	"solana-payment-relay/internal/infra/api"
	pg "solana-payment-relay/internal/infra/db/postgres"
	"solana-payment-relay/internal/infra/logging"
	"solana-payment-relay/internal/infra/metrics"
	red "solana-payment-relay/internal/infra/redis"
	"solana-payment-relay/internal/infra/sched"
	"solana-payment-relay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed auth)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	payRepo := pg.NewPaymentRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	priceRepo := pg.NewPricingRepoCacheDecorator(pg.NewPricingCacheRepo(pool), redisClient)

	// ---- Adapters ----
	gateway, err := ledger.NewSolanaGateway(cfg.Solana.RPCURL, cfg.Solana.Commitment, cfg.Solana.ConfirmTimeout, cfg.Solana.ConfirmInterval, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("solana gateway")
	}
	priceSource, err := pricing.NewCoinGeckoSource(cfg.Pricing.Endpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("price source")
	}

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(priceRepo, priceSource, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, subRepo, gateway, txManager, cfg.Solana.TreasuryWallet, logger)

	// ---- HTTP server ----
	auth := api.NewAuthManager(cfg.Auth.HMACSecret)
	if !auth.Enabled() {
		logger.Warn().Msg("auth.hmac_secret not set; payment endpoint is unauthenticated")
	}
	srv := api.NewServer(paymentUC, pricingUC, subUC, auth, rateLimiter, cfg.RateLimit.PaymentsPerMinute, cfg.Solana.RPCURL, cfg.Solana.TreasuryWallet, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Background workers ----
	reconciler := sched.NewSettlementReconciler(paymentUC, payRepo, cfg.Workers.ReconcileInterval, cfg.Workers.ReconcileStale, logger)
	go reconciler.Start(ctx)

	expiry := sched.NewExpiryWorker(cfg.Workers.ExpiryInterval, subUC, logger)
	go func() { _ = expiry.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
