package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"solana-payment-relay/internal/config"
	pg "solana-payment-relay/internal/infra/db/postgres"
)

// schema is idempotent; rerunning the seeder against a live database is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS payments (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		transaction_hash TEXT NOT NULL UNIQUE,
		amount_sol       DOUBLE PRECISION NOT NULL,
		amount_usd       DOUBLE PRECISION NOT NULL,
		sol_price_usd    DOUBLE PRECISION NOT NULL,
		plan_type        TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending',
		confirmed_at     TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_user ON payments (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_status_created ON payments (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL UNIQUE,
		plan_type       TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'active',
		expires_at      TIMESTAMPTZ NOT NULL,
		sol_amount_paid DOUBLE PRECISION NOT NULL,
		usd_amount_paid DOUBLE PRECISION NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_status_expires ON subscriptions (status, expires_at)`,
	`CREATE TABLE IF NOT EXISTS pricing_cache (
		id            INTEGER PRIMARY KEY,
		sol_price_usd DOUBLE PRECISION NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	seedPrice := flag.Float64("price", 0, "optional SOL/USD price to pre-populate the cache with")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
	}
	fmt.Println("schema applied")

	if *seedPrice > 0 {
		_, err := pool.Exec(ctx,
			`INSERT INTO pricing_cache (id, sol_price_usd, updated_at) VALUES (1, $1, now())
			 ON CONFLICT (id) DO UPDATE SET sol_price_usd = EXCLUDED.sol_price_usd, updated_at = now()`,
			*seedPrice)
		if err != nil {
			log.Fatalf("seed price: %v", err)
		}
		fmt.Printf("seeded: SOL price %.2f USD\n", *seedPrice)
	}

	fmt.Println("✅ Seeding complete.")
}
