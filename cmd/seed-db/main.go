package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/storage/postgres"
)

type seedVariant struct {
	id          string
	productName string
	name        string
	price       int64
}

type seedPromotion struct {
	code           string
	description    string
	discountType   string
	discountValue  int64
	minOrderAmount int64 // 0 means no minimum
	maxDiscount    int64 // 0 means no cap
	usageLimit     int32 // 0 means unlimited
	days           int
}

var variants = []seedVariant{
	{id: "var-noir-50", productName: "Aura Noir", name: "Eau de Parfum 50ml", price: 1_850_000},
	{id: "var-noir-100", productName: "Aura Noir", name: "Eau de Parfum 100ml", price: 2_950_000},
	{id: "var-bloom-50", productName: "Aura Bloom", name: "Eau de Toilette 50ml", price: 1_250_000},
	{id: "var-bloom-100", productName: "Aura Bloom", name: "Eau de Toilette 100ml", price: 2_050_000},
	{id: "var-oud-30", productName: "Aura Oud Royale", name: "Extrait 30ml", price: 3_600_000},
}

var promotions = []seedPromotion{
	{
		code:           "AURA10",
		description:    "10% off orders from 2,000,000 VND, up to 500,000 VND",
		discountType:   "percentage",
		discountValue:  10,
		minOrderAmount: 2_000_000,
		maxDiscount:    500_000,
		usageLimit:     100,
		days:           30,
	},
	{
		code:           "WELCOME500",
		description:    "500,000 VND off your first order from 5,000,000 VND",
		discountType:   "fixed_amount",
		discountValue:  500_000,
		minOrderAmount: 5_000_000,
		usageLimit:     1000,
		days:           90,
	},
	{
		code:          "FLASH50",
		description:   "Flash sale: 50,000 VND off any order",
		discountType:  "fixed_amount",
		discountValue: 50_000,
		usageLimit:    50,
		days:          2,
	},
}

func main() {
	var (
		databaseURL  string
		demoUserID   string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&demoUserID, "demo-user", "demo-user", "user ID to seed a demo cart for")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or AURA_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or AURA_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("AURA_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or AURA_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("AURA_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, demoUserID, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, demoUserID, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedVariants(ctx, pool); err != nil {
		return errors.Wrap(err, "seed variants")
	}

	if err := seedDemoCart(ctx, pool, demoUserID); err != nil {
		return errors.Wrap(err, "seed demo cart")
	}

	if err := seedPromotions(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedVariants(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("upserting variants", slog.Int("count", len(variants)))

	const upsert = `
		INSERT INTO variants (id, product_name, name, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			name = EXCLUDED.name,
			price = EXCLUDED.price`

	for _, v := range variants {
		if _, err := pool.Exec(ctx, upsert, v.id, v.productName, v.name, decimal.NewFromInt(v.price)); err != nil {
			return errors.Wrapf(err, "upsert variant %s", v.id)
		}

		slog.Info("upserted variant", slog.String("id", v.id), slog.String("product", v.productName))
	}

	return nil
}

// seedDemoCart creates a cart for the demo user holding two items, skipping
// the user if they already have one.
func seedDemoCart(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	cartID := uuid.NewString()

	tag, err := pool.Exec(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, cartID, userID)
	if err != nil {
		return errors.Wrap(err, "insert cart")
	}
	if tag.RowsAffected() == 0 {
		slog.Info("demo cart already exists", slog.String("user_id", userID))
		return nil
	}

	const insertItem = `
		INSERT INTO cart_items (id, cart_id, variant_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	items := []struct {
		variantID string
		quantity  int32
		unitPrice int64
	}{
		{variantID: "var-noir-100", quantity: 1, unitPrice: 2_950_000},
		{variantID: "var-bloom-50", quantity: 2, unitPrice: 1_250_000},
	}
	for _, it := range items {
		if _, err := pool.Exec(ctx, insertItem,
			uuid.NewString(), cartID, it.variantID, it.quantity, decimal.NewFromInt(it.unitPrice),
		); err != nil {
			return errors.Wrapf(err, "insert cart item %s", it.variantID)
		}
	}

	slog.Info("seeded demo cart", slog.String("user_id", userID), slog.Int("items", len(items)))
	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("upserting promotions", slog.Int("count", len(promotions)))

	const upsert = `
		INSERT INTO promotions (
			id, code, description, discount_type, discount_value,
			min_order_amount, max_discount, usage_limit,
			start_date, end_date, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			min_order_amount = EXCLUDED.min_order_amount,
			max_discount = EXCLUDED.max_discount,
			usage_limit = EXCLUDED.usage_limit,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			is_active = TRUE`

	now := time.Now().UTC()
	for _, p := range promotions {
		var (
			minOrder    *decimal.Decimal
			maxDiscount *decimal.Decimal
			usageLimit  *int32
		)
		if p.minOrderAmount > 0 {
			d := decimal.NewFromInt(p.minOrderAmount)
			minOrder = &d
		}
		if p.maxDiscount > 0 {
			d := decimal.NewFromInt(p.maxDiscount)
			maxDiscount = &d
		}
		if p.usageLimit > 0 {
			usageLimit = &p.usageLimit
		}

		if _, err := pool.Exec(ctx, upsert,
			uuid.NewString(), p.code, p.description, p.discountType,
			decimal.NewFromInt(p.discountValue), minOrder, maxDiscount, usageLimit,
			now, now.AddDate(0, 0, p.days),
		); err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.code)
		}

		slog.Info("upserted promotion", slog.String("code", p.code), slog.String("description", p.description))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	const upsert = `
		INSERT INTO api_keys (id, key_hash, name, scopes, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			name = EXCLUDED.name,
			scopes = EXCLUDED.scopes,
			is_active = TRUE`

	if _, err := pool.Exec(ctx, upsert,
		"admin", keyHash, "Admin key", []string{"manage_promotions"},
	); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("id", "admin"), slog.String("name", "Admin key"))

	return nil
}
