package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

const (
	promotionColumns = `id, code, description, discount_type, discount_value,
		min_order_amount, max_discount, usage_limit, used_count,
		start_date, end_date, is_active`

	findPromotionSQL = `SELECT ` + promotionColumns + `
		FROM promotions WHERE code = $1 AND is_active = TRUE`

	// FOR UPDATE holds the row lock until the surrounding transaction
	// commits, so used_count cannot move between validation and consumption.
	findPromotionForUpdateSQL = findPromotionSQL + ` FOR UPDATE`

	insertPromotionSQL = `INSERT INTO promotions (id, code, description, discount_type,
		discount_value, min_order_amount, max_discount, usage_limit,
		start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	deactivatePromotionSQL = `UPDATE promotions SET is_active = FALSE WHERE code = $1`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByCode looks up an active promotion by its normalized code.
// Returns promotion.ErrNotFound when no matching active promotion exists.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Code, error) {
	return findPromotion(ctx, r.pool, findPromotionSQL, code)
}

// Create persists a new promotion code. The code column's unique constraint
// rejects duplicates.
func (r *PromotionRepository) Create(ctx context.Context, c *promotion.Code) error {
	_, err := r.pool.Exec(ctx, insertPromotionSQL,
		c.ID, c.Code, c.Description, string(c.DiscountType), c.DiscountValue,
		c.MinOrderAmount, c.MaxDiscount, c.UsageLimit,
		c.StartDate, c.EndDate, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("creating promotion %q: %w", c.Code, err)
	}
	return nil
}

// Deactivate turns a promotion off. Returns promotion.ErrNotFound when the
// code does not exist.
func (r *PromotionRepository) Deactivate(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deactivatePromotionSQL, code)
	if err != nil {
		return fmt.Errorf("deactivating promotion %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

// findPromotion runs one of the promotion lookup queries against q.
func findPromotion(ctx context.Context, q querier, sql, code string) (*promotion.Code, error) {
	rows, err := q.Query(ctx, sql, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &rule, nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Code, error) {
	var (
		c              promotion.Code
		discountType   string
		minOrderAmount *decimal.Decimal
		maxDiscount    *decimal.Decimal
		usageLimit     *int32
		usedCount      int32
		startDate      time.Time
		endDate        time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &discountType, &c.DiscountValue,
		&minOrderAmount, &maxDiscount, &usageLimit, &usedCount,
		&startDate, &endDate, &c.IsActive,
	)
	c.DiscountType = promotion.DiscountType(discountType)
	c.MinOrderAmount = minOrderAmount
	c.MaxDiscount = maxDiscount
	if usageLimit != nil {
		limit := int(*usageLimit)
		c.UsageLimit = &limit
	}
	c.UsedCount = int(usedCount)
	c.StartDate = startDate
	c.EndDate = endDate
	return c, err
}
