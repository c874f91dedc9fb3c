package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnQE180187/aura-checkout/internal/domain/cart"
)

const (
	getCartSQL = `SELECT id, user_id FROM carts WHERE user_id = $1`

	getCartItemsSQL = `SELECT ci.id, ci.variant_id, v.product_name, v.name,
		ci.quantity, ci.unit_price
		FROM cart_items ci
		JOIN variants v ON v.id = ci.variant_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	clearCartSQL = `DELETE FROM cart_items WHERE cart_id = $1`
)

var _ cart.Provider = (*CartRepository)(nil)

// CartRepository implements cart.Provider backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// CartWithItems returns the user's cart with its items, or nil when the
// user has no cart.
func (r *CartRepository) CartWithItems(ctx context.Context, userID string) (*cart.Cart, error) {
	return cartWithItems(ctx, r.pool, userID)
}

func cartWithItems(ctx context.Context, q querier, userID string) (*cart.Cart, error) {
	rows, err := q.Query(ctx, getCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("finding cart for user %q: %w", userID, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (cart.Cart, error) {
		var c cart.Cart
		err := row.Scan(&c.ID, &c.UserID)
		return c, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding cart for user %q: %w", userID, err)
	}

	itemRows, err := q.Query(ctx, getCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading items for cart %q: %w", c.ID, err)
	}

	c.Items, err = pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (cart.Item, error) {
		var it cart.Item
		err := row.Scan(&it.ID, &it.VariantID, &it.ProductName, &it.VariantName,
			&it.Quantity, &it.UnitPrice)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("loading items for cart %q: %w", c.ID, err)
	}

	return &c, nil
}

func clearCart(ctx context.Context, q querier, cartID string) error {
	if _, err := q.Exec(ctx, clearCartSQL, cartID); err != nil {
		return fmt.Errorf("clearing cart %q: %w", cartID, err)
	}
	return nil
}
