package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnQE180187/aura-checkout/internal/domain/cart"
	"github.com/AnQE180187/aura-checkout/internal/domain/order"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

// The guard in the WHERE clause is what upholds used_count <= usage_limit:
// together with the FOR UPDATE lock taken at validation, a set limit can
// never be exceeded no matter how many checkouts race.
const consumePromotionSQL = `UPDATE promotions
	SET used_count = used_count + 1
	WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`

var _ order.TxStore = (*CheckoutStore)(nil)

// CheckoutStore implements order.TxStore on a pgx pool.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore returns a CheckoutStore that uses the given pool.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// WithinTx runs fn inside a single database transaction. Any error from fn
// rolls everything back. Serialization failures and deadlocks are mapped to
// order.ErrConflict so callers can tell a lost race from a rejected request.
func (s *CheckoutStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &checkoutTx{tx: tx}); err != nil {
		return mapTxError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapTxError(errors.Wrap(err, "commit tx"))
	}
	return nil
}

// checkoutTx adapts a pgx.Tx to the order.Tx interface.
type checkoutTx struct {
	tx pgx.Tx
}

func (t *checkoutTx) CartWithItems(ctx context.Context, userID string) (*cart.Cart, error) {
	return cartWithItems(ctx, t.tx, userID)
}

func (t *checkoutTx) PromotionForUpdate(ctx context.Context, code string) (*promotion.Code, error) {
	return findPromotion(ctx, t.tx, findPromotionForUpdateSQL, code)
}

func (t *checkoutTx) InsertOrder(ctx context.Context, o *order.Order) error {
	return insertOrder(ctx, t.tx, o)
}

func (t *checkoutTx) ConsumePromotion(ctx context.Context, promotionID string) error {
	tag, err := t.tx.Exec(ctx, consumePromotionSQL, promotionID)
	if err != nil {
		return errors.Wrapf(err, "consume promotion %s", promotionID)
	}
	if tag.RowsAffected() == 0 {
		// Unreachable while the row lock is held after a passing validation;
		// kept as the final defense for the usage invariant.
		return promotion.ErrUsageLimitReached
	}
	return nil
}

func (t *checkoutTx) ClearCart(ctx context.Context, cartID string) error {
	return clearCart(ctx, t.tx, cartID)
}

// Postgres error codes that mean the transaction lost a race rather than
// the request being invalid.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeCheckViolation       = "23514"
)

func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeCheckViolation:
			return order.ErrConflict
		}
	}
	return err
}
