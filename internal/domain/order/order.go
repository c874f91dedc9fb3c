package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/domain/cart"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

// Status is the fulfillment state of an order. It is set to pending at
// checkout; later transitions come from payment outcomes or admin actions,
// which live outside this service.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks whether the order has been paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

var (
	// ErrEmptyCart is returned when a checkout or preview finds no cart items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrConflict is returned when a checkout loses a race against a
	// concurrent commit. The attempt is final; resubmitting is the caller's
	// decision.
	ErrConflict = errors.New("checkout conflicted with a concurrent commit")
)

// Order is the frozen result of a checkout. The three amounts and the item
// snapshots are immutable once committed: they never track later catalog or
// promotion changes.
type Order struct {
	ID   string
	Code string

	UserID          string
	ShippingAddress string
	Phone           string

	// TotalAmount is the sum of line items before discount, DiscountAmount
	// what the promotion granted (zero without one), and FinalAmount their
	// difference, never negative.
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal

	Status        Status
	PaymentStatus PaymentStatus

	Items     []Item
	Promotion *promotion.Applied
	CreatedAt time.Time
}

// Item is a line-item snapshot. UnitPrice is copied from the cart item at
// commit time and never re-read from the live variant.
type Item struct {
	VariantID   string
	ProductName string
	VariantName string
	UnitPrice   decimal.Decimal
	Quantity    int
	TotalPrice  decimal.Decimal
}

// Tx exposes the storage operations available inside a single checkout
// transaction. Implementations guarantee all-or-nothing semantics across
// every method called within one WithinTx invocation.
type Tx interface {
	// CartWithItems returns the user's cart, or nil when the user has none.
	CartWithItems(ctx context.Context, userID string) (*cart.Cart, error)

	// PromotionForUpdate loads an active promotion and row-locks it for the
	// remainder of the transaction, so the UsedCount it carries stays
	// authoritative until commit. Missing and deactivated codes both yield
	// promotion.ErrNotFound.
	PromotionForUpdate(ctx context.Context, code string) (*promotion.Code, error)

	// InsertOrder persists the order, its item snapshots, and — when the
	// order carries one — the applied-promotion audit row.
	InsertOrder(ctx context.Context, o *Order) error

	// ConsumePromotion increments the promotion's used count by one. The
	// increment is guarded so a set usage limit can never be exceeded;
	// a rejected guard yields promotion.ErrUsageLimitReached.
	ConsumePromotion(ctx context.Context, promotionID string) error

	// ClearCart deletes every item from the cart.
	ClearCart(ctx context.Context, cartID string) error
}

// TxStore runs a function inside a single database transaction. Any error
// from fn rolls the whole transaction back; serialization conflicts surface
// as ErrConflict.
type TxStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
