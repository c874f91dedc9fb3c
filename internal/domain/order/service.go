package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/domain/cart"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

// CheckoutRequest holds the input for committing a checkout.
type CheckoutRequest struct {
	UserID          string
	ShippingAddress string
	Phone           string
	PromotionCode   string
}

// Service turns carts into orders. Checkout is the only path that mutates
// state; PreviewTotals prices the same cart without side effects.
type Service struct {
	store  TxStore
	carts  cart.Provider
	promos promotion.Repository
	now    func() time.Time
}

// NewService creates a Service with the required dependencies.
func NewService(store TxStore, carts cart.Provider, promos promotion.Repository) *Service {
	return &Service{
		store:  store,
		carts:  carts,
		promos: promos,
		now:    time.Now,
	}
}

// Checkout atomically converts the user's cart into an order: it loads the
// cart, re-validates the promotion against its row-locked live state,
// computes totals, persists the order with item snapshots and the
// applied-promotion audit row, consumes one promotion use, and clears the
// cart. Any failure rolls the whole transaction back — no partial order,
// no partial cart-clear, no orphaned usage increment.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	var placed *Order

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		c, err := tx.CartWithItems(ctx, req.UserID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if c == nil || len(c.Items) == 0 {
			return ErrEmptyCart
		}

		// The promotion is read inside the transaction, not from any state
		// cached before it began: the FOR UPDATE row carries the live
		// used_count, so two checkouts racing for the last redemption of a
		// usage-limited code serialize here.
		var rule *promotion.Code
		if req.PromotionCode != "" {
			rule, err = tx.PromotionForUpdate(ctx, promotion.Normalize(req.PromotionCode))
			if err != nil {
				return err
			}
		}

		now := s.now()
		totals, err := ComputeTotals(c.Items, rule, now)
		if err != nil {
			return err
		}

		o := &Order{
			ID:              uuid.NewString(),
			Code:            NewCode(now),
			UserID:          req.UserID,
			ShippingAddress: req.ShippingAddress,
			Phone:           req.Phone,
			TotalAmount:     totals.TotalAmount,
			DiscountAmount:  totals.DiscountAmount,
			FinalAmount:     totals.FinalAmount,
			Status:          StatusPending,
			PaymentStatus:   PaymentUnpaid,
			Promotion:       totals.Promotion,
			CreatedAt:       now,
			Items:           snapshotItems(c.Items),
		}

		if err := tx.InsertOrder(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}

		if o.Promotion != nil {
			if err := tx.ConsumePromotion(ctx, o.Promotion.PromotionID); err != nil {
				return err
			}
		}

		if err := tx.ClearCart(ctx, c.ID); err != nil {
			return errors.Wrap(err, "clear cart")
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return placed, nil
}

// PreviewTotals prices the user's current cart with an optional promotion
// code, without committing anything. Rejections surface exactly as they
// would at checkout.
func (s *Service) PreviewTotals(ctx context.Context, userID, promotionCode string) (*Totals, error) {
	c, err := s.carts.CartWithItems(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var rule *promotion.Code
	if promotionCode != "" {
		rule, err = s.promos.FindByCode(ctx, promotion.Normalize(promotionCode))
		if err != nil {
			return nil, err
		}
	}

	return ComputeTotals(c.Items, rule, s.now())
}

// snapshotItems freezes cart lines into order lines, copying the quoted
// unit price rather than consulting the live variant.
func snapshotItems(items []cart.Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		out[i] = Item{
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			TotalPrice:  it.UnitPrice.Mul(qty),
		}
	}
	return out
}
