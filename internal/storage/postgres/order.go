package postgres

import (
	"context"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/AnQE180187/aura-checkout/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, code, user_id, shipping_address, phone,
		total_amount, discount_amount, final_amount, status, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, variant_id,
		product_name, variant_name, unit_price, quantity, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertAppliedPromotionSQL = `INSERT INTO applied_promotions (id, order_id,
		promotion_id, code, discount_type, discount_value, discount_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

// insertOrder persists an order, its item snapshots, and the
// applied-promotion audit row when the order carries one.
func insertOrder(ctx context.Context, q querier, o *order.Order) error {
	_, err := q.Exec(ctx, insertOrderSQL,
		o.ID, o.Code, o.UserID, o.ShippingAddress, o.Phone,
		o.TotalAmount, o.DiscountAmount, o.FinalAmount,
		string(o.Status), string(o.PaymentStatus), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %s", o.Code)
	}

	for _, it := range o.Items {
		_, err := q.Exec(ctx, insertOrderItemSQL,
			uuid.NewString(), o.ID, it.VariantID,
			it.ProductName, it.VariantName, it.UnitPrice, it.Quantity, it.TotalPrice,
		)
		if err != nil {
			return errors.Wrapf(err, "insert item for order %s", o.Code)
		}
	}

	if o.Promotion != nil {
		p := o.Promotion
		_, err := q.Exec(ctx, insertAppliedPromotionSQL,
			uuid.NewString(), o.ID, p.PromotionID, p.Code,
			string(p.DiscountType), p.DiscountValue, p.DiscountAmount,
		)
		if err != nil {
			return errors.Wrapf(err, "record promotion for order %s", o.Code)
		}
	}

	return nil
}
