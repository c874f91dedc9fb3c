//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Seeded variants (see cmd/seed-db): var-noir-100 at 2,950,000 and
// var-bloom-50 at 1,250,000.

func TestCheckout_EmptyCart(t *testing.T) {
	resp := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          "it-user-" + uuid.NewString(), // no cart at all
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000001",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Code != "EMPTY_CART" {
		t.Errorf("code: got %q, want EMPTY_CART", body.Code)
	}
}

func TestCheckout_NoPromotion(t *testing.T) {
	userID := newUserWithCart(t,
		cartLine{variantID: "var-noir-100", quantity: 1, unitPrice: 2_950_000},
		cartLine{variantID: "var-bloom-50", quantity: 2, unitPrice: 1_250_000},
	)

	resp := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000002",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.TotalAmount != "5450000" {
		t.Errorf("total: got %s, want 5450000", order.TotalAmount)
	}
	if order.DiscountAmount != "0" {
		t.Errorf("discount: got %s, want 0", order.DiscountAmount)
	}
	if order.FinalAmount != "5450000" {
		t.Errorf("final: got %s, want 5450000", order.FinalAmount)
	}
	if order.Status != "pending" || order.PaymentStatus != "unpaid" {
		t.Errorf("status: got %s/%s, want pending/unpaid", order.Status, order.PaymentStatus)
	}
	if !strings.HasPrefix(order.Code, "ORD-") {
		t.Errorf("order code %q lacks ORD- prefix", order.Code)
	}

	// The cart is cleared by the commit.
	resp2 := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000002",
	})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("second checkout: expected 422 EMPTY_CART, got %d", resp2.StatusCode)
	}
}

func TestCheckout_WithPercentagePromotion(t *testing.T) {
	// Subtotal 6,000,000. AURA10 grants 10% capped at 500,000.
	userID := newUserWithCart(t,
		cartLine{variantID: "var-noir-100", quantity: 1, unitPrice: 2_950_000},
		cartLine{variantID: "var-oud-30", quantity: 1, unitPrice: 3_050_000},
	)

	resp := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000003",
		PromotionCode:   "aura10", // lowercase on purpose
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.DiscountAmount != "500000" {
		t.Errorf("discount: got %s, want 500000", order.DiscountAmount)
	}
	if order.FinalAmount != "5500000" {
		t.Errorf("final: got %s, want 5500000", order.FinalAmount)
	}
	if order.Promotion == nil || order.Promotion.Code != "AURA10" {
		t.Errorf("promotion: got %+v, want AURA10", order.Promotion)
	}
}

func TestCheckout_UnknownPromotion(t *testing.T) {
	userID := newUserWithCart(t,
		cartLine{variantID: "var-bloom-50", quantity: 1, unitPrice: 1_250_000},
	)

	resp := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000004",
		PromotionCode:   "NOSUCHCODE",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// The failed checkout must leave the cart intact.
	resp2 := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000004",
	})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusCreated {
		t.Fatalf("retry without code: expected 201, got %d", resp2.StatusCode)
	}
}

func TestCheckout_BelowMinimum(t *testing.T) {
	// AURA10 requires a 2,000,000 subtotal.
	userID := newUserWithCart(t,
		cartLine{variantID: "var-bloom-50", quantity: 1, unitPrice: 1_250_000},
	)

	resp := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000005",
		PromotionCode:   "AURA10",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Code != "BELOW_MINIMUM" {
		t.Errorf("code: got %q, want BELOW_MINIMUM", body.Code)
	}
	if !strings.Contains(body.Message, "2000000") {
		t.Errorf("message %q should carry the required minimum", body.Message)
	}
}

func TestCheckoutPreview_DoesNotConsume(t *testing.T) {
	userID := newUserWithCart(t,
		cartLine{variantID: "var-noir-100", quantity: 1, unitPrice: 2_950_000},
	)

	for range 3 {
		resp := doPost(t, "/api/checkout/preview", checkoutRequest{
			UserID:        userID,
			PromotionCode: "AURA10",
		})

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		totals := decodeJSON[totalsResponse](t, resp)
		resp.Body.Close()

		if totals.TotalAmount != "2950000" {
			t.Errorf("total: got %s, want 2950000", totals.TotalAmount)
		}
		if totals.DiscountAmount != "295000" {
			t.Errorf("discount: got %s, want 295000", totals.DiscountAmount)
		}
	}

	// The cart must still be there after any number of previews.
	resp := doPost(t, "/api/checkout", checkoutRequest{
		UserID:          userID,
		ShippingAddress: "12 Nguyen Hue, District 1",
		Phone:           "+84900000006",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout after previews: expected 201, got %d", resp.StatusCode)
	}
}

// TestCheckout_UsageLimitRace fires concurrent checkouts against a promotion
// with a single remaining use. Exactly one must win; the used count must
// never exceed the limit.
func TestCheckout_UsageLimitRace(t *testing.T) {
	const workers = 8

	code := "RACE" + strings.ToUpper(uuid.NewString()[:6])
	createPromotion(t, code, map[string]any{
		"code":           code,
		"discount_type":  "fixed_amount",
		"discount_value": "100000",
		"usage_limit":    1,
		"start_date":     time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		"end_date":       time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})

	users := make([]string, workers)
	for i := range users {
		users[i] = newUserWithCart(t,
			cartLine{variantID: "var-bloom-50", quantity: 1, unitPrice: 1_250_000},
		)
	}

	statuses := make([]int, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := doPost(t, "/api/checkout", checkoutRequest{
				UserID:          users[i],
				ShippingAddress: "12 Nguyen Hue, District 1",
				Phone:           "+84900000007",
				PromotionCode:   code,
			})
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	var created int
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusUnprocessableEntity, http.StatusConflict:
			// Losers see USAGE_LIMIT_REACHED or a serialization conflict.
		default:
			t.Errorf("unexpected status %d", s)
		}
	}
	if created != 1 {
		t.Errorf("exactly one checkout should win the last use, got %d", created)
	}

	var usedCount, usageLimit int
	err := db.QueryRow(context.Background(),
		`SELECT used_count, usage_limit FROM promotions WHERE code = $1`, code).
		Scan(&usedCount, &usageLimit)
	if err != nil {
		t.Fatalf("read promotion: %v", err)
	}
	if usedCount > usageLimit {
		t.Errorf("used_count %d exceeds usage_limit %d", usedCount, usageLimit)
	}
}
