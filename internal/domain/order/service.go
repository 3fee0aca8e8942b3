package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lewkins/storefront/internal/domain/cart"
	"github.com/lewkins/storefront/internal/domain/pricing"
	"github.com/lewkins/storefront/internal/domain/product"
)

// ErrEmptyCart is returned when checkout is attempted over an empty ledger.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// ProductNotFoundError indicates a cart line references a product that no
// longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// PlaceOrderRequest holds the input for placing an order. Items is the cart
// ledger snapshot at the moment of checkout; ledger prices are authoritative.
type PlaceOrderRequest struct {
	UserID        string
	Items         []cart.LineItem
	Shipping      ShippingInfo
	PaymentMethod string
	CustomerNotes string
}

// Service encapsulates checkout business logic: it freezes the cart snapshot
// into an order with a computed price breakdown. Clearing the cart afterwards
// is the caller's responsibility, so a persistence failure leaves the cart
// intact.
type Service struct {
	products product.Repository
	orders   Repository
	fees     pricing.FeeConfig
	now      func() time.Time
}

// NewService creates a checkout Service with the required dependencies.
func NewService(products product.Repository, orders Repository, fees pricing.FeeConfig) *Service {
	return &Service{
		products: products,
		orders:   orders,
		fees:     fees,
		now:      time.Now,
	}
}

// PlaceOrder verifies every cart line still references an existing product,
// derives the price breakdown, and persists the order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Collect unique product IDs; variants of one product share a row.
	ids := make([]string, 0, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	exists := make(map[string]bool, len(fetched))
	for _, p := range fetched {
		exists[p.ID] = true
	}
	for _, item := range req.Items {
		if !exists[item.ProductID] {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
	}

	now := s.now()
	o := &Order{
		ID:                uuid.New().String(),
		OrderID:           generateOrderID(now),
		UserID:            req.UserID,
		Items:             req.Items,
		Pricing:           pricing.Compute(req.Items, s.fees),
		Status:            StatusPending,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     "pending",
		Shipping:          req.Shipping,
		CustomerNotes:     req.CustomerNotes,
		EstimatedDelivery: now.AddDate(0, 0, 7),
		CreatedAt:         now,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// generateOrderID builds the customer-facing order number: LWK, the checkout
// timestamp, and a random suffix. The suffix keeps order numbers unique when
// two checkouts land in the same second.
func generateOrderID(now time.Time) string {
	return "LWK" + now.Format("20060102150405") + strings.ToUpper(uuid.NewString()[:6])
}
