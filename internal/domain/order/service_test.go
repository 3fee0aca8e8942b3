package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewkins/storefront/internal/domain/cart"
	"github.com/lewkins/storefront/internal/domain/pricing"
	"github.com/lewkins/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }
func (m *mockProductRepo) GetByCategory(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) Search(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ string) (*Order, error) {
	return m.lastOrder, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, status Status) error {
	if m.lastOrder == nil {
		return ErrNotFound
	}
	m.lastOrder.Status = status
	return nil
}

// --- Helpers ---

func newProductRepo(ids ...string) *mockProductRepo {
	byID := make(map[string]*product.Product, len(ids))
	for _, id := range ids {
		byID[id] = &product.Product{
			ID:       id,
			Name:     "Item " + id,
			Price:    decimal.NewFromInt(55000),
			Category: "tops",
		}
	}
	return &mockProductRepo{byID: byID}
}

func idrFees() pricing.FeeConfig {
	return pricing.FeeConfig{
		ShippingFlat: decimal.NewFromInt(15000),
		TaxRate:      decimal.RequireFromString("0.11"),
	}
}

func cartItem(id string, price int64, qty int, size string) cart.LineItem {
	item := cart.LineItem{
		ProductID: id,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
	}
	if size != "" {
		item.Size = cart.NewOptString(size)
	}
	return item
}

func shipping() ShippingInfo {
	return ShippingInfo{
		FirstName: "Budi",
		LastName:  "Santoso",
		Email:     "budi@example.com",
		Phone:     "08123456789",
		Address:   "Jl. Sudirman 1",
		City:      "Jakarta",
		Province:  "DKI Jakarta",
		ZipCode:   "10110",
	}
}

// --- Tests ---

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := NewService(newProductRepo(), &mockOrderRepo{}, idrFees())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{UserID: "u1"})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_ProductNoLongerExists(t *testing.T) {
	svc := NewService(newProductRepo("p1"), &mockOrderRepo{}, idrFees())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: "u1",
		Items:  []cart.LineItem{cartItem("ghost", 100, 1, "")},
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "ghost", pnfErr.ProductID)
}

func TestPlaceOrder_ComputesBreakdown(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(newProductRepo("p1", "p2"), repo, idrFees())

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: "u1",
		Items: []cart.LineItem{
			cartItem("p1", 55000, 1, "M"),
			cartItem("p2", 128000, 2, ""),
		},
		Shipping:      shipping(),
		PaymentMethod: "credit-card",
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(311000).Equal(o.Pricing.Subtotal))
	assert.True(t, decimal.NewFromInt(34210).Equal(o.Pricing.Tax))
	assert.True(t, decimal.NewFromInt(360210).Equal(o.Pricing.Total))
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "pending", o.PaymentStatus)
	assert.Same(t, repo.lastOrder, o)
}

func TestPlaceOrder_VariantsOfOneProduct(t *testing.T) {
	// Two cart lines for the same product in different sizes need only one
	// catalog row to exist.
	svc := NewService(newProductRepo("p1"), &mockOrderRepo{}, idrFees())

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: "u1",
		Items: []cart.LineItem{
			cartItem("p1", 55000, 1, "M"),
			cartItem("p1", 55000, 1, "L"),
		},
	})
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
}

func TestPlaceOrder_OrderIDFormat(t *testing.T) {
	svc := NewService(newProductRepo("p1"), &mockOrderRepo{}, idrFees())
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: "u1",
		Items:  []cart.LineItem{cartItem("p1", 100, 1, "")},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^LWK20250314150926[0-9A-F]{6}$`, o.OrderID)
	assert.Equal(t, time.Date(2025, 3, 21, 15, 9, 26, 0, time.UTC), o.EstimatedDelivery)
	assert.NotEmpty(t, o.ID)
}

func TestPlaceOrder_OrderIDsUniqueWithinSecond(t *testing.T) {
	svc := NewService(newProductRepo("p1"), &mockOrderRepo{}, idrFees())
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	req := PlaceOrderRequest{
		UserID: "u1",
		Items:  []cart.LineItem{cartItem("p1", 100, 1, "")},
	}
	first, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderID, second.OrderID)
}

func TestPlaceOrder_RepoErrors(t *testing.T) {
	t.Run("product fetch fails", func(t *testing.T) {
		svc := NewService(&mockProductRepo{getErr: errors.New("db down")}, &mockOrderRepo{}, idrFees())

		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			UserID: "u1",
			Items:  []cart.LineItem{cartItem("p1", 100, 1, "")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get products")
	})

	t.Run("order create fails", func(t *testing.T) {
		svc := NewService(newProductRepo("p1"), &mockOrderRepo{err: errors.New("db write failed")}, idrFees())

		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			UserID: "u1",
			Items:  []cart.LineItem{cartItem("p1", 100, 1, "")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create order")
	})
}
