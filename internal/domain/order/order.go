package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/lewkins/storefront/internal/domain/cart"
	"github.com/lewkins/storefront/internal/domain/pricing"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status tracks order fulfilment progress.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ShippingInfo is the delivery address collected at checkout.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Province  string `json:"province"`
	ZipCode   string `json:"zipCode"`
}

// Order is a completed checkout with its frozen line items and price breakdown.
type Order struct {
	ID                string
	OrderID           string
	UserID            string
	Items             []cart.LineItem
	Pricing           pricing.Breakdown
	Status            Status
	PaymentMethod     string
	PaymentStatus     string
	Shipping          ShippingInfo
	CustomerNotes     string
	EstimatedDelivery time.Time
	CreatedAt         time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
