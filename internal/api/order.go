package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/lewkins/storefront/internal/domain/auth"
	"github.com/lewkins/storefront/internal/domain/cart"
	"github.com/lewkins/storefront/internal/domain/order"
	"github.com/lewkins/storefront/internal/domain/pricing"
)

type checkoutRequest struct {
	Shipping      order.ShippingInfo `json:"shipping"`
	PaymentMethod string             `json:"paymentMethod"`
	CustomerNotes string             `json:"customerNotes"`
}

type orderResponse struct {
	ID                string             `json:"id"`
	OrderID           string             `json:"orderId"`
	Items             []cart.LineItem    `json:"items"`
	Pricing           pricing.Breakdown  `json:"pricing"`
	Status            string             `json:"status"`
	PaymentMethod     string             `json:"paymentMethod"`
	PaymentStatus     string             `json:"paymentStatus"`
	Shipping          order.ShippingInfo `json:"shipping"`
	CustomerNotes     string             `json:"customerNotes,omitempty"`
	EstimatedDelivery time.Time          `json:"estimatedDelivery"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:                o.ID,
		OrderID:           o.OrderID,
		Items:             o.Items,
		Pricing:           o.Pricing,
		Status:            string(o.Status),
		PaymentMethod:     o.PaymentMethod,
		PaymentStatus:     o.PaymentStatus,
		Shipping:          o.Shipping,
		CustomerNotes:     o.CustomerNotes,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
	}
}

// Checkout freezes the current cart into an order. The cart is cleared only
// after the order persists, so a failed checkout leaves it intact.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg, ok := validateShipping(req.Shipping); !ok {
		respondError(w, r, http.StatusUnprocessableEntity, msg)
		return
	}

	client := h.clientFor(r)
	o, err := h.checkout.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		UserID:        CurrentUser(r.Context()).ID,
		Items:         client.CartSnapshot(),
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		CustomerNotes: req.CustomerNotes,
	})
	if err != nil {
		var notFound *order.ProductNotFoundError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			respondError(w, r, http.StatusUnprocessableEntity, "cart is empty")
		case errors.As(err, &notFound):
			respondError(w, r, http.StatusUnprocessableEntity, notFound.Error())
		default:
			respondInternal(w, r, err)
		}
		return
	}

	client.ClearCart(r.Context())
	respondJSON(w, r, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respondJSON(w, r, http.StatusOK, out)
}

// GetOrder returns one order. Buyers may only read their own; admins may read
// any.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "order not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	user := CurrentUser(r.Context())
	if o.UserID != user.ID && user.Role != auth.RoleAdmin {
		respondError(w, r, http.StatusForbidden, "not your order")
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderResponse(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order through fulfilment. Admin only; returns the
// updated order.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status := order.Status(req.Status)
	if !status.Valid() {
		respondError(w, r, http.StatusUnprocessableEntity, "invalid status: "+req.Status)
		return
	}
	id := r.PathValue("id")
	if err := h.orders.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "order not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func validateShipping(s order.ShippingInfo) (string, bool) {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"province", s.Province},
		{"zipCode", s.ZipCode},
	}
	for _, f := range fields {
		if f.value == "" {
			return "shipping " + f.name + " is required", false
		}
	}
	return "", true
}
