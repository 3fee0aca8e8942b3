package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/lewkins/storefront/internal/domain/cart"
	"github.com/lewkins/storefront/internal/domain/pricing"
	"github.com/lewkins/storefront/internal/domain/product"
)

// cartEntryRequest identifies a product plus variant selection. Size and color
// distinguish absent from empty: an omitted or null attribute is absent and
// never matches an entry whose attribute is the empty string.
type cartEntryRequest struct {
	ProductID string         `json:"productId"`
	Quantity  int            `json:"quantity"`
	Size      cart.OptString `json:"size"`
	Color     cart.OptString `json:"color"`
}

func (req cartEntryRequest) key() cart.Key {
	return cart.Key{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
}

type replaceCartRequest struct {
	Items []cartEntryRequest `json:"items"`
}

type updateVariantRequest struct {
	ProductID string         `json:"productId"`
	Size      cart.OptString `json:"size"`
	Color     cart.OptString `json:"color"`
	Field     string         `json:"field"`
	Value     cart.OptString `json:"value"`
}

type cartResponse struct {
	Items     []cart.LineItem   `json:"items"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// respondCart prices the given items and writes the combined response. Every
// cart read and mutation returns this shape so clients never recompute totals.
func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, items []cart.LineItem) {
	respondJSON(w, r, http.StatusOK, cartResponse{
		Items:     items,
		Breakdown: pricing.Compute(items, h.fees),
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, h.clientFor(r).CartSnapshot())
}

// AddCartItem merge-adds an entry. The catalog is authoritative for name and
// price; the client supplies only the product, variant, and quantity.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "productId is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, r, http.StatusUnprocessableEntity, "quantity must be at least 1")
		return
	}
	item, err := h.resolveLineItem(r, req)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	h.respondCart(w, r, h.clientFor(r).AddItem(r.Context(), item))
}

func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "productId is required")
		return
	}
	h.respondCart(w, r, h.clientFor(r).SetQuantity(r.Context(), req.key(), req.Quantity))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "productId is required")
		return
	}
	h.respondCart(w, r, h.clientFor(r).RemoveItem(r.Context(), req.key()))
}

func (h *Handler) UpdateCartVariant(w http.ResponseWriter, r *http.Request) {
	var req updateVariantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "productId is required")
		return
	}
	var field cart.VariantField
	switch req.Field {
	case "size":
		field = cart.VariantSize
	case "color":
		field = cart.VariantColor
	default:
		respondError(w, r, http.StatusUnprocessableEntity, "field must be size or color")
		return
	}
	key := cart.Key{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	h.respondCart(w, r, h.clientFor(r).UpdateVariant(r.Context(), key, field, req.Value))
}

// ReplaceCart overwrites the whole cart, used by clients syncing local state
// after login. Entries are re-resolved against the catalog; unknown products
// reject the whole request.
func (h *Handler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	var req replaceCartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	items := make([]cart.LineItem, 0, len(req.Items))
	for _, entry := range req.Items {
		if entry.ProductID == "" || entry.Quantity < 1 {
			respondError(w, r, http.StatusUnprocessableEntity, "each item needs a productId and a quantity of at least 1")
			return
		}
		item, err := h.resolveLineItem(r, entry)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				respondError(w, r, http.StatusUnprocessableEntity, "unknown product: "+entry.ProductID)
				return
			}
			respondInternal(w, r, err)
			return
		}
		items = append(items, item)
	}
	h.respondCart(w, r, h.clientFor(r).ReplaceCart(r.Context(), items))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	client := h.clientFor(r)
	client.ClearCart(r.Context())
	h.respondCart(w, r, client.CartSnapshot())
}

// resolveLineItem builds a cart entry from the catalog record, keeping the
// client-chosen variant and quantity.
func (h *Handler) resolveLineItem(r *http.Request, req cartEntryRequest) (cart.LineItem, error) {
	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		return cart.LineItem{}, err
	}
	return cart.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
		Image:     h.imageURL(p.Image),
		Category:  p.Category,
	}, nil
}
