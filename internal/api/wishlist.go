package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/lewkins/storefront/internal/domain/product"
	"github.com/lewkins/storefront/internal/domain/wishlist"
)

type addWishRequest struct {
	ProductID string `json:"productId"`
}

type wishlistResponse struct {
	Items []wishlist.Item `json:"items"`
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, wishlistResponse{Items: h.clientFor(r).WishlistSnapshot()})
}

// AddWishlistItem saves a product reference. Duplicates are no-ops.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req addWishRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "productId is required")
		return
	}
	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	item := wishlist.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     h.imageURL(p.Image),
		Category:  p.Category,
	}
	respondJSON(w, r, http.StatusOK, wishlistResponse{Items: h.clientFor(r).AddWish(r.Context(), item)})
}

func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	items := h.clientFor(r).RemoveWish(r.Context(), r.PathValue("id"))
	respondJSON(w, r, http.StatusOK, wishlistResponse{Items: items})
}
