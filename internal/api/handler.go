// Package api exposes the storefront over HTTP: catalog, cart, wishlist,
// authentication, and checkout. Handlers stay thin and delegate to the domain
// packages; all error mapping to status codes happens here.
package api

import (
	"net/http"

	"github.com/lewkins/storefront/internal/domain/auth"
	"github.com/lewkins/storefront/internal/domain/order"
	"github.com/lewkins/storefront/internal/domain/pricing"
	"github.com/lewkins/storefront/internal/domain/product"
	"github.com/lewkins/storefront/internal/store"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
	// Fees is the fee schedule used for every breakdown computation.
	Fees pricing.FeeConfig
}

// Handler implements the HTTP API, delegating business logic to the injected
// domain dependencies.
type Handler struct {
	products     product.Repository
	users        auth.Repository
	sessions     auth.SessionRepository
	tokens       *auth.TokenManager
	stores       *store.Manager
	checkout     *order.Service
	orders       order.Repository
	fees         pricing.FeeConfig
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products product.Repository,
	users auth.Repository,
	sessions auth.SessionRepository,
	tokens *auth.TokenManager,
	stores *store.Manager,
	checkout *order.Service,
	orders order.Repository,
) *Handler {
	return &Handler{
		products:     products,
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		stores:       stores,
		checkout:     checkout,
		orders:       orders,
		fees:         cfg.Fees,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the API route table. Paths are mounted under /api by the
// caller.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Auth.
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("POST /api/auth/logout", h.requireAuth(h.Logout))
	mux.Handle("GET /api/auth/me", h.requireAuth(h.Me))

	// Catalog.
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/search", h.SearchProducts)
	mux.HandleFunc("GET /api/products/category/{category}", h.ProductsByCategory)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.Handle("POST /api/products", h.requireAdmin(h.CreateProduct))
	mux.Handle("PUT /api/products/{id}", h.requireAdmin(h.UpdateProduct))
	mux.Handle("DELETE /api/products/{id}", h.requireAdmin(h.DeleteProduct))

	// Cart.
	mux.Handle("GET /api/cart", h.requireAuth(h.GetCart))
	mux.Handle("DELETE /api/cart", h.requireAuth(h.ClearCart))
	mux.Handle("POST /api/cart/items", h.requireAuth(h.AddCartItem))
	mux.Handle("PATCH /api/cart/items", h.requireAuth(h.SetCartQuantity))
	mux.Handle("DELETE /api/cart/items", h.requireAuth(h.RemoveCartItem))
	mux.Handle("PUT /api/cart/items", h.requireAuth(h.ReplaceCart))
	mux.Handle("PATCH /api/cart/items/variant", h.requireAuth(h.UpdateCartVariant))

	// Wishlist.
	mux.Handle("GET /api/wishlist", h.requireAuth(h.GetWishlist))
	mux.Handle("POST /api/wishlist/items", h.requireAuth(h.AddWishlistItem))
	mux.Handle("DELETE /api/wishlist/items/{id}", h.requireAuth(h.RemoveWishlistItem))

	// Checkout and order history.
	mux.Handle("POST /api/checkout", h.requireAuth(h.Checkout))
	mux.Handle("GET /api/orders", h.requireAuth(h.ListOrders))
	mux.Handle("GET /api/orders/{id}", h.requireAuth(h.GetOrder))
	mux.Handle("PUT /api/orders/{id}/status", h.requireAdmin(h.UpdateOrderStatus))

	return mux
}
