//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"strings"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 8 {
		t.Fatalf("expected 8 products, got %d", len(products))
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/does-not-exist")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestSearchProducts(t *testing.T) {
	resp := doGet(t, "/api/products/search?q=linen")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 {
		t.Fatal("expected at least one match for 'linen'")
	}
	for _, p := range products {
		text := strings.ToLower(p.Name)
		if !strings.Contains(text, "linen") {
			t.Errorf("product %q does not match query", p.Name)
		}
	}
}

func TestCartRequiresAuth(t *testing.T) {
	resp := doGet(t, "/api/cart")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCartFlow(t *testing.T) {
	user := registerUser(t, "cart-flow@integration.test")

	// Add one shirt in size M.
	resp := doRequest(t, http.MethodPost, "/api/cart/items", user.Token, map[string]any{
		"productId": "lwk-shirt-linen",
		"quantity":  1,
		"size":      "M",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart after add: %+v", cart.Items)
	}

	// Adding the same variant again merges.
	resp = doRequest(t, http.MethodPost, "/api/cart/items", user.Token, map[string]any{
		"productId": "lwk-shirt-linen",
		"quantity":  2,
		"size":      "M",
	})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected one merged entry with quantity 3, got %+v", cart.Items)
	}

	// A different size is a separate entry.
	resp = doRequest(t, http.MethodPost, "/api/cart/items", user.Token, map[string]any{
		"productId": "lwk-shirt-linen",
		"quantity":  1,
		"size":      "L",
	})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 2 {
		t.Fatalf("expected two entries, got %d", len(cart.Items))
	}

	// Pricing: 4 x 55000 = 220000 subtotal, 15000 shipping, 11% tax.
	if cart.Breakdown.Subtotal != "220000" {
		t.Errorf("subtotal: got %s, want 220000", cart.Breakdown.Subtotal)
	}
	if cart.Breakdown.Shipping != "15000" {
		t.Errorf("shipping: got %s, want 15000", cart.Breakdown.Shipping)
	}
	if cart.Breakdown.Tax != "24200" {
		t.Errorf("tax: got %s, want 24200", cart.Breakdown.Tax)
	}
	if cart.Breakdown.Total != "259200" {
		t.Errorf("total: got %s, want 259200", cart.Breakdown.Total)
	}

	// Setting quantity to zero removes the entry.
	resp = doRequest(t, http.MethodPatch, "/api/cart/items", user.Token, map[string]any{
		"productId": "lwk-shirt-linen",
		"quantity":  0,
		"size":      "L",
	})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 {
		t.Fatalf("expected one entry after removal, got %d", len(cart.Items))
	}
}

func TestCartSurvivesRelogin(t *testing.T) {
	user := registerUser(t, "cart-persist@integration.test")

	resp := doRequest(t, http.MethodPost, "/api/cart/items", user.Token, map[string]any{
		"productId": "lwk-tote-canvas",
		"quantity":  2,
	})
	resp.Body.Close()

	// Login again and fetch the cart using the new token.
	resp = doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "cart-persist@integration.test",
		"password": "integration-pw-1",
	})
	login := decodeJSON[authResponse](t, resp)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/cart", login.Token, nil)
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("cart did not survive relogin: %+v", cart.Items)
	}
}

func TestWishlistFlow(t *testing.T) {
	user := registerUser(t, "wishlist@integration.test")

	resp := doRequest(t, http.MethodPost, "/api/wishlist/items", user.Token, map[string]string{
		"productId": "lwk-cap-corduroy",
	})
	wl := decodeJSON[wishlistResponse](t, resp)
	resp.Body.Close()

	if len(wl.Items) != 1 {
		t.Fatalf("expected one wishlist item, got %d", len(wl.Items))
	}

	resp = doRequest(t, http.MethodDelete, "/api/wishlist/items/lwk-cap-corduroy", user.Token, nil)
	wl = decodeJSON[wishlistResponse](t, resp)
	resp.Body.Close()

	if len(wl.Items) != 0 {
		t.Fatalf("expected empty wishlist, got %d items", len(wl.Items))
	}
}

func TestCheckoutFlow(t *testing.T) {
	user := registerUser(t, "checkout@integration.test")

	resp := doRequest(t, http.MethodPost, "/api/cart/items", user.Token, map[string]any{
		"productId": "lwk-sneakers-canvas",
		"quantity":  1,
		"size":      "42",
	})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, "/api/checkout", user.Token, map[string]any{
		"shipping": map[string]string{
			"firstName": "Budi",
			"lastName":  "Santoso",
			"email":     "checkout@integration.test",
			"phone":     "+62811111111",
			"address":   "Jl. Sudirman 1",
			"city":      "Jakarta",
			"province":  "DKI Jakarta",
			"zipCode":   "10110",
		},
		"paymentMethod": "bank_transfer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if ok, _ := regexp.MatchString(`^LWK\d{14}[0-9A-F]{6}$`, order.OrderID); !ok {
		t.Errorf("order ID: got %q, want LWK + timestamp + suffix", order.OrderID)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %q, want pending", order.Status)
	}
	// 128000 subtotal + 15000 shipping + 14080 tax.
	if order.Pricing.Total != "157080" {
		t.Errorf("total: got %s, want 157080", order.Pricing.Total)
	}

	// Checkout clears the cart.
	resp = doRequest(t, http.MethodGet, "/api/cart", user.Token, nil)
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(cart.Items))
	}

	// The order shows up in history.
	resp = doRequest(t, http.MethodGet, "/api/orders", user.Token, nil)
	orders := decodeJSON[[]orderResponse](t, resp)
	resp.Body.Close()

	if len(orders) != 1 || orders[0].OrderID != order.OrderID {
		t.Fatalf("unexpected order history: %+v", orders)
	}

	// And can be fetched individually by its internal ID.
	resp = doRequest(t, http.MethodGet, "/api/orders/"+order.ID, user.Token, nil)
	single := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if single.OrderID != order.OrderID {
		t.Fatalf("order by id: got %q, want %q", single.OrderID, order.OrderID)
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	user := registerUser(t, "empty-checkout@integration.test")

	resp := doRequest(t, http.MethodPost, "/api/checkout", user.Token, map[string]any{
		"shipping": map[string]string{
			"firstName": "Budi",
			"lastName":  "Santoso",
			"email":     "empty-checkout@integration.test",
			"phone":     "+62811111111",
			"address":   "Jl. Sudirman 1",
			"city":      "Jakarta",
			"province":  "DKI Jakarta",
			"zipCode":   "10110",
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	user := registerUser(t, "logout@integration.test")

	resp := doRequest(t, http.MethodPost, "/api/auth/logout", user.Token, nil)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/auth/me", user.Token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestAdminGate(t *testing.T) {
	user := registerUser(t, "not-admin@integration.test")

	resp := doRequest(t, http.MethodPost, "/api/products", user.Token, map[string]any{
		"name":     "Fake Product",
		"category": "shirts",
		"price":    "1000",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
