// Package store owns the in-memory cart and wishlist state for each client
// and mirrors every mutation to durable storage. All mutation goes through a
// Client's methods; no other component touches the collections directly.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/lewkins/storefront/internal/domain/cart"
	"github.com/lewkins/storefront/internal/domain/wishlist"
)

// Durable storage keys. Session credentials live in the sessions table and
// are revoked in the same logout sweep.
const (
	KeyCart     = "cartItems"
	KeyWishlist = "wishlistItems"
)

// ErrStateAbsent is returned by Load when no state is stored under the key.
var ErrStateAbsent = errors.New("state not found")

// StateRepository mirrors serialized collection state to durable storage.
// Payloads are JSON arrays of plain records.
type StateRepository interface {
	Save(ctx context.Context, ownerID, key string, payload []byte) error
	Load(ctx context.Context, ownerID, key string) ([]byte, error)
	Delete(ctx context.Context, ownerID string, keys ...string) error
}

// Client holds one user's cart ledger and wishlist set. Mutations are
// serialized by a mutex and mirrored to the StateRepository after each
// change. Persistence failures are logged and swallowed: the in-memory state
// stays authoritative for the session.
type Client struct {
	ownerID string
	states  StateRepository
	lg      *zap.Logger

	mu       sync.Mutex
	cart     *cart.Ledger
	wishlist *wishlist.Set
}

// AddItem merge-adds a line item to the cart.
func (c *Client) AddItem(ctx context.Context, item cart.LineItem) []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Add(item)
	c.persistCart(ctx)
	return c.cart.Snapshot()
}

// RemoveItem removes the entry with the given identity key, if present.
func (c *Client) RemoveItem(ctx context.Context, key cart.Key) []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Remove(key)
	c.persistCart(ctx)
	return c.cart.Snapshot()
}

// SetQuantity overwrites an entry's quantity; below 1 removes the entry.
func (c *Client) SetQuantity(ctx context.Context, key cart.Key, quantity int) []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.SetQuantity(key, quantity)
	c.persistCart(ctx)
	return c.cart.Snapshot()
}

// UpdateVariant edits one variant attribute of an entry, folding the entry
// into an existing one when the new identity key collides.
func (c *Client) UpdateVariant(ctx context.Context, key cart.Key, field cart.VariantField, value cart.OptString) []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.UpdateVariant(key, field, value)
	c.persistCart(ctx)
	return c.cart.Snapshot()
}

// ReplaceCart overwrites the whole cart with the given sequence.
func (c *Client) ReplaceCart(ctx context.Context, items []cart.LineItem) []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.ReplaceAll(items)
	c.persistCart(ctx)
	return c.cart.Snapshot()
}

// ClearCart empties the cart and deletes its durable mirror. Called on
// successful checkout.
func (c *Client) ClearCart(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Clear()
	if err := c.states.Delete(ctx, c.ownerID, KeyCart); err != nil {
		c.lg.Warn("Delete cart state failed", zap.String("owner", c.ownerID), zap.Error(err))
	}
}

// CartSnapshot returns a copy of the cart contents.
func (c *Client) CartSnapshot() []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Snapshot()
}

// AddWish inserts a product reference unless already present.
func (c *Client) AddWish(ctx context.Context, item wishlist.Item) []wishlist.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wishlist.Add(item)
	c.persistWishlist(ctx)
	return c.wishlist.Snapshot()
}

// RemoveWish deletes a product reference, if present.
func (c *Client) RemoveWish(ctx context.Context, productID string) []wishlist.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wishlist.Remove(productID)
	c.persistWishlist(ctx)
	return c.wishlist.Snapshot()
}

// WishlistSnapshot returns a copy of the wishlist contents.
func (c *Client) WishlistSnapshot() []wishlist.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wishlist.Snapshot()
}

// ClearAll empties both collections and deletes their durable mirrors in one
// sweep. Deletes run sequentially; a failure on one key must not block the
// others, so the repository is handed both keys at once and logs per key.
// Called on logout, alongside session revocation.
func (c *Client) ClearAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Clear()
	c.wishlist.Clear()
	if err := c.states.Delete(ctx, c.ownerID, KeyCart, KeyWishlist); err != nil {
		c.lg.Warn("Delete client state failed", zap.String("owner", c.ownerID), zap.Error(err))
	}
}

// persistCart mirrors the cart to durable storage. Callers hold c.mu.
func (c *Client) persistCart(ctx context.Context) {
	c.persist(ctx, KeyCart, c.cart.Snapshot())
}

// persistWishlist mirrors the wishlist to durable storage. Callers hold c.mu.
func (c *Client) persistWishlist(ctx context.Context) {
	c.persist(ctx, KeyWishlist, c.wishlist.Snapshot())
}

func (c *Client) persist(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.lg.Warn("Marshal state failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.states.Save(ctx, c.ownerID, key, payload); err != nil {
		c.lg.Warn("Save state failed",
			zap.String("owner", c.ownerID),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Manager hands out per-user Clients, rehydrating them from durable storage
// on first access and caching them for the life of the process.
type Manager struct {
	states StateRepository
	lg     *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewManager creates a Manager backed by the given state repository.
func NewManager(states StateRepository, lg *zap.Logger) *Manager {
	return &Manager{
		states:  states,
		lg:      lg,
		clients: make(map[string]*Client),
	}
}

// Client returns the store for the given owner, loading persisted state on
// first access. Absent or malformed state yields empty collections.
func (m *Manager) Client(ctx context.Context, ownerID string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[ownerID]; ok {
		return c
	}

	c := &Client{
		ownerID:  ownerID,
		states:   m.states,
		lg:       m.lg,
		cart:     cart.FromItems(m.loadCart(ctx, ownerID)),
		wishlist: wishlist.FromItems(m.loadWishlist(ctx, ownerID)),
	}
	m.clients[ownerID] = c
	return c
}

// Evict drops the cached client for an owner. Called after logout so the next
// login starts from durable state.
func (m *Manager) Evict(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, ownerID)
}

func (m *Manager) loadCart(ctx context.Context, ownerID string) []cart.LineItem {
	payload, ok := m.loadPayload(ctx, ownerID, KeyCart)
	if !ok {
		return nil
	}
	var items []cart.LineItem
	if err := json.Unmarshal(payload, &items); err != nil {
		m.warnMalformed(ownerID, KeyCart, err)
		return nil
	}
	return items
}

func (m *Manager) loadWishlist(ctx context.Context, ownerID string) []wishlist.Item {
	payload, ok := m.loadPayload(ctx, ownerID, KeyWishlist)
	if !ok {
		return nil
	}
	var items []wishlist.Item
	if err := json.Unmarshal(payload, &items); err != nil {
		m.warnMalformed(ownerID, KeyWishlist, err)
		return nil
	}
	return items
}

// loadPayload reads one state key. Absence is normal and reported as !ok;
// read failures are logged and likewise yield an empty collection.
func (m *Manager) loadPayload(ctx context.Context, ownerID, key string) ([]byte, bool) {
	payload, err := m.states.Load(ctx, ownerID, key)
	if err != nil {
		if !errors.Is(err, ErrStateAbsent) {
			m.lg.Warn("Load state failed",
				zap.String("owner", ownerID),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, false
	}
	return payload, true
}

func (m *Manager) warnMalformed(ownerID, key string, err error) {
	m.lg.Warn("Discarding malformed state",
		zap.String("owner", ownerID),
		zap.String("key", key),
		zap.Error(err),
	)
}
