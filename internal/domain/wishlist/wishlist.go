// Package wishlist implements the wishlist set: product references keyed by
// product ID only, with no variant distinction.
package wishlist

import "github.com/shopspring/decimal"

// Item is a saved product reference.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
}

// Set is an ordered collection of wishlist items with no duplicate product
// IDs. Adding an already-present product is a no-op, as is removing a missing
// one. Not safe for concurrent use; the owning store serializes access.
type Set struct {
	items []Item
}

// New returns an empty set.
func New() *Set {
	return &Set{}
}

// FromItems builds a set from a sequence, dropping later duplicates.
func FromItems(items []Item) *Set {
	s := &Set{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts the item unless its product ID is already present.
func (s *Set) Add(item Item) {
	if s.Contains(item.ProductID) {
		return
	}
	s.items = append(s.items, item)
}

// Remove deletes the item with the given product ID, if present.
func (s *Set) Remove(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Contains reports whether the product ID is present.
func (s *Set) Contains(productID string) bool {
	for _, item := range s.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Clear empties the set.
func (s *Set) Clear() {
	s.items = nil
}

// Len returns the number of items.
func (s *Set) Len() int {
	return len(s.items)
}

// Snapshot returns a copy of the set contents in insertion order.
func (s *Set) Snapshot() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}
