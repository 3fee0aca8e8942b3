// Package cart implements the cart ledger: the authoritative collection of
// line items a customer intends to purchase, keyed by product and variant.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OptString is an optional string value. The zero value is "absent", which is
// distinct from a set-but-empty string. Variant attributes use it so that a
// product without sizes never collides with one whose size is "".
type OptString struct {
	Value string
	Set   bool
}

// NewOptString returns a set OptString holding v.
func NewOptString(v string) OptString {
	return OptString{Value: v, Set: true}
}

// Get returns the value and whether it is set.
func (o OptString) Get() (string, bool) {
	return o.Value, o.Set
}

// Or returns the value when set, otherwise the fallback.
func (o OptString) Or(fallback string) string {
	if o.Set {
		return o.Value
	}
	return fallback
}

// IsZero reports whether the value is absent. It makes OptString work with
// encoding/json's omitzero option.
func (o OptString) IsZero() bool {
	return !o.Set
}

// MarshalJSON encodes a set value as a JSON string and an absent one as null.
func (o OptString) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent and any string as set.
func (o *OptString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OptString{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = OptString{Value: s, Set: true}
	return nil
}

// Key is the identity of a cart entry. Two line items merge only when all
// three components match exactly, including the set/absent state of the
// variant attributes.
type Key struct {
	ProductID string
	Size      OptString
	Color     OptString
}

// String renders the key in the productID-size-color display form, using
// "no-size" and "no-color" tokens for absent attributes.
func (k Key) String() string {
	return fmt.Sprintf("%s-%s-%s", k.ProductID, k.Size.Or("no-size"), k.Color.Or("no-color"))
}

// VariantField selects which variant attribute an edit targets.
type VariantField string

const (
	VariantSize  VariantField = "size"
	VariantColor VariantField = "color"
)

// LineItem is a single cart entry.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Size      OptString       `json:"size,omitzero"`
	Color     OptString       `json:"color,omitzero"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
}

// Key returns the identity key of the line item.
func (li LineItem) Key() Key {
	return Key{ProductID: li.ProductID, Size: li.Size, Color: li.Color}
}

// Ledger is an ordered collection of line items with no two entries sharing
// an identity key. Insertion order is preserved for display stability.
// Methods never fail for well-typed input; operations on missing keys are
// no-ops. Callers are responsible for validating quantities before Add.
//
// Ledger is not safe for concurrent use; the owning store serializes access.
type Ledger struct {
	items []LineItem
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// FromItems builds a ledger from a sequence of line items, folding entries
// that share an identity key into the earliest occurrence.
func FromItems(items []LineItem) *Ledger {
	return &Ledger{items: fold(items)}
}

// Add appends the item, or increments the quantity of the existing entry with
// the same identity key. Repeated adds accumulate quantity; they never reset it.
func (l *Ledger) Add(item LineItem) {
	key := item.Key()
	for i := range l.items {
		if l.items[i].Key() == key {
			l.items[i].Quantity += item.Quantity
			return
		}
	}
	l.items = append(l.items, item)
}

// Remove deletes the entry with the given key. Removing a missing key is a no-op.
func (l *Ledger) Remove(key Key) {
	for i := range l.items {
		if l.items[i].Key() == key {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity of the entry with the given key.
// A quantity below 1 removes the entry instead; a missing key is a no-op.
func (l *Ledger) SetQuantity(key Key, quantity int) {
	if quantity < 1 {
		l.Remove(key)
		return
	}
	for i := range l.items {
		if l.items[i].Key() == key {
			l.items[i].Quantity = quantity
			return
		}
	}
}

// UpdateVariant replaces one variant attribute of the entry with the given
// key. Since the attribute is part of the identity key, the edit re-runs
// merge detection: when the new key collides with another entry, the two fold
// into whichever entry appears earlier, summing quantities.
func (l *Ledger) UpdateVariant(key Key, field VariantField, value OptString) {
	idx := -1
	for i := range l.items {
		if l.items[i].Key() == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	switch field {
	case VariantSize:
		l.items[idx].Size = value
	case VariantColor:
		l.items[idx].Color = value
	default:
		return
	}
	l.items = fold(l.items)
}

// ReplaceAll overwrites the ledger contents with the given sequence, folding
// any entries that share an identity key.
func (l *Ledger) ReplaceAll(items []LineItem) {
	l.items = fold(items)
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.items = nil
}

// Get returns the entry with the given key.
func (l *Ledger) Get(key Key) (LineItem, bool) {
	for _, item := range l.items {
		if item.Key() == key {
			return item, true
		}
	}
	return LineItem{}, false
}

// Len returns the number of distinct entries.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Snapshot returns a copy of the ledger contents in insertion order.
func (l *Ledger) Snapshot() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// fold collapses duplicate identity keys into the earliest occurrence,
// summing quantities and preserving the order of first appearance.
func fold(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[Key]int, len(items))
	for _, item := range items {
		if i, ok := index[item.Key()]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}
