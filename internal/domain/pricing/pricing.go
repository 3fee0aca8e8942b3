// Package pricing derives the checkout price breakdown from cart contents
// and a static fee schedule. All functions are pure.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/lewkins/storefront/internal/domain/cart"
)

// FeeConfig is the static fee schedule applied at checkout.
type FeeConfig struct {
	// ShippingFlat is the flat shipping fee, charged on every order
	// including one computed over an empty cart.
	ShippingFlat decimal.Decimal
	// TaxRate is the tax fraction applied to the subtotal (0.11 for 11% PPN).
	TaxRate decimal.Decimal
	// Precision is the number of decimal places of the smallest currency
	// unit. IDR uses 0.
	Precision int32
}

// Breakdown is the derived price summary shown before payment. It is never
// stored; recompute it from the ledger on every read.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute derives the breakdown for the given line items.
// Subtotal is the sum of unit price times quantity. Tax is the subtotal times
// the tax rate, rounded half-up at the smallest currency unit. Total is
// subtotal plus shipping plus tax.
func Compute(items []cart.LineItem, cfg FeeConfig) Breakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(cfg.Precision)

	// decimal.Round is half-away-from-zero, which is half-up for the
	// non-negative amounts produced here.
	tax := subtotal.Mul(cfg.TaxRate).Round(cfg.Precision)

	return Breakdown{
		Subtotal: subtotal,
		Shipping: cfg.ShippingFlat,
		Tax:      tax,
		Total:    subtotal.Add(cfg.ShippingFlat).Add(tax),
	}
}
