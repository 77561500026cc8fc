// Package pricing is the single place cart and checkout totals are computed.
// Both views consume the same Quote so the shipping threshold, flat fee and
// tax rate can never drift apart.
package pricing

import (
	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/shopspring/decimal"
)

// Options carries the shop's pricing constants. Defaults() matches the
// storefront's observed configuration: free shipping above 100, a flat fee
// of 10 below it, and 8% tax on the subtotal.
type Options struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal // e.g. 0.08 for 8%
}

// Defaults returns the shop's standard pricing options.
func Defaults() Options {
	return Options{
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingFee:       decimal.NewFromInt(10),
		TaxRate:               decimal.NewFromFloat(0.08),
	}
}

// Quote is the full totals breakdown for a cart.
//
// Total (subtotal + shipping) is what the cart page shows; tax is a separate
// explicit step added only at checkout, so TotalWithTax is what an order is
// ultimately placed for. Keeping the two as distinct fields preserves the
// storefront's two-step behavior while computing both from one function.
type Quote struct {
	Subtotal     decimal.Decimal
	ShippingFee  decimal.Decimal
	Total        decimal.Decimal
	Tax          decimal.Decimal
	TotalWithTax decimal.Decimal
	ItemCount    int
}

// Compute derives a Quote from reconciled line items. Unavailable lines
// contribute zero (their sentinel product prices at zero) but still count
// toward ItemCount so the cart badge reflects what the user put in.
func Compute(lines []domain.LineItem, opts Options) Quote {
	subtotal := decimal.Zero
	itemCount := 0

	for _, li := range lines {
		subtotal = subtotal.Add(li.LineTotal())
		itemCount += li.Entry.Quantity
	}

	shipping := opts.FlatShippingFee
	if subtotal.GreaterThan(opts.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(opts.TaxRate).Round(2)
	total := subtotal.Add(shipping)

	return Quote{
		Subtotal:     subtotal,
		ShippingFee:  shipping,
		Total:        total,
		Tax:          tax,
		TotalWithTax: total.Add(tax),
		ItemCount:    itemCount,
	}
}
