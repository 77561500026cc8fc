package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT DOMAIN ERRORS
// =============================================================================

var ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

// DefaultCategory is substituted for products the gateway delivers without a
// category, so category filtering always has something to match against.
const DefaultCategory = "Uncategorized"

// UnavailableProductName marks the sentinel substituted for cart entries whose
// product can no longer be resolved against the catalog.
const UnavailableProductName = "Product unavailable"

// PlaceholderImage is served for products with no images and for the
// unavailable-product sentinel.
const PlaceholderImage = "/static/img/placeholder.png"

// Product is a catalog record as delivered by the remote data gateway.
// Products are immutable on this side: they are fetched in bulk at catalog
// load and never mutated.
type Product struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Brand           string            `json:"brand"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	Price           decimal.Decimal   `json:"price"`
	DiscountPercent decimal.Decimal   `json:"discountPercent"`
	Images          []string          `json:"images"`
	Rating          float64           `json:"rating"`
	Specs           map[string]string `json:"specs"`
	Available       bool              `json:"available"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// DisplayCategory returns the product category, defaulting to
// DefaultCategory when the gateway supplied none.
func (p Product) DisplayCategory() string {
	if strings.TrimSpace(p.Category) == "" {
		return DefaultCategory
	}
	return p.Category
}

// FirstImage returns the primary product image, or the placeholder when the
// product carries no images.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return p.Images[0]
}

// EffectivePrice returns the price after applying the discount percent,
// rounded to two decimal places.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPercent.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(100).Sub(p.DiscountPercent).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

// UnavailableProduct builds the sentinel substituted when a cart entry
// references a product missing from the catalog. This is deliberate
// degrade-gracefully policy, not an error: the cart stays renderable, the
// line prices at zero, and its quantity controls must be disabled.
func UnavailableProduct(productID string) Product {
	return Product{
		ID:        productID,
		Name:      UnavailableProductName,
		Price:     decimal.Zero,
		Images:    []string{PlaceholderImage},
		Available: false,
	}
}
