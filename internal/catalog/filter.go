// Package catalog derives filtered, sorted product lists from the full
// catalog. Everything here is a pure function over the in-memory product
// slice: the catalog itself is never mutated.
package catalog

import (
	"strings"

	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/shopspring/decimal"
)

// All is the sentinel selection meaning "no restriction" for the brand,
// category and rating filters.
const All = "all"

// Filter holds every user-selectable restriction on the product listing.
// The zero value (plus Sort left empty) passes the whole catalog through
// in its original order.
type Filter struct {
	// Search is matched case-insensitively as a substring of name, brand,
	// description or category. Blank or whitespace-only search is skipped.
	Search string

	// Brand must equal the product brand exactly, unless All.
	Brand string

	// Category must equal the product's display category, unless All.
	// Products without a category are treated as "Uncategorized".
	Category string

	// MinPrice / MaxPrice bound the price range; nil means unbounded.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal

	// MinRating keeps products rated at or above it; nil means All.
	// Products with no rating are treated as rated 0.
	MinRating *float64

	// Sort is one of the Sort* keys; anything else behaves as SortFeatured.
	Sort string
}

// Apply returns the products that pass every predicate, sorted by the
// filter's sort key. All predicates are conjunctive: a product must satisfy
// each active restriction to remain.
func Apply(products []domain.Product, f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	sortProducts(out, f.Sort)
	return out
}

func matches(p domain.Product, f Filter) bool {
	if q := strings.TrimSpace(f.Search); q != "" && !searchMatch(p, q) {
		return false
	}
	if f.Brand != "" && f.Brand != All && p.Brand != f.Brand {
		return false
	}
	if f.Category != "" && f.Category != All && p.DisplayCategory() != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}

func searchMatch(p domain.Product, q string) bool {
	q = strings.ToLower(q)
	for _, field := range []string{p.Name, p.Brand, p.Description, p.DisplayCategory()} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Brands returns the distinct brands present in the catalog, in first-seen
// order, for populating the brand filter control.
func Brands(products []domain.Product) []string {
	return distinct(products, func(p domain.Product) string { return p.Brand })
}

// Categories returns the distinct display categories present in the catalog,
// in first-seen order.
func Categories(products []domain.Product) []string {
	return distinct(products, func(p domain.Product) string { return p.DisplayCategory() })
}

func distinct(products []domain.Product, key func(domain.Product) string) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
