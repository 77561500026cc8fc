package catalog

import (
	"sort"

	"github.com/kaspervae/verdandi/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted by Filter.Sort.
const (
	SortFeatured  = "featured"   // catalog order, no reordering
	SortPriceLow  = "price-low"  // price ascending
	SortPriceHigh = "price-high" // price descending
	SortNameAsc   = "name-asc"   // name ascending, locale-aware
	SortNameDesc  = "name-desc"  // name descending, locale-aware
	SortRating    = "rating"     // rating descending, missing treated as 0
	SortNewest    = "newest"     // creation time descending, missing treated as epoch
)

// collator is shared: collate.New is not cheap and the product listing
// re-sorts on every filter change.
var collator = collate.New(language.English, collate.Loose)

// sortProducts orders products in place by the given key. All sorts are
// stable so equal elements keep their catalog order, and the featured key
// performs no reordering at all.
func sortProducts(products []domain.Product, key string) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return collator.CompareString(products[i].Name, products[j].Name) < 0
		})
	case SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return collator.CompareString(products[i].Name, products[j].Name) > 0
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default:
		// SortFeatured and unknown keys: preserve catalog order.
	}
}
