package service

import "github.com/kaspervae/verdandi/internal/domain"

// Reconcile joins raw cart entries with the catalog. Entries whose product is
// no longer in the catalog get the unavailable sentinel substituted instead
// of being dropped: the cart must keep showing what the user put in it, and
// checkout refuses to proceed while any such line remains.
func Reconcile(entries []domain.CartEntry, catalog []domain.Product) []domain.LineItem {
	byID := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	lines := make([]domain.LineItem, 0, len(entries))
	for _, entry := range entries {
		product, ok := byID[entry.ProductID]
		if !ok {
			lines = append(lines, domain.LineItem{
				Entry:       entry,
				Product:     domain.UnavailableProduct(entry.ProductID),
				Unavailable: true,
			})
			continue
		}
		lines = append(lines, domain.LineItem{Entry: entry, Product: product})
	}
	return lines
}
