// Package storefront holds the customer-facing HTTP handlers. Handlers read
// from the service store and the guest cart, render HTML and redirect after
// mutations.
package storefront

import (
	"log/slog"
	"net/http"

	"github.com/kaspervae/verdandi/internal/cookie"
	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/guestcart"
	"github.com/kaspervae/verdandi/internal/pricing"
	"github.com/kaspervae/verdandi/internal/service"
)

// Base carries the dependencies every storefront handler needs: the state
// store, the guest cart store, the pricing options and the cookie config.
type Base struct {
	Store   *service.Store
	Guest   guestcart.Store
	Pricing pricing.Options
	Cookies *cookie.Config
	Logger  *slog.Logger
}

// catalog returns the catalog mirror, retrying the gateway load when the
// mirror is empty. A failed load at startup therefore heals on the next page
// view instead of requiring a restart; the reload failure itself degrades to
// the empty listing.
func (b *Base) catalog(r *http.Request) []domain.Product {
	products := b.Store.Catalog()
	if len(products) > 0 {
		return products
	}
	if err := b.Store.LoadCatalog(r.Context()); err != nil {
		b.Logger.Warn("catalog reload failed",
			slog.String("error", err.Error()))
		return nil
	}
	return b.Store.Catalog()
}

// cartCount returns the cart badge count for the current visitor: the store's
// cart for signed-in users, the guest cart otherwise. Failures degrade to 0
// rather than failing the page.
func (b *Base) cartCount(w http.ResponseWriter, r *http.Request) int {
	if b.Store.Session().SignedIn() {
		count := 0
		for _, li := range b.Store.Lines() {
			count += li.Entry.Quantity
		}
		return count
	}

	cart, err := b.Guest.Load(r.Context(), guestSessionID(w, r, b.Cookies))
	if err != nil {
		b.Logger.Warn("failed to load guest cart for badge",
			slog.String("error", err.Error()))
		return 0
	}
	return cart.ItemCount()
}
