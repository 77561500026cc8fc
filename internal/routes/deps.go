package routes

import (
	"github.com/kaspervae/verdandi/internal/handler/storefront"
)

// StorefrontDeps contains the handlers behind the customer-facing routes.
type StorefrontDeps struct {
	// Home and marketing pages
	Pages *storefront.PagesHandler

	// Product listing and detail
	Products *storefront.ProductHandler

	// Cart (guest and signed-in)
	Cart *storefront.CartHandler

	// Checkout form and submission
	Checkout *storefront.CheckoutHandler

	// Order history
	Orders *storefront.OrderHandler

	// Sign-in, sign-up, Google, sign-out
	Auth *storefront.AuthHandler
}
