package routes

import (
	"github.com/kaspervae/verdandi/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing routes. Every
// mutation is a POST followed by a redirect; GETs never change state. All of
// these pages carry session state, so the whole group is marked uncacheable.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	r = r.Group(router.NoStore)

	// Home page
	r.Get("/", deps.Pages.Home)

	// Product browsing
	r.Get("/products", deps.Products.List)
	r.Get("/products/{id}", deps.Products.Detail)

	// Shopping cart
	r.Get("/cart", deps.Cart.View)
	r.Post("/cart/add", deps.Cart.Add)
	r.Post("/cart/update", deps.Cart.Update)
	r.Post("/cart/remove", deps.Cart.Remove)

	// Checkout flow
	r.Get("/checkout", deps.Checkout.Page)
	r.Post("/checkout", deps.Checkout.Submit)

	// Order history
	r.Get("/orders", deps.Orders.List)

	// Authentication
	r.Get("/login", deps.Auth.ShowLogin)
	r.Post("/login", deps.Auth.Login)
	r.Get("/signup", deps.Auth.ShowSignup)
	r.Post("/signup", deps.Auth.Signup)
	r.Post("/auth/google", deps.Auth.Google)
	r.Post("/logout", deps.Auth.Logout)

	// Marketing pages
	r.Get("/about", deps.Pages.About)
	r.Get("/contact", deps.Pages.Contact)
	r.Get("/development", deps.Pages.Development)
	r.Get("/graphic-design", deps.Pages.GraphicDesign)
}
