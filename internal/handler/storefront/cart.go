package storefront

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/guestcart"
	"github.com/kaspervae/verdandi/internal/pricing"
)

// CartHandler serves the cart page and its mutations. Signed-in visitors hit
// the gateway-backed store; guests work against the guest cart keyed by their
// session cookie.
type CartHandler struct {
	*Base
}

func NewCartHandler(base *Base) *CartHandler {
	return &CartHandler{Base: base}
}

// View handles GET /cart.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.CartHandler.View"

	var lines []domain.LineItem
	if h.Store.Session().SignedIn() {
		lines = h.Store.Lines()
	} else {
		cart, err := h.Guest.Load(r.Context(), guestSessionID(w, r, h.Cookies))
		if err != nil {
			renderError(w, h.Logger, op, err)
			return
		}
		lines = guestLines(cart)
	}

	quote := pricing.Compute(lines, h.Pricing)

	pageStart(w, "Cart", h.Store.Session(), quote.ItemCount)
	fmt.Fprint(w, "	<h1>Your cart</h1>\n")

	if len(lines) == 0 {
		fmt.Fprint(w, `	<p>Your cart is empty.</p>
	<p><a href="/products">Browse products</a></p>
`)
		pageEnd(w)
		return
	}

	fmt.Fprint(w, "	<ul>\n")
	for _, li := range lines {
		h.writeLine(w, li)
	}
	fmt.Fprintf(w, `	</ul>
	<p>Subtotal: %s</p>
	<p>Shipping: %s</p>
	<p>Total: %s</p>
`, quote.Subtotal.StringFixed(2), shippingLabel(quote), quote.Total.StringFixed(2))

	if h.Store.Session().SignedIn() {
		fmt.Fprint(w, `	<p><a href="/checkout">Proceed to checkout</a></p>
`)
	} else {
		fmt.Fprint(w, `	<p><a href="/login">Sign in to check out</a></p>
`)
	}
	pageEnd(w)
}

func (h *CartHandler) writeLine(w http.ResponseWriter, li domain.LineItem) {
	if li.Unavailable {
		// No quantity controls: the only way forward is removing the line.
		fmt.Fprintf(w, `		<li>
			<span>%s</span>
			<form method="post" action="/cart/remove">
				<input type="hidden" name="product_id" value="%s">
				<button type="submit">Remove</button>
			</form>
		</li>
`, html.EscapeString(li.Product.Name), html.EscapeString(li.Entry.ProductID))
		return
	}

	fmt.Fprintf(w, `		<li>
			<img src="%s" alt=""> <span>%s</span> <span>%s each</span>
			<form method="post" action="/cart/update">
				<input type="hidden" name="product_id" value="%s">
				<input type="number" name="quantity" value="%d" min="1">
				<button type="submit">Update</button>
			</form>
			<form method="post" action="/cart/remove">
				<input type="hidden" name="product_id" value="%s">
				<button type="submit">Remove</button>
			</form>
			<span>%s</span>
		</li>
`,
		html.EscapeString(li.Product.FirstImage()),
		html.EscapeString(li.Product.Name),
		li.UnitPrice().StringFixed(2),
		html.EscapeString(li.Entry.ProductID),
		li.Entry.Quantity,
		html.EscapeString(li.Entry.ProductID),
		li.LineTotal().StringFixed(2))
}

// Add handles POST /cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.CartHandler.Add"

	productID := r.FormValue("product_id")
	quantity := formQuantity(r)

	if h.Store.Session().SignedIn() {
		if err := h.Store.AddToCart(r.Context(), productID, quantity); err != nil {
			renderError(w, h.Logger, op, err)
			return
		}
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	product, found := h.findProduct(productID)
	if !found {
		renderError(w, h.Logger, op, domain.ErrProductNotFound)
		return
	}

	sessionID := guestSessionID(w, r, h.Cookies)
	cart, err := h.Guest.Load(r.Context(), sessionID)
	if err == nil {
		if err = cart.AddItem(product, quantity); err == nil {
			err = h.Guest.Save(r.Context(), sessionID, cart)
		}
	}
	if err != nil {
		renderError(w, h.Logger, op, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Update handles POST /cart/update.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.CartHandler.Update"

	productID := r.FormValue("product_id")
	quantity := formQuantity(r)

	if h.Store.Session().SignedIn() {
		if err := h.Store.UpdateItemQuantity(r.Context(), productID, quantity); err != nil {
			renderError(w, h.Logger, op, err)
			return
		}
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	sessionID := guestSessionID(w, r, h.Cookies)
	cart, err := h.Guest.Load(r.Context(), sessionID)
	if err == nil {
		if err = cart.UpdateQuantity(productID, quantity); err == nil {
			err = h.Guest.Save(r.Context(), sessionID, cart)
		}
	}
	if err != nil {
		renderError(w, h.Logger, op, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Remove handles POST /cart/remove.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.CartHandler.Remove"

	productID := r.FormValue("product_id")

	if h.Store.Session().SignedIn() {
		if err := h.Store.RemoveFromCart(r.Context(), productID); err != nil {
			renderError(w, h.Logger, op, err)
			return
		}
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	sessionID := guestSessionID(w, r, h.Cookies)
	cart, err := h.Guest.Load(r.Context(), sessionID)
	if err != nil {
		renderError(w, h.Logger, op, err)
		return
	}
	cart.Remove(productID)
	if err := h.Guest.Save(r.Context(), sessionID, cart); err != nil {
		renderError(w, h.Logger, op, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) findProduct(productID string) (domain.Product, bool) {
	for _, p := range h.Store.Catalog() {
		if p.ID == productID {
			return p, true
		}
	}
	return domain.Product{}, false
}

// guestLines adapts guest cart entries to line items so the cart page and
// pricing treat both cart kinds uniformly.
func guestLines(cart guestcart.Cart) []domain.LineItem {
	lines := make([]domain.LineItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, domain.LineItem{
			Entry: domain.CartEntry{ProductID: it.ProductID, Quantity: it.Quantity},
			Product: domain.Product{
				ID:     it.ProductID,
				Name:   it.Name,
				Price:  it.Price,
				Images: []string{it.Image},
			},
		})
	}
	return lines
}

func formQuantity(r *http.Request) int {
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || qty == 0 {
		return 1
	}
	return qty
}

func shippingLabel(q pricing.Quote) string {
	if q.ShippingFee.IsZero() {
		return "Free"
	}
	return q.ShippingFee.StringFixed(2)
}
