package storefront

import (
	"fmt"
	"html"
	"net/http"

	"github.com/kaspervae/verdandi/internal/domain"
)

// OrderHandler renders the signed-in user's order history.
type OrderHandler struct {
	*Base
}

func NewOrderHandler(base *Base) *OrderHandler {
	return &OrderHandler{Base: base}
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.OrderHandler.List"

	if !h.Store.Session().SignedIn() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	orders, err := h.Store.FetchOrders(r.Context())
	if err != nil {
		// Stale history beats an error page when the gateway is flapping.
		h.Logger.Warn("order refresh failed, showing cached history",
			"op", op, "error", err.Error())
		orders = h.Store.Orders()
	}

	pageStart(w, "Your orders", h.Store.Session(), h.cartCount(w, r))
	fmt.Fprint(w, "	<h1>Your orders</h1>\n")

	if len(orders) == 0 {
		fmt.Fprint(w, `	<p>You have not placed any orders yet.</p>
	<p><a href="/products">Browse products</a></p>
`)
		pageEnd(w)
		return
	}

	for _, order := range orders {
		h.writeOrder(w, order)
	}
	pageEnd(w)
}

func (h *OrderHandler) writeOrder(w http.ResponseWriter, order domain.Order) {
	fmt.Fprintf(w, `	<section>
		<h2>Order %s</h2>
		<p>Placed %s &middot; %s &middot; %s</p>
		<ul>
`,
		html.EscapeString(order.ID),
		order.PlacedAt.Format("2 Jan 2006"),
		html.EscapeString(statusLabel(order.Status)),
		order.Total.StringFixed(2))

	for _, line := range order.Lines {
		fmt.Fprintf(w, `			<li><img src="%s" alt=""> %d &times; %s at %s</li>
`,
			html.EscapeString(line.Image),
			line.Quantity,
			html.EscapeString(line.Name),
			line.UnitPrice.StringFixed(2))
	}

	fmt.Fprint(w, "		</ul>\n	</section>\n")
}

func statusLabel(status string) string {
	switch status {
	case domain.OrderStatusPending:
		return "Pending"
	case domain.OrderStatusProcessing:
		return "Processing"
	case domain.OrderStatusShipped:
		return "Shipped"
	case domain.OrderStatusDelivered:
		return "Delivered"
	case domain.OrderStatusCancelled:
		return "Cancelled"
	default:
		return status
	}
}
