package storefront

import (
	"fmt"
	"html"
	"net/http"

	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/service"
)

// CheckoutHandler renders the checkout form and places orders through the
// checkout service.
type CheckoutHandler struct {
	*Base
	Checkout *service.CheckoutService
}

func NewCheckoutHandler(base *Base, checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{Base: base, Checkout: checkout}
}

// paymentInstructions is what each method's sub-form tells the customer to
// do. None of these are live integrations; the customer settles out of band
// and pastes the reference.
func paymentInstructions(method string) string {
	switch method {
	case domain.PaymentBankTransfer:
		return "Transfer the order total to account 2200-118-553 (Verdandi ApS) and enter the transfer reference below."
	case domain.PaymentMobileMoney:
		return "Send the order total to mobile money number 555-0147 and enter the transaction code below."
	case domain.PaymentCashOnDelivery:
		return "Pay the courier in cash when your order arrives. No reference needed."
	case domain.PaymentCard:
		return "Complete the card payment with your bank's payment page and enter the confirmation reference below."
	default:
		return ""
	}
}

// Page handles GET /checkout.
func (h *CheckoutHandler) Page(w http.ResponseWriter, r *http.Request) {
	if !h.Store.Session().SignedIn() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.renderForm(w, r, service.CheckoutRequest{PaymentMethod: domain.PaymentBankTransfer}, nil)
}

// Submit handles POST /checkout.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.CheckoutHandler.Submit"

	req := service.CheckoutRequest{
		PaymentMethod:  r.FormValue("payment_method"),
		TransactionRef: r.FormValue("transaction_ref"),
		ShippingAddress: domain.ShippingAddress{
			FullName:   r.FormValue("full_name"),
			Line1:      r.FormValue("line1"),
			City:       r.FormValue("city"),
			State:      r.FormValue("state"),
			PostalCode: r.FormValue("postal_code"),
			Country:    r.FormValue("country"),
			Phone:      r.FormValue("phone"),
		},
	}

	order, err := h.Checkout.Submit(r.Context(), req)
	if err != nil {
		switch {
		case domain.IsValidationError(err):
			h.renderForm(w, r, req, domain.GetValidationFields(err))
		case domain.IsCode(err, domain.EUNAUTHORIZED):
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case err == domain.ErrCartEmpty, err == domain.ErrUnavailableInCart:
			// The cart page explains what is blocking checkout.
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
		default:
			renderError(w, h.Logger, op, err)
		}
		return
	}

	h.renderConfirmation(w, r, order)
}

func (h *CheckoutHandler) renderForm(w http.ResponseWriter, r *http.Request, req service.CheckoutRequest, fieldErrors map[string]string) {
	quote := h.Checkout.Quote()

	pageStart(w, "Checkout", h.Store.Session(), quote.ItemCount)

	fmt.Fprintf(w, `	<h1>Checkout</h1>
	<p>Subtotal: %s</p>
	<p>Shipping: %s</p>
	<p>Tax: %s</p>
	<p>Order total: %s</p>
	<form method="post" action="/checkout">
		<fieldset>
			<legend>Payment method</legend>
`,
		quote.Subtotal.StringFixed(2),
		shippingLabel(quote),
		quote.Tax.StringFixed(2),
		quote.TotalWithTax.StringFixed(2))

	for _, method := range domain.PaymentMethods() {
		checked := ""
		if method == req.PaymentMethod {
			checked = " checked"
		}
		fmt.Fprintf(w, `			<label><input type="radio" name="payment_method" value="%s"%s> %s</label>
			<p>%s</p>
`, method, checked, domain.PaymentMethodLabel(method), paymentInstructions(method))
	}

	writeFieldError(w, fieldErrors, "paymentMethod")
	fmt.Fprintf(w, `			<label>Transaction reference <input type="text" name="transaction_ref" value="%s"></label>
`, html.EscapeString(req.TransactionRef))
	writeFieldError(w, fieldErrors, "transactionRef")

	fmt.Fprint(w, `		</fieldset>
		<fieldset>
			<legend>Shipping address</legend>
`)
	addr := req.ShippingAddress
	for _, f := range []struct{ name, label, key, value string }{
		{"full_name", "Full name", "fullName", addr.FullName},
		{"line1", "Address", "line1", addr.Line1},
		{"city", "City", "city", addr.City},
		{"state", "State / region", "state", addr.State},
		{"postal_code", "Postal code", "postalCode", addr.PostalCode},
		{"country", "Country", "country", addr.Country},
		{"phone", "Phone", "phone", addr.Phone},
	} {
		fmt.Fprintf(w, `			<label>%s <input type="text" name="%s" value="%s"></label>
`, f.label, f.name, html.EscapeString(f.value))
		writeFieldError(w, fieldErrors, f.key)
	}

	fmt.Fprint(w, `		</fieldset>
		<button type="submit">Place order</button>
	</form>
`)
	pageEnd(w)
}

func (h *CheckoutHandler) renderConfirmation(w http.ResponseWriter, r *http.Request, order domain.Order) {
	pageStart(w, "Order confirmed", h.Store.Session(), 0)

	fmt.Fprintf(w, `	<h1>Thank you!</h1>
	<p>Your order <strong>%s</strong> has been placed.</p>
	<p>Payment method: %s</p>
	<p>Total: %s</p>
	<ul>
`,
		html.EscapeString(order.ID),
		domain.PaymentMethodLabel(order.PaymentMethod),
		order.Total.StringFixed(2))

	for _, line := range order.Lines {
		fmt.Fprintf(w, "		<li>%d &times; %s at %s</li>\n",
			line.Quantity, html.EscapeString(line.Name), line.UnitPrice.StringFixed(2))
	}

	fmt.Fprint(w, `	</ul>
	<p><a href="/orders">View your orders</a></p>
`)
	pageEnd(w)
}

func writeFieldError(w http.ResponseWriter, fieldErrors map[string]string, key string) {
	if msg, ok := fieldErrors[key]; ok {
		fmt.Fprintf(w, "			<p class=\"field-error\">%s</p>\n", html.EscapeString(msg))
	}
}
