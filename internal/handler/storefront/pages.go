package storefront

import (
	"fmt"
	"html"
	"net/http"
)

// PagesHandler serves the home page and the static marketing pages.
type PagesHandler struct {
	*Base
}

func NewPagesHandler(base *Base) *PagesHandler {
	return &PagesHandler{Base: base}
}

// Home handles GET /.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	products := h.catalog(r)
	if len(products) > 4 {
		products = products[:4]
	}

	pageStart(w, "Home", h.Store.Session(), h.cartCount(w, r))

	fmt.Fprint(w, `	<h1>Welcome to Verdandi</h1>
	<p>Products we stand behind, plus development and design services for
	teams that need them.</p>
	<h2>Featured</h2>
	<ul>
`)
	for _, p := range products {
		fmt.Fprintf(w, `		<li><a href="/products/%s"><img src="%s" alt=""> %s</a> %s</li>
`,
			html.EscapeString(p.ID),
			html.EscapeString(p.FirstImage()),
			html.EscapeString(p.Name),
			priceHTML(p))
	}
	fmt.Fprint(w, `	</ul>
	<p><a href="/products">See all products</a></p>
	<h2>Services</h2>
	<p><a href="/development">Software development</a> &middot;
	<a href="/graphic-design">Graphic design</a></p>
`)
	pageEnd(w)
}

// About handles GET /about.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	pageStart(w, "About", h.Store.Session(), h.cartCount(w, r))
	fmt.Fprint(w, `	<h1>About us</h1>
	<p>Verdandi is a small studio shop: we sell the hardware and gear we use
	ourselves, and we take on client work in software development and graphic
	design.</p>
	<p>Every product in the catalog has been through our own hands. If it did
	not hold up, it is not listed.</p>
`)
	pageEnd(w)
}

// Contact handles GET /contact.
func (h *PagesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	pageStart(w, "Contact", h.Store.Session(), h.cartCount(w, r))
	fmt.Fprint(w, `	<h1>Contact</h1>
	<p>Email: <a href="mailto:hello@verdandi.example">hello@verdandi.example</a></p>
	<p>Phone: +45 55 01 47 22 (weekdays 9&ndash;17)</p>
	<p>For order questions include your order number; you can find it under
	<a href="/orders">your orders</a>.</p>
`)
	pageEnd(w)
}

// Development handles GET /development.
func (h *PagesHandler) Development(w http.ResponseWriter, r *http.Request) {
	pageStart(w, "Development services", h.Store.Session(), h.cartCount(w, r))
	fmt.Fprint(w, `	<h1>Software development</h1>
	<p>We build web applications, storefronts and internal tools, from first
	sketch to running service.</p>
	<ul>
		<li>Web applications and APIs</li>
		<li>E-commerce integrations</li>
		<li>Maintenance and performance work on existing systems</li>
	</ul>
	<p><a href="/contact">Get in touch</a> with a short description of the
	project and we will come back within two working days.</p>
`)
	pageEnd(w)
}

// GraphicDesign handles GET /graphic-design.
func (h *PagesHandler) GraphicDesign(w http.ResponseWriter, r *http.Request) {
	pageStart(w, "Graphic design services", h.Store.Session(), h.cartCount(w, r))
	fmt.Fprint(w, `	<h1>Graphic design</h1>
	<p>Identity, print and digital design from the same people who build the
	product, so the two never drift apart.</p>
	<ul>
		<li>Logos and visual identity</li>
		<li>Packaging and print</li>
		<li>Web and interface design</li>
	</ul>
	<p><a href="/contact">Get in touch</a> to see recent work.</p>
`)
	pageEnd(w)
}
