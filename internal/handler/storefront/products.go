package storefront

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/kaspervae/verdandi/internal/catalog"
	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductHandler renders the product listing and detail pages.
type ProductHandler struct {
	*Base
}

func NewProductHandler(base *Base) *ProductHandler {
	return &ProductHandler{Base: base}
}

// List handles GET /products. Filter and sort selections arrive as query
// parameters and are applied against the catalog mirror.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.catalog(r)
	filter := filterFromQuery(r)
	products := catalog.Apply(all, filter)

	pageStart(w, "Products", h.Store.Session(), h.cartCount(w, r))

	fmt.Fprint(w, `	<h1>Products</h1>
	<form method="get" action="/products">
		<input type="search" name="q" placeholder="Search" value="`+html.EscapeString(filter.Search)+`">
		<select name="brand">
`)
	writeOption(w, catalog.All, "All brands", filter.Brand)
	for _, brand := range catalog.Brands(all) {
		writeOption(w, brand, brand, filter.Brand)
	}
	fmt.Fprint(w, `		</select>
		<select name="category">
`)
	writeOption(w, catalog.All, "All categories", filter.Category)
	for _, category := range catalog.Categories(all) {
		writeOption(w, category, category, filter.Category)
	}
	fmt.Fprint(w, `		</select>
		<input type="number" name="min_price" placeholder="Min price" step="0.01">
		<input type="number" name="max_price" placeholder="Max price" step="0.01">
		<select name="sort">
`)
	for _, s := range []struct{ key, label string }{
		{catalog.SortFeatured, "Featured"},
		{catalog.SortPriceLow, "Price: low to high"},
		{catalog.SortPriceHigh, "Price: high to low"},
		{catalog.SortNameAsc, "Name A-Z"},
		{catalog.SortNameDesc, "Name Z-A"},
		{catalog.SortRating, "Top rated"},
		{catalog.SortNewest, "Newest"},
	} {
		writeOption(w, s.key, s.label, filter.Sort)
	}
	fmt.Fprintf(w, `		</select>
		<button type="submit">Apply</button>
	</form>
	<p>%d products</p>
	<ul>
`, len(products))

	for _, p := range products {
		fmt.Fprintf(w, `		<li>
			<a href="/products/%s"><img src="%s" alt=""> %s</a>
			<span>%s</span>
			%s
			<form method="post" action="/cart/add">
				<input type="hidden" name="product_id" value="%s">
				<button type="submit">Add to cart</button>
			</form>
		</li>
`,
			html.EscapeString(p.ID),
			html.EscapeString(p.FirstImage()),
			html.EscapeString(p.Name),
			html.EscapeString(p.Brand),
			priceHTML(p),
			html.EscapeString(p.ID))
	}

	fmt.Fprint(w, "	</ul>\n")
	pageEnd(w)
}

// Detail handles GET /products/{id}.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	var product domain.Product
	found := false
	for _, p := range h.catalog(r) {
		if p.ID == id {
			product, found = p, true
			break
		}
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	pageStart(w, product.Name, h.Store.Session(), h.cartCount(w, r))

	fmt.Fprintf(w, `	<h1>%s</h1>
	<p>%s / %s</p>
	<img src="%s" alt="">
	%s
	<p>Rating: %.1f</p>
	<p>%s</p>
`,
		html.EscapeString(product.Name),
		html.EscapeString(product.Brand),
		html.EscapeString(product.DisplayCategory()),
		html.EscapeString(product.FirstImage()),
		priceHTML(product),
		product.Rating,
		html.EscapeString(product.Description))

	if len(product.Specs) > 0 {
		fmt.Fprint(w, "	<h2>Specifications</h2>\n	<dl>\n")
		for k, v := range product.Specs {
			fmt.Fprintf(w, "		<dt>%s</dt><dd>%s</dd>\n",
				html.EscapeString(k), html.EscapeString(v))
		}
		fmt.Fprint(w, "	</dl>\n")
	}

	fmt.Fprintf(w, `	<form method="post" action="/cart/add">
		<input type="hidden" name="product_id" value="%s">
		<label>Quantity <input type="number" name="quantity" value="1" min="1"></label>
		<button type="submit">Add to cart</button>
	</form>
`, html.EscapeString(product.ID))

	pageEnd(w)
}

// filterFromQuery maps the listing's query parameters onto a catalog filter.
// Unparseable numbers are treated as absent.
func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	f := catalog.Filter{
		Search:   q.Get("q"),
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if d, err := decimal.NewFromString(q.Get("min_price")); err == nil {
		f.MinPrice = &d
	}
	if d, err := decimal.NewFromString(q.Get("max_price")); err == nil {
		f.MaxPrice = &d
	}
	if v, err := strconv.ParseFloat(q.Get("min_rating"), 64); err == nil {
		f.MinRating = &v
	}
	return f
}

func writeOption(w http.ResponseWriter, value, label, selected string) {
	sel := ""
	if value == selected {
		sel = " selected"
	}
	fmt.Fprintf(w, "			<option value=\"%s\"%s>%s</option>\n",
		html.EscapeString(value), sel, html.EscapeString(label))
}

// priceHTML renders the effective price, with the original struck through
// when a discount applies.
func priceHTML(p domain.Product) string {
	if p.DiscountPercent.IsPositive() {
		return fmt.Sprintf("<span><del>%s</del> %s</span>",
			p.Price.StringFixed(2), p.EffectivePrice().StringFixed(2))
	}
	return fmt.Sprintf("<span>%s</span>", p.Price.StringFixed(2))
}
