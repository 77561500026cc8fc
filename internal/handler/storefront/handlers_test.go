package storefront

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kaspervae/verdandi/internal/auth"
	"github.com/kaspervae/verdandi/internal/cookie"
	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/guestcart"
	"github.com/kaspervae/verdandi/internal/pricing"
	"github.com/kaspervae/verdandi/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway implements service.Gateway with overridable funcs.
type mockGateway struct {
	listProductsFunc    func(ctx context.Context) ([]domain.Product, error)
	listCartFunc        func(ctx context.Context, email string) ([]domain.CartEntry, error)
	addCartEntryFunc    func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error)
	updateCartEntryFunc func(ctx context.Context, entryID string, quantity int) error
	deleteCartEntryFunc func(ctx context.Context, entryID string) error
	listOrdersFunc      func(ctx context.Context, email string) ([]domain.Order, error)
	createOrderFunc     func(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
}

func (m *mockGateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if m.listProductsFunc != nil {
		return m.listProductsFunc(ctx)
	}
	return nil, nil
}

func (m *mockGateway) EnsureUser(ctx context.Context, user domain.User) (domain.User, error) {
	return user, nil
}

func (m *mockGateway) ListCart(ctx context.Context, email string) ([]domain.CartEntry, error) {
	if m.listCartFunc != nil {
		return m.listCartFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockGateway) AddCartEntry(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
	if m.addCartEntryFunc != nil {
		return m.addCartEntryFunc(ctx, entry)
	}
	entry.ID = "generated"
	return entry, nil
}

func (m *mockGateway) UpdateCartEntry(ctx context.Context, entryID string, quantity int) error {
	if m.updateCartEntryFunc != nil {
		return m.updateCartEntryFunc(ctx, entryID, quantity)
	}
	return nil
}

func (m *mockGateway) DeleteCartEntry(ctx context.Context, entryID string) error {
	if m.deleteCartEntryFunc != nil {
		return m.deleteCartEntryFunc(ctx, entryID)
	}
	return nil
}

func (m *mockGateway) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	if m.listOrdersFunc != nil {
		return m.listOrdersFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockGateway) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, draft)
	}
	return domain.Order{ID: "order-1", Email: draft.Email, Total: draft.Total}, nil
}

// mockProvider implements auth.Provider.
type mockProvider struct {
	signInFunc func(ctx context.Context, email, password string) (domain.Session, error)
	signUpFunc func(ctx context.Context, email, password string) (domain.Session, error)
}

var _ auth.Provider = (*mockProvider)(nil)

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, email, password)
	}
	return domain.Session{State: domain.SessionAuthenticated}, nil
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password)
	}
	return domain.Session{State: domain.SessionAuthenticated}, nil
}

func (m *mockProvider) SignInWithGoogle(ctx context.Context, token string) (domain.Session, error) {
	return domain.Session{State: domain.SessionAuthenticated}, nil
}

func (m *mockProvider) SignOut(ctx context.Context) error { return nil }

func (m *mockProvider) CurrentSession() domain.Session {
	return domain.Session{State: domain.SessionGuest}
}

func (m *mockProvider) Subscribe(fn func(domain.Session)) func() { return func() {} }

func sampleCatalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Red Shoe", Brand: "Nike", Category: "Shoes", Price: decimal.NewFromInt(50)},
		{ID: "p2", Name: "Blue Shoe", Brand: "Adidas", Category: "Shoes", Price: decimal.NewFromInt(150)},
		{ID: "p3", Name: "Green Hat", Brand: "Nike", Price: decimal.NewFromInt(25)},
	}
}

func newBase(t *testing.T, gw *mockGateway) *Base {
	t.Helper()
	if gw.listProductsFunc == nil {
		gw.listProductsFunc = func(ctx context.Context) ([]domain.Product, error) {
			return sampleCatalog(), nil
		}
	}

	store := service.NewStore(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.LoadCatalog(context.Background()))

	guest, err := guestcart.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return &Base{
		Store:   store,
		Guest:   guest,
		Pricing: pricing.Defaults(),
		Cookies: cookie.NewConfig(false),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func signInBase(t *testing.T, base *Base) {
	t.Helper()
	require.NoError(t, base.Store.OnSessionChange(context.Background(), domain.Session{
		State: domain.SessionAuthenticated,
		User:  &domain.User{ID: "uid-1", Email: "kim@example.com"},
	}))
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestProductList(t *testing.T) {
	h := NewProductHandler(newBase(t, &mockGateway{}))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Red Shoe")
	assert.Contains(t, body, "Blue Shoe")
	assert.Contains(t, body, "3 products")
}

func TestProductList_BrandFilter(t *testing.T) {
	h := NewProductHandler(newBase(t, &mockGateway{}))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/products?brand=Nike", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "Red Shoe")
	assert.Contains(t, body, "Green Hat")
	assert.NotContains(t, body, `<a href="/products/p2">`)
	assert.Contains(t, body, "2 products")
}

func TestProductList_PriceLowSortOrders(t *testing.T) {
	h := NewProductHandler(newBase(t, &mockGateway{}))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/products?sort=price-low", nil))

	body := rec.Body.String()
	hat := strings.Index(body, "Green Hat")
	red := strings.Index(body, "Red Shoe")
	blue := strings.Index(body, "Blue Shoe")
	assert.True(t, hat < red && red < blue,
		"expected Green Hat < Red Shoe < Blue Shoe, got %d %d %d", hat, red, blue)
}

func TestProductDetail(t *testing.T) {
	h := NewProductHandler(newBase(t, &mockGateway{}))

	req := httptest.NewRequest(http.MethodGet, "/products/p1", nil)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.Detail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Red Shoe")
	assert.Contains(t, rec.Body.String(), "Add to cart")
}

func TestProductDetail_UnknownIs404(t *testing.T) {
	h := NewProductHandler(newBase(t, &mockGateway{}))

	req := httptest.NewRequest(http.MethodGet, "/products/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.Detail(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAdd_GuestUsesGuestCart(t *testing.T) {
	base := newBase(t, &mockGateway{
		addCartEntryFunc: func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
			t.Fatal("guest cart additions must not reach the gateway")
			return domain.CartEntry{}, nil
		},
	})
	h := NewCartHandler(base)

	// First add mints the guest session cookie.
	rec := httptest.NewRecorder()
	h.Add(rec, postForm("/cart/add", url.Values{"product_id": {"p1"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "guest session cookie should be set")

	// Second add for the same product merges.
	req := postForm("/cart/add", url.Values{"product_id": {"p1"}})
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.Add(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cart, err := base.Guest.Load(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartView_GuestShowsItems(t *testing.T) {
	base := newBase(t, &mockGateway{})
	h := NewCartHandler(base)

	sessionID := "guest-1"
	var cart guestcart.Cart
	require.NoError(t, cart.AddItem(sampleCatalog()[0], 2))
	require.NoError(t, base.Guest.Save(context.Background(), sessionID, cart))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: cookie.GuestCartCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	h.View(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Red Shoe")
	assert.Contains(t, body, "Subtotal: 100.00")
	assert.Contains(t, body, "Sign in to check out")
}

func TestCartAdd_SignedInGoesThroughStore(t *testing.T) {
	added := false
	base := newBase(t, &mockGateway{
		addCartEntryFunc: func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
			added = true
			entry.ID = "e-1"
			return entry, nil
		},
	})
	signInBase(t, base)
	h := NewCartHandler(base)

	rec := httptest.NewRecorder()
	h.Add(rec, postForm("/cart/add", url.Values{"product_id": {"p1"}}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, added)
	require.Len(t, base.Store.Cart(), 1)
}

func TestCartView_UnavailableLineHasNoQuantityControls(t *testing.T) {
	base := newBase(t, &mockGateway{
		listCartFunc: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "vanished", Quantity: 1}}, nil
		},
	})
	signInBase(t, base)
	h := NewCartHandler(base)

	rec := httptest.NewRecorder()
	h.View(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	body := rec.Body.String()
	assert.Contains(t, body, domain.UnavailableProductName)
	assert.NotContains(t, body, `action="/cart/update"`,
		"unavailable lines must not offer quantity controls")
	assert.Contains(t, body, `action="/cart/remove"`)
}

func TestCheckoutPage_RedirectsGuests(t *testing.T) {
	base := newBase(t, &mockGateway{})
	checkout := service.NewCheckoutService(base.Store, base.Pricing, base.Logger)
	h := NewCheckoutHandler(base, checkout)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/checkout", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestCheckoutSubmit_PlacesOrder(t *testing.T) {
	base := newBase(t, &mockGateway{
		listCartFunc: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
		},
	})
	signInBase(t, base)
	checkout := service.NewCheckoutService(base.Store, base.Pricing, base.Logger)
	h := NewCheckoutHandler(base, checkout)

	form := url.Values{
		"payment_method":  {domain.PaymentCashOnDelivery},
		"full_name":       {"Kim Larsen"},
		"line1":           {"1 Harbour St"},
		"city":            {"Copenhagen"},
		"state":           {"Hovedstaden"},
		"postal_code":     {"1050"},
		"country":         {"DK"},
		"phone":           {"+45 11 22 33 44"},
	}
	rec := httptest.NewRecorder()
	h.Submit(rec, postForm("/checkout", form))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "has been placed")
	assert.Empty(t, base.Store.Cart())
}

func TestCheckoutSubmit_ValidationErrorsRerenderForm(t *testing.T) {
	base := newBase(t, &mockGateway{
		listCartFunc: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
		},
	})
	signInBase(t, base)
	checkout := service.NewCheckoutService(base.Store, base.Pricing, base.Logger)
	h := NewCheckoutHandler(base, checkout)

	// Card payment with no transaction reference and no city.
	form := url.Values{
		"payment_method": {domain.PaymentCard},
		"full_name":      {"Kim Larsen"},
		"line1":          {"1 Harbour St"},
		"state":          {"Hovedstaden"},
		"postal_code":    {"1050"},
		"country":        {"DK"},
		"phone":          {"+45 11 22 33 44"},
	}
	rec := httptest.NewRecorder()
	h.Submit(rec, postForm("/checkout", form))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "transaction reference")
	assert.Contains(t, body, "field-error")
	assert.NotContains(t, body, "has been placed")
}

func TestOrders_RedirectsGuests(t *testing.T) {
	h := NewOrderHandler(newBase(t, &mockGateway{}))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestOrders_ListsHistory(t *testing.T) {
	base := newBase(t, &mockGateway{
		listOrdersFunc: func(ctx context.Context, email string) ([]domain.Order, error) {
			return []domain.Order{{
				ID:     "o-1",
				Status: domain.OrderStatusShipped,
				Lines:  []domain.OrderLine{{Name: "Red Shoe", Quantity: 2, UnitPrice: decimal.NewFromInt(50)}},
				Total:  decimal.NewFromInt(110),
			}}, nil
		},
	})
	signInBase(t, base)
	h := NewOrderHandler(base)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "Order o-1")
	assert.Contains(t, body, "Shipped")
	assert.Contains(t, body, "Red Shoe")
}

func TestLogin_FailureShowsMessage(t *testing.T) {
	base := newBase(t, &mockGateway{})
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (domain.Session, error) {
			return domain.Session{}, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(base, provider)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{"email": {"kim@example.com"}, "password": {"wrong"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLogin_SuccessRedirectsHome(t *testing.T) {
	base := newBase(t, &mockGateway{})
	h := NewAuthHandler(base, &mockProvider{})

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{"email": {"kim@example.com"}, "password": {"hunter22"}}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestProductList_ReloadsCatalogAfterFailedStart(t *testing.T) {
	calls := 0
	gw := &mockGateway{
		listProductsFunc: func(ctx context.Context) ([]domain.Product, error) {
			calls++
			if calls == 1 {
				return nil, domain.Network(errors.New("down"), "gateway.ListProducts", "gateway unreachable")
			}
			return sampleCatalog(), nil
		},
	}
	store := service.NewStore(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, store.LoadCatalog(context.Background()))
	require.Empty(t, store.Catalog())

	guest, err := guestcart.NewFileStore(t.TempDir())
	require.NoError(t, err)
	h := NewProductHandler(&Base{
		Store:   store,
		Guest:   guest,
		Pricing: pricing.Defaults(),
		Cookies: cookie.NewConfig(false),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Red Shoe",
		"the listing should retry the catalog load instead of staying empty")
}

func TestLogin_SuccessDiscardsGuestCart(t *testing.T) {
	base := newBase(t, &mockGateway{})
	h := NewAuthHandler(base, &mockProvider{})

	sessionID := "guest-9"
	var cart guestcart.Cart
	require.NoError(t, cart.AddItem(sampleCatalog()[0], 1))
	require.NoError(t, base.Guest.Save(context.Background(), sessionID, cart))

	req := postForm("/login", url.Values{"email": {"kim@example.com"}, "password": {"hunter22"}})
	req.AddCookie(&http.Cookie{Name: cookie.GuestCartCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)

	loaded, err := base.Guest.Load(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items, "guest cart should be discarded after sign-in")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, cookie.GuestCartCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge, "guest cookie should be cleared")
}

func TestLogin_FailureKeepsGuestCart(t *testing.T) {
	base := newBase(t, &mockGateway{})
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (domain.Session, error) {
			return domain.Session{}, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(base, provider)

	sessionID := "guest-9"
	var cart guestcart.Cart
	require.NoError(t, cart.AddItem(sampleCatalog()[0], 1))
	require.NoError(t, base.Guest.Save(context.Background(), sessionID, cart))

	req := postForm("/login", url.Values{"email": {"kim@example.com"}, "password": {"wrong"}})
	req.AddCookie(&http.Cookie{Name: cookie.GuestCartCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	loaded, err := base.Guest.Load(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 1, "a rejected sign-in must not touch the guest cart")
}

func TestMarketingPages(t *testing.T) {
	h := NewPagesHandler(newBase(t, &mockGateway{}))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"home", h.Home, "Featured"},
		{"about", h.About, "About us"},
		{"contact", h.Contact, "hello@verdandi.example"},
		{"development", h.Development, "Software development"},
		{"graphic design", h.GraphicDesign, "Graphic design"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
