package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway implements service.Gateway with overridable funcs. Unset funcs
// return empty results.
type mockGateway struct {
	ListProductsFn    func(ctx context.Context) ([]domain.Product, error)
	EnsureUserFn      func(ctx context.Context, user domain.User) (domain.User, error)
	ListCartFn        func(ctx context.Context, email string) ([]domain.CartEntry, error)
	AddCartEntryFn    func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error)
	UpdateCartEntryFn func(ctx context.Context, entryID string, quantity int) error
	DeleteCartEntryFn func(ctx context.Context, entryID string) error
	ListOrdersFn      func(ctx context.Context, email string) ([]domain.Order, error)
	CreateOrderFn     func(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
}

func (m *mockGateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if m.ListProductsFn != nil {
		return m.ListProductsFn(ctx)
	}
	return nil, nil
}

func (m *mockGateway) EnsureUser(ctx context.Context, user domain.User) (domain.User, error) {
	if m.EnsureUserFn != nil {
		return m.EnsureUserFn(ctx, user)
	}
	return user, nil
}

func (m *mockGateway) ListCart(ctx context.Context, email string) ([]domain.CartEntry, error) {
	if m.ListCartFn != nil {
		return m.ListCartFn(ctx, email)
	}
	return nil, nil
}

func (m *mockGateway) AddCartEntry(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
	if m.AddCartEntryFn != nil {
		return m.AddCartEntryFn(ctx, entry)
	}
	entry.ID = "generated"
	return entry, nil
}

func (m *mockGateway) UpdateCartEntry(ctx context.Context, entryID string, quantity int) error {
	if m.UpdateCartEntryFn != nil {
		return m.UpdateCartEntryFn(ctx, entryID, quantity)
	}
	return nil
}

func (m *mockGateway) DeleteCartEntry(ctx context.Context, entryID string) error {
	if m.DeleteCartEntryFn != nil {
		return m.DeleteCartEntryFn(ctx, entryID)
	}
	return nil
}

func (m *mockGateway) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	if m.ListOrdersFn != nil {
		return m.ListOrdersFn(ctx, email)
	}
	return nil, nil
}

func (m *mockGateway) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if m.CreateOrderFn != nil {
		return m.CreateOrderFn(ctx, draft)
	}
	return domain.Order{ID: "order-1", Email: draft.Email, Total: draft.Total}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedSession() domain.Session {
	return domain.Session{
		State: domain.SessionAuthenticated,
		User:  &domain.User{ID: "uid-1", Email: "kim@example.com"},
	}
}

func signIn(t *testing.T, store *service.Store) {
	t.Helper()
	require.NoError(t, store.OnSessionChange(context.Background(), authedSession()))
}

func TestOnSessionChange_SignInLoadsCartAndOrders(t *testing.T) {
	gw := &mockGateway{
		EnsureUserFn: func(ctx context.Context, user domain.User) (domain.User, error) {
			user.ID = "gateway-uid"
			return user, nil
		},
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			assert.Equal(t, "kim@example.com", email)
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 2}}, nil
		},
		ListOrdersFn: func(ctx context.Context, email string) ([]domain.Order, error) {
			return []domain.Order{{ID: "o-1"}}, nil
		},
	}
	store := service.NewStore(gw, testLogger())

	notified := 0
	defer store.Subscribe(func() { notified++ })()

	signIn(t, store)

	assert.Equal(t, domain.SessionAuthenticated, store.Session().State)
	assert.Equal(t, "gateway-uid", store.Session().User.ID, "gateway record should replace the provider one")
	require.Len(t, store.Cart(), 1)
	require.Len(t, store.Orders(), 1)
	assert.Equal(t, 1, notified)
}

func TestOnSessionChange_SignOutClearsState(t *testing.T) {
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
		},
		ListOrdersFn: func(ctx context.Context, email string) ([]domain.Order, error) {
			return []domain.Order{{ID: "o-1"}}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)
	require.NotEmpty(t, store.Cart())

	notified := 0
	defer store.Subscribe(func() { notified++ })()

	require.NoError(t, store.OnSessionChange(context.Background(), domain.Session{State: domain.SessionGuest}))

	assert.Equal(t, domain.SessionGuest, store.Session().State)
	assert.Empty(t, store.Cart())
	assert.Empty(t, store.Orders())
	assert.Equal(t, 1, notified)
}

func TestOnSessionChange_GatewayFailureStillAdoptsSession(t *testing.T) {
	gw := &mockGateway{
		EnsureUserFn: func(ctx context.Context, user domain.User) (domain.User, error) {
			return domain.User{}, domain.Network(errors.New("down"), "gateway.GetUser", "gateway unreachable")
		},
	}
	store := service.NewStore(gw, testLogger())

	err := store.OnSessionChange(context.Background(), authedSession())
	require.Error(t, err)
	assert.Equal(t, domain.SessionAuthenticated, store.Session().State,
		"a gateway hiccup must not present the user as signed out")
	assert.Empty(t, store.Cart())
}

func TestLoadCatalog(t *testing.T) {
	gw := &mockGateway{
		ListProductsFn: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{{ID: "p1", Name: "Red Shoe"}}, nil
		},
	}
	store := service.NewStore(gw, testLogger())

	require.NoError(t, store.LoadCatalog(context.Background()))
	require.Len(t, store.Catalog(), 1)
}

func TestLoadCatalog_FailureClearsCatalog(t *testing.T) {
	fail := false
	gw := &mockGateway{
		ListProductsFn: func(ctx context.Context) ([]domain.Product, error) {
			if fail {
				return nil, domain.Network(errors.New("down"), "gateway.ListProducts", "gateway unreachable")
			}
			return []domain.Product{{ID: "p1"}}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	require.NoError(t, store.LoadCatalog(context.Background()))
	require.Len(t, store.Catalog(), 1)

	fail = true
	require.Error(t, store.LoadCatalog(context.Background()))
	assert.Empty(t, store.Catalog(),
		"a failed reload must not leave stale products behind")
}

func TestAddToCart_GuestIsRejected(t *testing.T) {
	gw := &mockGateway{
		AddCartEntryFn: func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
			t.Fatal("gateway must not be called for guests")
			return domain.CartEntry{}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	require.NoError(t, store.OnSessionChange(context.Background(), domain.Session{State: domain.SessionGuest}))

	err := store.AddToCart(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestAddToCart_NewProduct(t *testing.T) {
	gw := &mockGateway{
		AddCartEntryFn: func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
			assert.Equal(t, "kim@example.com", entry.UserEmail)
			assert.Equal(t, "p1", entry.ProductID)
			assert.False(t, entry.AddedAt.IsZero())
			entry.ID = "e-1"
			return entry, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	require.NoError(t, store.AddToCart(context.Background(), "p1", 2))

	cart := store.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "e-1", cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
}

func TestAddToCart_ExistingProductMerges(t *testing.T) {
	var patched struct {
		id  string
		qty int
	}
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
		},
		UpdateCartEntryFn: func(ctx context.Context, entryID string, quantity int) error {
			patched.id, patched.qty = entryID, quantity
			return nil
		},
		AddCartEntryFn: func(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
			t.Fatal("a second entry for the same product must never be created")
			return domain.CartEntry{}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	require.NoError(t, store.AddToCart(context.Background(), "p1", 1))

	assert.Equal(t, "e-1", patched.id)
	assert.Equal(t, 2, patched.qty)

	cart := store.Cart()
	require.Len(t, cart, 1, "same product twice should stay one entry")
	assert.Equal(t, 2, cart[0].Quantity)
}

func TestUpdateItemQuantity_RejectsZero(t *testing.T) {
	called := false
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 3}}, nil
		},
		UpdateCartEntryFn: func(ctx context.Context, entryID string, quantity int) error {
			called = true
			return nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	err := store.UpdateItemQuantity(context.Background(), "p1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.False(t, called, "rejected update must not reach the gateway")
	assert.Equal(t, 3, store.Cart()[0].Quantity, "cart must be unchanged")
}

func TestUpdateItemQuantity_OptimisticThenConfirmed(t *testing.T) {
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	sawOptimistic := false
	defer store.Subscribe(func() {
		if cart := store.Cart(); len(cart) == 1 && cart[0].Quantity == 5 {
			sawOptimistic = true
		}
	})()

	require.NoError(t, store.UpdateItemQuantity(context.Background(), "p1", 5))
	assert.True(t, sawOptimistic, "subscribers should see the new quantity before the gateway confirms")
	assert.Equal(t, 5, store.Cart()[0].Quantity)
}

func TestUpdateItemQuantity_FailureResyncsFromGateway(t *testing.T) {
	gw := &mockGateway{}
	gw.ListCartFn = func(ctx context.Context, email string) ([]domain.CartEntry, error) {
		// Both the sign-in load and the resync see the gateway's truth.
		return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
	}
	gw.UpdateCartEntryFn = func(ctx context.Context, entryID string, quantity int) error {
		return domain.Network(errors.New("down"), "gateway.UpdateCartEntry", "gateway unreachable")
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	err := store.UpdateItemQuantity(context.Background(), "p1", 9)
	require.Error(t, err)
	assert.Equal(t, domain.ENETWORK, domain.ErrorCode(err))
	assert.Equal(t, 1, store.Cart()[0].Quantity,
		"failed optimistic write must be replaced by the gateway's state")
}

func TestUpdateItemQuantity_InFlightGuard(t *testing.T) {
	enter := make(chan struct{})
	release := make(chan struct{})
	var enterOnce sync.Once
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 1}}, nil
		},
		UpdateCartEntryFn: func(ctx context.Context, entryID string, quantity int) error {
			enterOnce.Do(func() { close(enter) })
			<-release
			return nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	done := make(chan error, 1)
	go func() {
		done <- store.UpdateItemQuantity(context.Background(), "p1", 2)
	}()

	select {
	case <-enter:
	case <-time.After(time.Second):
		t.Fatal("first update never reached the gateway")
	}

	err := store.UpdateItemQuantity(context.Background(), "p1", 3)
	assert.ErrorIs(t, err, domain.ErrUpdateInFlight)

	close(release)
	require.NoError(t, <-done)

	// With the first update settled, the product accepts updates again.
	require.NoError(t, store.UpdateItemQuantity(context.Background(), "p1", 3))
}

func TestRemoveFromCart_EmptyIDIsIgnored(t *testing.T) {
	called := false
	gw := &mockGateway{
		DeleteCartEntryFn: func(ctx context.Context, entryID string) error {
			called = true
			return nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	assert.NoError(t, store.RemoveFromCart(context.Background(), ""))
	assert.False(t, called)
}

func TestRemoveFromCart(t *testing.T) {
	var deleted string
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{
				{ID: "e-1", ProductID: "p1", Quantity: 1},
				{ID: "e-2", ProductID: "p2", Quantity: 1},
			}, nil
		},
		DeleteCartEntryFn: func(ctx context.Context, entryID string) error {
			deleted = entryID
			return nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	require.NoError(t, store.RemoveFromCart(context.Background(), "p1"))

	assert.Equal(t, "e-1", deleted)
	cart := store.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "p2", cart[0].ProductID)
}

func TestPlaceOrder_ClearsCartAndRecordsOrder(t *testing.T) {
	var deletedEntries []string
	gw := &mockGateway{
		ListCartFn: func(ctx context.Context, email string) ([]domain.CartEntry, error) {
			return []domain.CartEntry{{ID: "e-1", ProductID: "p1", Quantity: 2}}, nil
		},
		DeleteCartEntryFn: func(ctx context.Context, entryID string) error {
			deletedEntries = append(deletedEntries, entryID)
			return nil
		},
		CreateOrderFn: func(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
			return domain.Order{ID: "o-9", Email: draft.Email, Total: draft.Total}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	order, err := store.PlaceOrder(context.Background(), domain.OrderDraft{
		Email: "kim@example.com",
		Total: decimal.NewFromInt(64),
	})
	require.NoError(t, err)

	assert.Equal(t, "o-9", order.ID)
	assert.Empty(t, store.Cart())
	assert.Equal(t, []string{"e-1"}, deletedEntries)
	require.Len(t, store.Orders(), 1)
	assert.Equal(t, "o-9", store.Orders()[0].ID)
}

func TestFetchOrders_RequiresEmail(t *testing.T) {
	store := service.NewStore(&mockGateway{}, testLogger())

	_, err := store.FetchOrders(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingEmail)
}

func TestFetchOrders(t *testing.T) {
	gw := &mockGateway{
		ListOrdersFn: func(ctx context.Context, email string) ([]domain.Order, error) {
			return []domain.Order{{ID: "o-1"}, {ID: "o-2"}}, nil
		},
	}
	store := service.NewStore(gw, testLogger())
	signIn(t, store)

	orders, err := store.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Len(t, store.Orders(), 2)
}

func TestSubscribe_UnsubscribeStopsNotifications(t *testing.T) {
	gw := &mockGateway{
		ListProductsFn: func(ctx context.Context) ([]domain.Product, error) {
			return nil, nil
		},
	}
	store := service.NewStore(gw, testLogger())

	calls := 0
	unsubscribe := store.Subscribe(func() { calls++ })

	require.NoError(t, store.LoadCatalog(context.Background()))
	assert.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, store.LoadCatalog(context.Background()))
	assert.Equal(t, 1, calls)
}
