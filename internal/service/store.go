// Package service holds the storefront's in-process state: the session, the
// catalog mirror, the signed-in user's cart and their order history. The
// remote gateway stays the single authority for persistence; the Store is a
// mirror that handlers read synchronously and that reconciles itself with
// the gateway after every mutation.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kaspervae/verdandi/internal/domain"
)

// Gateway is the slice of the gateway client the store depends on.
type Gateway interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	EnsureUser(ctx context.Context, user domain.User) (domain.User, error)
	ListCart(ctx context.Context, email string) ([]domain.CartEntry, error)
	AddCartEntry(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error)
	UpdateCartEntry(ctx context.Context, entryID string, quantity int) error
	DeleteCartEntry(ctx context.Context, entryID string) error
	ListOrders(ctx context.Context, email string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
}

// Store is the single source of truth for session, catalog, cart and orders.
// All state transitions notify subscribers, so any view rendered afterwards
// sees the new state.
type Store struct {
	gateway Gateway
	logger  *slog.Logger

	mu      sync.Mutex
	session domain.Session
	catalog []domain.Product
	cart    []domain.CartEntry
	orders  []domain.Order

	// inflight guards concurrent quantity updates per product. While an
	// update for a product is in flight, further updates for that product
	// are rejected rather than queued.
	inflight map[string]bool

	subscribers map[int]func()
	nextSubID   int
}

func NewStore(gw Gateway, logger *slog.Logger) *Store {
	return &Store{
		gateway:     gw,
		logger:      logger,
		session:     domain.Session{State: domain.SessionUnknown},
		inflight:    make(map[string]bool),
		subscribers: make(map[int]func()),
	}
}

// Subscribe registers a change callback and returns its unsubscribe func.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Session returns the current session.
func (s *Store) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Catalog returns a copy of the catalog mirror.
func (s *Store) Catalog() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Product(nil), s.catalog...)
}

// Cart returns a copy of the raw cart entries.
func (s *Store) Cart() []domain.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartEntry(nil), s.cart...)
}

// Orders returns a copy of the fetched order history.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.orders...)
}

// Lines returns the cart reconciled against the catalog.
func (s *Store) Lines() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Reconcile(s.cart, s.catalog)
}

// OnSessionChange is the auth provider's entry point into the store. On
// sign-in it upserts the user at the gateway and replaces the in-memory cart
// and orders with the gateway's; on sign-out it clears both. The session is
// adopted even when the gateway loads fail, so the user is never shown as
// signed out because the cart fetch hiccuped.
func (s *Store) OnSessionChange(ctx context.Context, session domain.Session) error {
	const op = "service.OnSessionChange"

	if !session.SignedIn() {
		s.mu.Lock()
		s.session = session
		s.cart = nil
		s.orders = nil
		s.mu.Unlock()
		s.notify()
		return nil
	}

	user, err := s.gateway.EnsureUser(ctx, *session.User)
	if err != nil {
		s.logger.Error("failed to upsert user at gateway",
			slog.String("op", op),
			slog.String("email", session.User.Email),
			slog.String("error", err.Error()))
		s.mu.Lock()
		s.session = session
		s.cart = nil
		s.orders = nil
		s.mu.Unlock()
		s.notify()
		return err
	}
	session.User = &user

	cart, err := s.gateway.ListCart(ctx, user.Email)
	if err != nil {
		s.logger.Error("failed to load cart on sign-in",
			slog.String("op", op),
			slog.String("error", err.Error()))
		cart = nil
	}
	orders, err := s.gateway.ListOrders(ctx, user.Email)
	if err != nil {
		s.logger.Error("failed to load orders on sign-in",
			slog.String("op", op),
			slog.String("error", err.Error()))
		orders = nil
	}

	s.mu.Lock()
	s.session = session
	s.cart = cart
	s.orders = orders
	s.mu.Unlock()
	s.notify()
	return nil
}

// LoadCatalog refreshes the catalog mirror from the gateway. On failure the
// catalog is cleared: the mirror never retains partial or stale product data,
// and views render the empty state until a reload succeeds.
func (s *Store) LoadCatalog(ctx context.Context) error {
	const op = "service.LoadCatalog"

	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		s.logger.Error("failed to load catalog",
			slog.String("op", op),
			slog.String("error", err.Error()))
		s.mu.Lock()
		s.catalog = nil
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.mu.Lock()
	s.catalog = products
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddToCart adds quantity units of a product to the signed-in user's cart,
// merging into the existing entry when there is one. Guests are rejected
// with an auth-required error; the caller routes them to the guest cart.
// The product ID is not validated against the catalog mirror: the gateway
// is the authority on what exists.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int) error {
	const op = "service.AddToCart"

	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	session := s.session
	existing, ok := s.findEntry(productID)
	s.mu.Unlock()

	if !session.SignedIn() {
		return domain.ErrAuthRequired
	}

	if ok {
		return s.UpdateItemQuantity(ctx, productID, existing.Quantity+quantity)
	}

	created, err := s.gateway.AddCartEntry(ctx, domain.CartEntry{
		UserEmail: session.User.Email,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to add product to cart")
	}

	s.mu.Lock()
	s.cart = append(s.cart, created)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateItemQuantity sets the quantity of the cart entry for productID.
//
// The write is optimistic: local state changes and subscribers are notified
// before the gateway call, so the view updates immediately. If the gateway
// then fails, the store does not guess at a rollback. It refetches the cart
// and adopts whatever the gateway says, which is the only state known to be
// true. At most one update per product may be in flight at a time.
func (s *Store) UpdateItemQuantity(ctx context.Context, productID string, newQuantity int) error {
	const op = "service.UpdateItemQuantity"

	if newQuantity < 1 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	session := s.session
	if !session.SignedIn() {
		s.mu.Unlock()
		return domain.ErrAuthRequired
	}
	if s.inflight[productID] {
		s.mu.Unlock()
		return domain.ErrUpdateInFlight
	}
	entry, ok := s.findEntry(productID)
	if !ok {
		s.mu.Unlock()
		return domain.ErrCartItemNotFound
	}
	prev := entry.Quantity
	s.setEntryQuantity(productID, newQuantity)
	s.inflight[productID] = true
	s.mu.Unlock()

	s.notify()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, productID)
		s.mu.Unlock()
	}()

	if err := s.gateway.UpdateCartEntry(ctx, entry.ID, newQuantity); err != nil {
		s.logger.Warn("cart update failed, resyncing from gateway",
			slog.String("op", op),
			slog.String("product_id", productID),
			slog.Int("from", prev),
			slog.Int("to", newQuantity),
			slog.String("error", err.Error()))
		s.resyncCart(ctx, session.User.Email)
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to update quantity")
	}
	return nil
}

// RemoveFromCart deletes the entry for productID. An empty product ID is
// logged and ignored: it means a stale or malformed form post, not a state
// problem worth surfacing.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	const op = "service.RemoveFromCart"

	if productID == "" {
		s.logger.Warn("remove from cart called without a product id",
			slog.String("op", op))
		return nil
	}

	s.mu.Lock()
	session := s.session
	entry, ok := s.findEntry(productID)
	s.mu.Unlock()

	if !session.SignedIn() {
		return domain.ErrAuthRequired
	}
	if !ok {
		return domain.ErrCartItemNotFound
	}

	if err := s.gateway.DeleteCartEntry(ctx, entry.ID); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to remove product from cart")
	}

	s.mu.Lock()
	s.deleteEntry(productID)
	s.mu.Unlock()
	s.notify()
	return nil
}

// PlaceOrder submits the draft to the gateway. On success the cart is
// emptied, both remotely and locally, and the new order is prepended to the
// in-memory history.
func (s *Store) PlaceOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	const op = "service.PlaceOrder"

	order, err := s.gateway.CreateOrder(ctx, draft)
	if err != nil {
		return domain.Order{}, domain.WrapError(err, domain.ErrorCode(err), op, "failed to place order")
	}

	s.mu.Lock()
	entries := append([]domain.CartEntry(nil), s.cart...)
	s.mu.Unlock()

	for _, entry := range entries {
		if err := s.gateway.DeleteCartEntry(ctx, entry.ID); err != nil {
			// The order is already placed; a leftover cart entry is an
			// annoyance, not a failure.
			s.logger.Warn("failed to clear cart entry after order",
				slog.String("op", op),
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()))
		}
	}

	s.mu.Lock()
	s.cart = nil
	s.orders = append([]domain.Order{order}, s.orders...)
	s.mu.Unlock()
	s.notify()
	return order, nil
}

// FetchOrders refreshes the order history for the signed-in user.
func (s *Store) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "service.FetchOrders"

	session := s.Session()
	if !session.SignedIn() || session.User.Email == "" {
		return nil, domain.ErrMissingEmail
	}

	orders, err := s.gateway.ListOrders(ctx, session.User.Email)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to fetch orders")
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	s.notify()
	return orders, nil
}

// resyncCart replaces the local cart with the gateway's after a failed
// optimistic write.
func (s *Store) resyncCart(ctx context.Context, email string) {
	cart, err := s.gateway.ListCart(ctx, email)
	if err != nil {
		s.logger.Error("cart resync failed, local state may be stale",
			slog.String("error", err.Error()))
		return
	}
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
	s.notify()
}

// findEntry and the helpers below require s.mu to be held.

func (s *Store) findEntry(productID string) (domain.CartEntry, bool) {
	for _, e := range s.cart {
		if e.ProductID == productID {
			return e, true
		}
	}
	return domain.CartEntry{}, false
}

func (s *Store) setEntryQuantity(productID string, quantity int) {
	for i := range s.cart {
		if s.cart[i].ProductID == productID {
			s.cart[i].Quantity = quantity
			return
		}
	}
}

func (s *Store) deleteEntry(productID string) {
	for i := range s.cart {
		if s.cart[i].ProductID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return
		}
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
