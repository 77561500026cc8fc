// Package guestcart persists the cart of visitors who have not signed in.
// Guest carts live entirely outside the remote gateway: they are keyed by an
// anonymous session ID and carry full product snapshots so the cart page can
// render without a catalog round trip.
package guestcart

import (
	"context"

	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/shopspring/decimal"
)

// Entry is one line of a guest cart. Unlike the authenticated cart, which
// stores only product IDs and reconciles against the catalog, a guest entry
// snapshots the product fields it needs to render.
type Entry struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Cart is a guest's saved cart.
type Cart struct {
	Items []Entry `json:"items"`
}

// Store persists guest carts by anonymous session ID.
type Store interface {
	// Load returns the cart for the given session. A session with no saved
	// cart yields an empty cart, not an error.
	Load(ctx context.Context, sessionID string) (Cart, error)

	// Save replaces the stored cart for the session.
	Save(ctx context.Context, sessionID string, cart Cart) error

	// Delete discards the stored cart. Deleting an absent cart is a no-op.
	Delete(ctx context.Context, sessionID string) error
}

// AddItem merges a product into the cart: an existing line for the same
// product has its quantity increased, otherwise a new line is appended.
func (c *Cart) AddItem(p domain.Product, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.EffectivePrice(),
		Image:     p.FirstImage(),
		Quantity:  quantity,
	})
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1
// are rejected; removal goes through Remove.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

// Remove deletes the line for the given product. Removing a product that is
// not in the cart is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// ItemCount is the total unit count across all lines, for the cart badge.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of line totals at the snapshotted prices.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
