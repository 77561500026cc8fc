package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartItemNotFound  = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity   = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrAuthRequired      = &Error{Code: EUNAUTHORIZED, Message: "Sign in to modify your cart"}
	ErrUpdateInFlight    = &Error{Code: ECONFLICT, Message: "A cart update for this product is still in progress"}
	ErrCartEmpty         = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrUnavailableInCart = &Error{Code: EINVALID, Message: "Cart contains unavailable products"}
)

// CartEntry is one raw cart record: a product reference and a quantity.
// For authenticated users entries are owned by the remote gateway and
// mirrored locally; guest entries never leave the browser-equivalent local
// store. Invariant: Quantity >= 1, and at most one entry exists per
// (user, product) pair. An entry whose quantity drops to 0 is removed,
// never retained.
type CartEntry struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail,omitempty"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// LineItem is a CartEntry joined with its Product at render time.
// When the product cannot be resolved, Product holds the unavailable
// sentinel and Unavailable is set; such lines render with quantity controls
// disabled and block checkout.
type LineItem struct {
	Entry       CartEntry
	Product     Product
	Unavailable bool
}

// UnitPrice returns the per-unit price used for this line.
func (li LineItem) UnitPrice() decimal.Decimal {
	return li.Product.EffectivePrice()
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Entry.Quantity)))
}
