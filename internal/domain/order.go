package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingEmail guards order lookups: the gateway keys order history by
// email, so a session without one cannot fetch orders.
var ErrMissingEmail = &Error{Code: EINVALID, Message: "Email is required to look up orders"}

// Order statuses as reported by the remote gateway.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderLine is a snapshot of a product at order time. It deliberately copies
// name, price and image instead of referencing the Product, so later catalog
// or price changes never retroactively alter historical orders.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// ShippingAddress is the address snapshot captured with an order.
type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

// Order is a completed order as owned by the remote gateway; read-only here.
type Order struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Lines           []OrderLine     `json:"lines"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Total           decimal.Decimal `json:"total"`
	PlacedAt        time.Time       `json:"placedAt"`
}

// OrderDraft is the payload submitted to place a new order.
type OrderDraft struct {
	Email           string          `json:"email"`
	Lines           []OrderLine     `json:"lines"`
	PaymentMethod   string          `json:"paymentMethod"`
	TransactionRef  string          `json:"transactionRef,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
}
