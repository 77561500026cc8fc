package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kaspervae/verdandi/internal/domain"
)

// ListOrders returns the user's order history, newest first per the gateway's
// ordering.
func (c *Client) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	var orders []domain.Order
	path := "/orders/" + url.PathEscape(email)
	if err := c.get(ctx, "gateway.ListOrders", path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder submits a draft and returns the placed order as the gateway
// recorded it.
func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, "gateway.CreateOrder", http.MethodPost, "/orders", draft, &order)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
