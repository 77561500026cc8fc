package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kaspervae/verdandi/internal/domain"
)

// ListCart returns the user's cart entries.
func (c *Client) ListCart(ctx context.Context, email string) ([]domain.CartEntry, error) {
	var entries []domain.CartEntry
	path := "/cart?email=" + url.QueryEscape(email)
	if err := c.get(ctx, "gateway.ListCart", path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddCartEntry creates a cart entry at the gateway and returns it with its
// assigned ID.
func (c *Client) AddCartEntry(ctx context.Context, entry domain.CartEntry) (domain.CartEntry, error) {
	var created domain.CartEntry
	err := c.do(ctx, "gateway.AddCartEntry", http.MethodPost, "/cart", entry, &created)
	if err != nil {
		return domain.CartEntry{}, err
	}
	return created, nil
}

// UpdateCartEntry sets the quantity of an existing entry.
func (c *Client) UpdateCartEntry(ctx context.Context, entryID string, quantity int) error {
	body := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}
	return c.do(ctx, "gateway.UpdateCartEntry", http.MethodPatch, "/cart/"+entryID, body, nil)
}

// DeleteCartEntry removes an entry from the user's cart.
func (c *Client) DeleteCartEntry(ctx context.Context, entryID string) error {
	return c.do(ctx, "gateway.DeleteCartEntry", http.MethodDelete, "/cart/"+entryID, nil, nil)
}
