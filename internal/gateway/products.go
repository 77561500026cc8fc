package gateway

import (
	"context"

	"github.com/kaspervae/verdandi/internal/domain"
)

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "gateway.ListProducts", "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, "gateway.GetProduct", "/products/"+productID, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}
