package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kaspervae/verdandi/internal/domain"
)

// GetUser fetches the gateway's user record by email.
func (c *Client) GetUser(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	path := "/users/" + url.PathEscape(email)
	if err := c.get(ctx, "gateway.GetUser", path, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// CreateUser registers a user record at the gateway.
func (c *Client) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	var created domain.User
	err := c.do(ctx, "gateway.CreateUser", http.MethodPost, "/users", user, &created)
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// EnsureUser looks the user up by email and creates the record when the
// gateway has never seen them. Sign-in calls this so identity-provider
// accounts always have a matching gateway user.
func (c *Client) EnsureUser(ctx context.Context, user domain.User) (domain.User, error) {
	existing, err := c.GetUser(ctx, user.Email)
	if err == nil {
		return existing, nil
	}
	if domain.ErrorCode(err) != domain.ENOTFOUND {
		return domain.User{}, err
	}
	return c.CreateUser(ctx, user)
}
