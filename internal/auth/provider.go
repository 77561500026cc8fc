// Package auth talks to the external identity provider. The storefront never
// sees passwords beyond passing them through; the provider issues ID tokens
// and the session state derived from them drives the rest of the app.
package auth

import (
	"context"

	"github.com/kaspervae/verdandi/internal/domain"
)

// Provider is the identity collaborator. Implementations hold the current
// session and notify subscribers whenever it changes, including the initial
// resolution from unknown to guest.
type Provider interface {
	// SignUp registers a new email/password account and signs it in.
	SignUp(ctx context.Context, email, password string) (domain.Session, error)

	// SignIn authenticates an existing email/password account.
	SignIn(ctx context.Context, email, password string) (domain.Session, error)

	// SignInWithGoogle exchanges a Google ID token for a session.
	SignInWithGoogle(ctx context.Context, googleIDToken string) (domain.Session, error)

	// SignOut drops the current session, returning to guest.
	SignOut(ctx context.Context) error

	// CurrentSession returns the session as last resolved.
	CurrentSession() domain.Session

	// Subscribe registers a session-change callback and returns its
	// unsubscribe func. The callback fires after every session transition.
	Subscribe(fn func(domain.Session)) func()
}
