package storefront

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/kaspervae/verdandi/internal/cookie"
)

const guestCartMaxAge = 30 * 24 * 60 * 60 // seconds

// guestSessionID returns the visitor's guest cart ID, minting and setting a
// new one when the cookie is absent.
func guestSessionID(w http.ResponseWriter, r *http.Request, cookies *cookie.Config) string {
	if id := cookie.Get(r, cookie.GuestCartCookieName); id != "" {
		return id
	}
	id := uuid.New().String()
	cookies.Set(w, cookie.GuestCartCookieName, id, guestCartMaxAge)
	return id
}
