// Package cookie centralizes cookie handling so every session cookie carries
// the same security attributes.
package cookie

import "net/http"

// Config holds the attributes shared by all cookies the app sets.
type Config struct {
	// Secure requires HTTPS. True in production, false in development.
	Secure bool
}

func NewConfig(secure bool) *Config {
	return &Config{Secure: secure}
}

// Set writes a cookie with HttpOnly, SameSite=Lax and the configured Secure
// flag. maxAge is in seconds.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes a cookie by expiring it immediately.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the cookie value or the empty string when it is absent.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Cookie names used throughout the app.
const (
	// GuestCartCookieName holds the anonymous session ID keying the guest
	// cart store.
	GuestCartCookieName = "verdandi_guest"
)
