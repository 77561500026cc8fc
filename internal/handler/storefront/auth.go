package storefront

import (
	"fmt"
	"html"
	"net/http"

	"github.com/kaspervae/verdandi/internal/auth"
	"github.com/kaspervae/verdandi/internal/cookie"
	"github.com/kaspervae/verdandi/internal/domain"
)

// AuthHandler serves the sign-in, sign-up and sign-out flows. The auth
// provider pushes the resulting session changes into the store; the handler
// only drives the provider and redirects.
type AuthHandler struct {
	*Base
	Provider auth.Provider
}

func NewAuthHandler(base *Base, provider auth.Provider) *AuthHandler {
	return &AuthHandler{Base: base, Provider: provider}
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderAuthForm(w, r, "Sign in", "/login", "")
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.AuthHandler.Login"

	_, err := h.Provider.SignIn(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		h.Logger.Warn("sign-in failed",
			"op", op, "code", domain.ErrorCode(err), "error", err.Error())
		h.renderAuthForm(w, r, "Sign in", "/login", domain.ErrorMessage(err))
		return
	}
	h.discardGuestCart(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowSignup handles GET /signup.
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	h.renderAuthForm(w, r, "Sign up", "/signup", "")
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.AuthHandler.Signup"

	_, err := h.Provider.SignUp(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		h.Logger.Warn("sign-up failed",
			"op", op, "code", domain.ErrorCode(err), "error", err.Error())
		h.renderAuthForm(w, r, "Sign up", "/signup", domain.ErrorMessage(err))
		return
	}
	h.discardGuestCart(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Google handles POST /auth/google. The Google sign-in widget posts the ID
// token it obtained client-side.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.AuthHandler.Google"

	_, err := h.Provider.SignInWithGoogle(r.Context(), r.FormValue("id_token"))
	if err != nil {
		h.Logger.Warn("google sign-in failed",
			"op", op, "code", domain.ErrorCode(err), "error", err.Error())
		h.renderAuthForm(w, r, "Sign in", "/login", domain.ErrorMessage(err))
		return
	}
	h.discardGuestCart(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.AuthHandler.Logout"

	if err := h.Provider.SignOut(r.Context()); err != nil {
		renderError(w, h.Logger, op, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// discardGuestCart drops the guest cart after a successful sign-in. The guest
// cart is not merged into the account cart; a non-empty one is logged before
// deletion so what the customer loses stays traceable. Runs only after the
// provider accepted the credentials, so a failed attempt keeps the guest cart.
func (h *AuthHandler) discardGuestCart(w http.ResponseWriter, r *http.Request) {
	sessionID := cookie.Get(r, cookie.GuestCartCookieName)
	if sessionID == "" {
		return
	}
	cart, err := h.Guest.Load(r.Context(), sessionID)
	if err == nil && len(cart.Items) > 0 {
		h.Logger.Warn("discarding guest cart on sign-in",
			"guest_session", sessionID,
			"items", cart.ItemCount())
	}
	if err := h.Guest.Delete(r.Context(), sessionID); err != nil {
		h.Logger.Warn("failed to delete guest cart",
			"guest_session", sessionID,
			"error", err.Error())
	}
	h.Cookies.Clear(w, cookie.GuestCartCookieName)
}

func (h *AuthHandler) renderAuthForm(w http.ResponseWriter, r *http.Request, title, action, errMsg string) {
	pageStart(w, title, h.Store.Session(), h.cartCount(w, r))

	fmt.Fprintf(w, "	<h1>%s</h1>\n", html.EscapeString(title))
	if errMsg != "" {
		fmt.Fprintf(w, "	<p class=\"error\">%s</p>\n", html.EscapeString(errMsg))
	}
	fmt.Fprintf(w, `	<form method="post" action="%s">
		<label>Email <input type="email" name="email" required></label>
		<label>Password <input type="password" name="password" required></label>
		<button type="submit">%s</button>
	</form>
	<form method="post" action="/auth/google">
		<input type="hidden" name="id_token" value="">
		<button type="submit">Continue with Google</button>
	</form>
`, action, html.EscapeString(title))
	pageEnd(w)
}
