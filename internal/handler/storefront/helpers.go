package storefront

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/kaspervae/verdandi/internal/domain"
)

const storeName = "Verdandi"

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ENETWORK:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// renderError logs the error and writes a small error page with the
// user-presentable message.
func renderError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	logger.Error("request failed",
		slog.String("op", op),
		slog.String("code", domain.ErrorCode(err)),
		slog.String("error", err.Error()))

	status := statusForCode(domain.ErrorCode(err))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Something went wrong - %s</title></head>
<body>
	<h1>Something went wrong</h1>
	<p>%s</p>
	<p><a href="/">Back to the shop</a></p>
</body>
</html>
`, storeName, html.EscapeString(domain.ErrorMessage(err)))
}

// pageStart writes the shared page head and navigation. cartCount is shown
// in the cart link; session decides between the sign-in link and the
// sign-out form.
func pageStart(w http.ResponseWriter, title string, session domain.Session, cartCount int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s - %s</title></head>
<body>
	<nav>
		<a href="/">%s</a>
		<a href="/products">Products</a>
		<a href="/cart">Cart (%d)</a>
		<a href="/orders">Orders</a>
		<a href="/development">Development</a>
		<a href="/graphic-design">Graphic Design</a>
		<a href="/about">About</a>
		<a href="/contact">Contact</a>
`, html.EscapeString(title), storeName, storeName, cartCount)

	if session.SignedIn() {
		fmt.Fprintf(w, `		<span>%s</span>
		<form method="post" action="/logout"><button type="submit">Sign out</button></form>
`, html.EscapeString(displayName(session)))
	} else {
		fmt.Fprint(w, `		<a href="/login">Sign in</a>
		<a href="/signup">Sign up</a>
`)
	}

	fmt.Fprint(w, "	</nav>\n")
}

// pageEnd closes the shell opened by pageStart.
func pageEnd(w http.ResponseWriter) {
	fmt.Fprintf(w, `	<footer><p>&copy; %d %s</p></footer>
</body>
</html>
`, time.Now().Year(), storeName)
}

func displayName(session domain.Session) string {
	if session.User == nil {
		return ""
	}
	if session.User.Name != "" {
		return session.User.Name
	}
	return session.User.Email
}
