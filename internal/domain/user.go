package domain

// User-related domain errors.
var (
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrEmailInUse         = &Error{Code: ECONFLICT, Message: "An account with this email already exists"}
)

// User is the authenticated identity as reported by the auth provider and
// mirrored by the remote gateway.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// SessionState describes where the UI stands with respect to identity.
// The only transitions are unknown -> {guest, authenticated},
// guest -> authenticated (sign-in) and authenticated -> guest (sign-out);
// all of them are driven by the auth provider's notifications.
type SessionState int

const (
	// SessionUnknown is the state before the auth provider has reported
	// anything (app start, persisted session not yet resolved).
	SessionUnknown SessionState = iota

	// SessionGuest means no identity: the visitor uses the guest cart.
	SessionGuest

	// SessionAuthenticated means a signed-in user with a gateway-backed cart.
	SessionAuthenticated
)

// String implements fmt.Stringer for logging.
func (s SessionState) String() string {
	switch s {
	case SessionGuest:
		return "guest"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session couples the session state with the identity, if any.
type Session struct {
	State SessionState
	User  *User
}

// SignedIn reports whether the session carries an authenticated identity.
func (s Session) SignedIn() bool {
	return s.State == SessionAuthenticated && s.User != nil
}
