package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kaspervae/verdandi/internal/domain"
)

const providerTimeout = 10 * time.Second

// RESTProvider implements Provider against an identity service shaped like
// the Firebase accounts API: accounts:signUp, accounts:signInWithPassword and
// accounts:signInWithIdp endpoints keyed by an API key.
type RESTProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	session     domain.Session
	subscribers map[int]func(domain.Session)
	nextSubID   int
}

func NewRESTProvider(baseURL, apiKey string, logger *slog.Logger) *RESTProvider {
	return &RESTProvider{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: providerTimeout},
		logger:      logger,
		session:     domain.Session{State: domain.SessionGuest},
		subscribers: make(map[int]func(domain.Session)),
	}
}

type tokenResponse struct {
	IDToken     string `json:"idToken"`
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *RESTProvider) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	const op = "auth.SignUp"
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	return p.exchange(ctx, op, "accounts:signUp", body)
}

func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	const op = "auth.SignIn"
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	return p.exchange(ctx, op, "accounts:signInWithPassword", body)
}

func (p *RESTProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (domain.Session, error) {
	const op = "auth.SignInWithGoogle"
	body := map[string]interface{}{
		"postBody":          "id_token=" + googleIDToken + "&providerId=google.com",
		"requestUri":        "http://localhost",
		"returnSecureToken": true,
	}
	return p.exchange(ctx, op, "accounts:signInWithIdp", body)
}

func (p *RESTProvider) SignOut(ctx context.Context) error {
	p.setSession(domain.Session{State: domain.SessionGuest})
	return nil
}

func (p *RESTProvider) CurrentSession() domain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *RESTProvider) Subscribe(fn func(domain.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// exchange posts the request to the provider, turns the token response into
// an authenticated session and publishes it.
func (p *RESTProvider) exchange(ctx context.Context, op, endpoint string, body interface{}) (domain.Session, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return domain.Session{}, domain.Internal(err, op, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return domain.Session{}, domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Session{}, domain.Network(err, op, "identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Session{}, mapProviderError(op, resp)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return domain.Session{}, domain.Network(err, op, "failed to decode provider response")
	}

	user := userFromToken(token)
	session := domain.Session{State: domain.SessionAuthenticated, User: &user}
	p.setSession(session)

	p.logger.Info("session established",
		slog.String("op", op),
		slog.String("email", user.Email))

	return session, nil
}

// userFromToken builds the user from the ID token's claims, falling back to
// the response envelope for anything the token omits. The token is read
// without signature verification: it arrived over TLS from the provider that
// minted it, and this client has no verification keys.
func userFromToken(token tokenResponse) domain.User {
	user := domain.User{
		ID:    token.LocalID,
		Email: token.Email,
		Name:  token.DisplayName,
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.IDToken, claims); err != nil {
		return user
	}

	if v, ok := claims["user_id"].(string); ok && v != "" {
		user.ID = v
	}
	if v, ok := claims["email"].(string); ok && v != "" {
		user.Email = v
	}
	if v, ok := claims["name"].(string); ok && v != "" {
		user.Name = v
	}
	if v, ok := claims["picture"].(string); ok {
		user.AvatarURL = v
	}
	if v, ok := claims["phone_number"].(string); ok {
		user.Phone = v
	}
	return user
}

// mapProviderError translates the provider's error envelope into domain
// errors the handlers can present.
func mapProviderError(op string, resp *http.Response) error {
	var pe providerError
	_ = json.NewDecoder(resp.Body).Decode(&pe)
	msg := pe.Error.Message

	switch {
	case msg == "EMAIL_EXISTS":
		return domain.WrapError(domain.ErrEmailInUse, domain.ECONFLICT, op, "an account with this email already exists")
	case msg == "EMAIL_NOT_FOUND",
		msg == "INVALID_PASSWORD",
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"):
		return domain.WrapError(domain.ErrInvalidCredentials, domain.EUNAUTHORIZED, op, "invalid email or password")
	case strings.HasPrefix(msg, "WEAK_PASSWORD"):
		return domain.Invalid(op, "password should be at least 6 characters")
	case strings.HasPrefix(msg, "TOO_MANY_ATTEMPTS"):
		return domain.Unauthorized(op, "too many attempts, try again later")
	default:
		return &domain.Error{
			Code:    domain.ENETWORK,
			Message: fmt.Sprintf("identity provider returned %d: %s", resp.StatusCode, msg),
			Op:      op,
		}
	}
}

func (p *RESTProvider) setSession(session domain.Session) {
	p.mu.Lock()
	p.session = session
	fns := make([]func(domain.Session), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	// Callbacks run outside the lock so a subscriber can call back into the
	// provider.
	for _, fn := range fns {
		fn(session)
	}
}
