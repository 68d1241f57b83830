package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-storefront/cart"
	"go-storefront/storage"
)

// Key type for context
type contextKey string

const (
	CartContextKey    = contextKey("cart")
	SessionContextKey = contextKey("session")
)

// SessionCookie names the cookie holding the browser session id
const SessionCookie = "sid"

// Session attaches a browser session id and that browser's cart to every request
type Session struct {
	signer storage.Signer
	maxAge time.Duration
	log    logrus.FieldLogger
}

// NewSession returns the session middleware. Cart cookies are signed with
// signer and kept for maxAge.
func NewSession(signer storage.Signer, maxAge time.Duration, logger logrus.FieldLogger) *Session {
	return &Session{signer: signer, maxAge: maxAge, log: logger}
}

// Middleware builds a cart.Manager over the request's cookies and stores it in
// the request context together with the session id.
func (s *Session) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := s.sessionID(w, r)
		store := storage.NewCookieStore(r, w, s.signer, s.maxAge)
		manager := cart.NewManager(store, s.log.WithField("session", sid))

		ctx := context.WithValue(r.Context(), SessionContextKey, sid)
		ctx = WithCart(ctx, manager)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID reuses the id from the session cookie or issues a new one
func (s *Session) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// WithCart returns a copy of ctx carrying manager
func WithCart(ctx context.Context, manager *cart.Manager) context.Context {
	return context.WithValue(ctx, CartContextKey, manager)
}

// CartFromContext returns the cart attached by the session middleware
func CartFromContext(ctx context.Context) (*cart.Manager, bool) {
	manager, ok := ctx.Value(CartContextKey).(*cart.Manager)
	return manager, ok && manager != nil
}

// SessionIDFromContext returns the browser session id, or "" outside a session
func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(SessionContextKey).(string)
	return sid
}
