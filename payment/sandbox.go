package payment

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxSandboxSessions bounds the sessions a Sandbox remembers. The oldest
// session is forgotten first.
const MaxSandboxSessions = 1024

// Sandbox is a local gateway that approves every valid request. Its hosted
// page is the success URL itself, so a redirect lands straight back.
type Sandbox struct {
	successURL string
	currency   string

	mu       sync.Mutex
	sessions map[string]SessionDetails
	order    []string
	max      int
}

// NewSandbox returns a sandbox redirecting to successURL. A
// {CHECKOUT_SESSION_ID} placeholder is replaced by the session id.
func NewSandbox(successURL, currency string) *Sandbox {
	return &Sandbox{
		successURL: successURL,
		currency:   currency,
		sessions:   make(map[string]SessionDetails),
		max:        MaxSandboxSessions,
	}
}

func (s *Sandbox) CreateSession(_ context.Context, req SessionRequest) (Session, error) {
	if err := req.Validate(); err != nil {
		return Session{}, wrapInvalid(err)
	}

	id := "cs_sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	s.mu.Lock()
	s.sessions[id] = SessionDetails{
		ID:            id,
		CustomerEmail: req.Email,
		AmountTotal:   total,
		Currency:      s.currency,
		Paid:          true,
	}
	s.order = append(s.order, id)
	for len(s.order) > s.max {
		delete(s.sessions, s.order[0])
		s.order = s.order[1:]
	}
	s.mu.Unlock()

	return Session{ID: id, URL: strings.ReplaceAll(s.successURL, "{CHECKOUT_SESSION_ID}", url.QueryEscape(id))}, nil
}

func (s *Sandbox) LookupSession(_ context.Context, id string) (SessionDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	details, ok := s.sessions[id]
	if !ok {
		return SessionDetails{}, ErrSessionNotFound
	}
	return details, nil
}
