package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/go-gin-storefront/internal/domains/identity/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/identity/ports"
)

// Service resolves bearer tokens through a session store.
type Service struct {
	store ports.SessionStore
	now   func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store ports.SessionStore, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" || s.store == nil {
		return domain.Principal{}, ErrUnauthenticated
	}
	session, err := s.store.Lookup(ctx, token)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return domain.Principal{}, ErrUnauthenticated
	}
	if err != nil {
		return domain.Principal{}, err
	}
	if session.Expired(s.now()) {
		return domain.Principal{}, ErrUnauthenticated
	}
	return session.Principal(), nil
}

// SeedStaticTokens parses "token:userId[:role]" entries separated by commas and saves them
// as non-expiring sessions.
func SeedStaticTokens(ctx context.Context, store ports.SessionStore, raw string) (int, error) {
	seeded := 0
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return seeded, fmt.Errorf("%w: malformed token entry %q", ErrInvalidInput, entry)
		}
		var roleName string
		if len(parts) == 3 {
			roleName = parts[2]
		}
		role, err := domain.ParseRole(roleName)
		if err != nil {
			return seeded, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		session, err := domain.NewSession(parts[0], parts[1], role, nil)
		if err != nil {
			return seeded, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if err := store.Save(ctx, *session); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

var _ ports.Authenticator = (*Service)(nil)
