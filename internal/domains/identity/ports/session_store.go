package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-storefront/internal/domains/identity/domain"
)

// ErrSessionNotFound is returned when no session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes expired sessions and reports how many were deleted.
	PurgeExpired(ctx context.Context) (int64, error)
}
