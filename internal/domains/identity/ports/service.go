package ports

import (
	"context"

	"github.com/Apurer/go-gin-storefront/internal/domains/identity/domain"
)

// Authenticator resolves bearer tokens to principals (inbound port).
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}
