package storefrontserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	identityapp "github.com/Apurer/go-gin-storefront/internal/domains/identity/application"
	identitydomain "github.com/Apurer/go-gin-storefront/internal/domains/identity/domain"
	identityports "github.com/Apurer/go-gin-storefront/internal/domains/identity/ports"
	apierrors "github.com/Apurer/go-gin-storefront/internal/shared/errors"
)

const principalKey = "storefront.principal"

// RequireAuth resolves the bearer token and stores the principal on the context.
func RequireAuth(auth identityports.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || auth == nil {
			abortProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}
		principal, err := auth.Authenticate(c.Request.Context(), token)
		if errors.Is(err, identityapp.ErrUnauthenticated) {
			abortProblem(c, apierrors.ErrUnauthorized.WithDetail("invalid or expired token"))
			return
		}
		if err != nil {
			abortProblem(c, apierrors.ErrInternal.WithDetail("unable to resolve identity"))
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin rejects principals without the ADMIN role. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok {
			abortProblem(c, apierrors.ErrUnauthorized.WithDetail("missing identity"))
			return
		}
		if !principal.IsAdmin() {
			abortProblem(c, apierrors.ErrForbidden.WithDetail("admin role required"))
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (identitydomain.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return identitydomain.Principal{}, false
	}
	principal, ok := value.(identitydomain.Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
	c.Abort()
}
