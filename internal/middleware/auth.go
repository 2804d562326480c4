package middleware

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/pkg/logging"
)

const (
	// HeaderClerkUserID carries the identity-provider user id in header mode
	HeaderClerkUserID = "X-Clerk-User-Id"

	identityKey = "identityID"
	userKey     = "user"
)

// IdentityResolver extracts the identity-provider user id from a request.
// An empty id with a nil error means the request carries no identity.
type IdentityResolver func(c echo.Context) (string, error)

// TokenVerifier is satisfied by *auth.Client
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Authenticator resolves an identity id to the local user
type Authenticator interface {
	Authenticate(ctx context.Context, identityID string) (*models.User, error)
}

// HeaderIdentity reads the identity id set by the upstream identity provider
func HeaderIdentity() IdentityResolver {
	return func(c echo.Context) (string, error) {
		return strings.TrimSpace(c.Request().Header.Get(HeaderClerkUserID)), nil
	}
}

// FirebaseIdentity verifies a Bearer Firebase ID token and returns its UID
func FirebaseIdentity(verifier TokenVerifier) IdentityResolver {
	return func(c echo.Context) (string, error) {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return "", nil
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			return "", apperr.Unauthorized("Authorization header must be in Bearer format")
		}

		token, err := verifier.VerifyIDToken(c.Request().Context(), tokenParts[1])
		if err != nil {
			logging.Ctx(c.Request().Context()).Debug().Err(err).Msg("id token rejected")
			return "", apperr.Unauthorized("Invalid or expired ID token")
		}
		return token.UID, nil
	}
}

// Identify stores the resolved identity id in the echo context. It does not require a local user.
func Identify(resolve IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolve(c)
			if err != nil {
				return err
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// RequireUser rejects requests whose identity does not map to a local user
func RequireUser(users Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := users.Authenticate(c.Request().Context(), IdentityID(c))
			if err != nil {
				return err
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// IdentityID returns the identity id set by Identify, or ""
func IdentityID(c echo.Context) string {
	id, _ := c.Get(identityKey).(string)
	return id
}

// CurrentUser returns the user set by RequireUser, or nil
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}
