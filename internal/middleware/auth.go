package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/jwt"

	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
	"github.com/openhelpdesk/helpdesk/internal/pkg"
)

// UserLookup resolves a user id from a validated token to the current user
// record. The user module's store satisfies it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Auth returns a gin middleware that authenticates requests via a Bearer JWT.
//
// On success the request actor (user id, role, agency) is attached to the
// context for handlers and tenant scoping. The user record is loaded on every
// request so role or agency changes take effect without waiting for token
// expiry. Requests without a valid token are rejected with 401.
func Auth(jwtSvc jwt.Service, users UserLookup) gin.HandlerFunc {
	return authWithMode(jwtSvc, users, true)
}

// OptionalAuth behaves like Auth but lets unauthenticated requests through
// without an actor. Routes that serve both anonymous and signed-in callers
// (the public FAQ lookup) use it; a present-but-invalid token is still
// rejected rather than silently downgraded to anonymous.
func OptionalAuth(jwtSvc jwt.Service, users UserLookup) gin.HandlerFunc {
	return authWithMode(jwtSvc, users, false)
}

func authWithMode(jwtSvc jwt.Service, users UserLookup, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			if required {
				pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "missing bearer token", nil))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		parsed, err := jwtSvc.ValidateAndParse(token)
		if err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "invalid token", err))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(parsed.UserID)
		if err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "invalid token subject", err))
			c.Abort()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if domain.IsNotFound(err) {
				pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "user no longer exists", nil))
			} else {
				pkg.Error(c, err)
			}
			c.Abort()
			return
		}

		identity.Set(c, &identity.Actor{
			UserID:   user.ID,
			Roles:    []string{user.Role},
			AgencyID: user.AgencyID,
		})
		c.Next()
	}
}

// RequireAdmin returns a middleware that rejects non-admin actors with 401.
// It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := identity.FromContext(c)
		if !ok || !actor.IsAdmin() {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "admin role required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff returns a middleware that rejects actors that are neither
// staff (agent, manager) nor admin. It must run after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := identity.FromContext(c)
		if !ok || (!actor.IsAdmin() && !actor.IsAgent()) {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "staff role required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
