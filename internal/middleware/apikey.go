package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
	"github.com/openhelpdesk/helpdesk/internal/pkg"
)

const apiKeyHeader = "X-Api-Key"

// IntegrationLookup resolves an API key to its integration record. The
// integration module's store satisfies it.
type IntegrationLookup interface {
	GetByAPIKey(ctx context.Context, key string) (*domain.Integration, error)
}

// APIKey returns a gin middleware that authenticates anonymous integrations
// (chatbot widgets, embedded FAQ search) via the X-Api-Key header. A valid
// key yields an agency-scoped actor with no user attached.
//
// When the header is absent the request passes through untouched so the
// middleware can be stacked with OptionalAuth on public routes. A present
// but unknown or disabled key is rejected with 401.
func APIKey(integrations IntegrationLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		integration, err := integrations.GetByAPIKey(c.Request.Context(), key)
		if err != nil {
			if domain.IsNotFound(err) {
				pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "invalid api key", nil))
			} else {
				pkg.Error(c, err)
			}
			c.Abort()
			return
		}
		if !integration.Enabled {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "api key disabled", nil))
			c.Abort()
			return
		}

		agencyID := integration.AgencyID
		identity.Set(c, &identity.Actor{
			AgencyID: &agencyID,
			APIKey:   true,
		})
		c.Next()
	}
}

// RequireActor returns a middleware that rejects requests that reached the
// handler without any actor, however authenticated. It runs after the
// OptionalAuth and APIKey middlewares on routes that accept either.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.FromContext(c); !ok {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "authentication required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
