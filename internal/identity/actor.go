package identity

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// contextKey is the gin context key under which the request actor is stored.
const contextKey = "identity.actor"

// Actor identifies who is making a request and which tenant rows they may
// touch. It is attached to the gin context by the auth middleware (JWT) or
// by the API-key middleware (agency-scoped, no user).
type Actor struct {
	UserID   uuid.UUID
	Roles    []string
	AgencyID *uuid.UUID

	// APIKey is true when the actor was derived from an integration API key
	// rather than a user session.
	APIKey bool
}

// IsAdmin reports whether the actor carries the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && slices.Contains(a.Roles, domain.RoleAdmin)
}

// IsAgent reports whether the actor is agency staff (agent or manager).
func (a *Actor) IsAgent() bool {
	return a != nil && (slices.Contains(a.Roles, domain.RoleAgent) ||
		slices.Contains(a.Roles, domain.RoleManager))
}

// UserRef returns the acting user's id for author columns, or nil for
// API-key actors, which have no user row behind them.
func (a *Actor) UserRef() *uuid.UUID {
	if a == nil || a.APIKey {
		return nil
	}
	id := a.UserID
	return &id
}

// Set attaches the actor to the gin context.
func Set(c *gin.Context, a *Actor) {
	c.Set(contextKey, a)
}

// FromContext returns the actor attached to the gin context, if any.
func FromContext(c *gin.Context) (*Actor, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*Actor)
	if !ok || a == nil {
		return nil, false
	}
	return a, true
}
