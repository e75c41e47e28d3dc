package crud

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// ScopeByAgency returns a GORM scope restricting rows to the agencies the
// actor may see, applied to the given agency-id column.
//
//   - Admins see every row.
//   - Agents and managers see only their own agency; an agent with no agency
//     assigned is an authorization error, not an empty result.
//   - API-key actors see the agency the key belongs to.
//   - Plain authenticated users are not restricted here; resources that need
//     per-user visibility narrow further in their base query.
//   - A nil actor is an authorization error.
func ScopeByAgency(actor *identity.Actor, column string) (func(*gorm.DB) *gorm.DB, error) {
	pass := func(db *gorm.DB) *gorm.DB { return db }

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return pass, nil
	}
	if actor.IsAgent() || actor.APIKey {
		if actor.AgencyID == nil {
			return nil, domain.NewAppError(domain.CodeUnauthorized, "agent not authorized: no agency assigned", nil)
		}
		agencyID := *actor.AgencyID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" = ?", agencyID)
		}, nil
	}
	return pass, nil
}

// EffectiveAgencyID resolves the agency a create payload lands in. Admins may
// create for any agency; agents always create within their own, overriding
// whatever the client sent.
func EffectiveAgencyID(actor *identity.Actor, requested uuid.UUID) (uuid.UUID, error) {
	if actor == nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return requested, nil
	}
	if actor.IsAgent() || actor.APIKey {
		if actor.AgencyID == nil {
			return uuid.Nil, domain.NewAppError(domain.CodeUnauthorized, "agent not authorized: no agency assigned", nil)
		}
		return *actor.AgencyID, nil
	}
	return requested, nil
}

// AgencyGuard builds an authorization check for single-entity operations:
// agents may only touch entities belonging to their own agency. getAgency
// extracts the entity's agency id.
func AgencyGuard[E any](getAgency func(*E) uuid.UUID) func(*gin.Context, *E) error {
	return func(c *gin.Context, entity *E) error {
		actor, ok := identity.FromContext(c)
		if !ok {
			return domain.ErrUnauthorized
		}
		if actor.IsAdmin() {
			return nil
		}
		if actor.IsAgent() || actor.APIKey {
			if actor.AgencyID == nil {
				return domain.NewAppError(domain.CodeUnauthorized, "agent not authorized: no agency assigned", nil)
			}
			if getAgency(entity) != *actor.AgencyID {
				return domain.NewAppError(domain.CodeUnauthorized, "agent not authorized for this agency", nil)
			}
		}
		return nil
	}
}
