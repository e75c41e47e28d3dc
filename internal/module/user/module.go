package user

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
	"github.com/openhelpdesk/helpdesk/internal/pkg"
)

// Module exposes user account management under /users. Accounts carry an
// optimistic-concurrency version: a stale edit is rejected with a message
// distinguishing a record deleted underneath the editor from one modified
// underneath them.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.User, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the user resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.User, uuid.UUID](db)

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.User, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(u *domain.User) uuid.UUID { return u.ID },
		SearchFields: []string{"Name", "Email", "Phone"},
		Includes:     []string{"Agency"},
		SortFields:   []string{"name", "email", "role", "create_time"},
		BaseQuery: func(c *gin.Context, req crud.Request) (*gorm.DB, error) {
			actor, _ := identity.FromContext(c)
			scope, err := crud.ScopeByAgency(actor, "agency_id")
			if err != nil {
				return nil, err
			}
			q := repo.Query(c.Request.Context(), "Agency").Scopes(scope)
			if v := req.Filter("agencyId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid agencyId filter", err)
				}
				q = q.Where("agency_id = ?", id)
			}
			if v := req.Filter("role"); v != "" {
				q = q.Where("role = ?", v)
			}
			return q, nil
		},
		Authorize: crud.AgencyGuard(func(u *domain.User) uuid.UUID {
			if u.AgencyID == nil {
				return uuid.Nil
			}
			return *u.AgencyID
		}),
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.User, error) {
			actor, _ := identity.FromContext(c)

			role := dto.Role
			if role == "" {
				role = domain.RoleUser
			}
			// Only admins hand out the admin role.
			if role == domain.RoleAdmin && !actor.IsAdmin() {
				return nil, domain.NewAppError(domain.CodeUnauthorized, "admin role required", nil)
			}

			agencyID, err := effectiveAgency(actor, dto.AgencyID)
			if err != nil {
				return nil, err
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
			}

			return &domain.User{
				Name:         strings.TrimSpace(dto.Name),
				Email:        strings.TrimSpace(dto.Email),
				Phone:        dto.Phone,
				PasswordHash: string(hash),
				Role:         role,
				AgencyID:     agencyID,
				Version:      1,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, u *domain.User) error {
			actor, _ := identity.FromContext(c)
			if dto.Role == domain.RoleAdmin && !actor.IsAdmin() {
				return domain.NewAppError(domain.CodeUnauthorized, "admin role required", nil)
			}
			agencyID, err := effectiveAgency(actor, dto.AgencyID)
			if err != nil {
				return err
			}

			u.Name = strings.TrimSpace(dto.Name)
			u.Email = strings.TrimSpace(dto.Email)
			u.Phone = dto.Phone
			u.Role = dto.Role
			u.AgencyID = agencyID
			// Carry the version the client read; persist checks it.
			u.Version = dto.Version
			return nil
		},
		ToResponse: toResponse,
		Persist: func(ctx context.Context, u *domain.User) error {
			return persistVersioned(db, ctx, u)
		},
	}, crud.Hooks[uuid.UUID, domain.User, CreateRequest, EditRequest]{})

	return &Module{resource: resource, mw: mw}
}

// effectiveAgency resolves the agency a user account is attached to: admins
// choose freely, agency staff always land in their own agency.
func effectiveAgency(actor *identity.Actor, requested *uuid.UUID) (*uuid.UUID, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return requested, nil
	}
	if actor.IsAgent() || actor.APIKey {
		if actor.AgencyID == nil {
			return nil, domain.NewAppError(domain.CodeUnauthorized, "agent not authorized: no agency assigned", nil)
		}
		return actor.AgencyID, nil
	}
	return requested, nil
}

// persistVersioned writes the user only when the stored version still matches
// the one the client read, bumping the version in the same statement. On a
// miss it re-checks existence to tell the editor what actually happened; the
// update and the diagnosis run in one transaction so they see one snapshot.
func persistVersioned(db *gorm.DB, ctx context.Context, u *domain.User) error {
	readVersion := u.Version
	err := pkg.WithTx(ctx, db, func(tx *gorm.DB) error {
		result := tx.Model(&domain.User{}).
			Where("id = ? AND version = ?", u.ID, readVersion).
			Updates(map[string]any{
				"name":      u.Name,
				"email":     u.Email,
				"phone":     u.Phone,
				"role":      u.Role,
				"agency_id": u.AgencyID,
				"version":   readVersion + 1,
			})
		if result.Error != nil {
			return domain.NewAppError(domain.CodeInternal, "database error", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.User{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
				return domain.NewAppError(domain.CodeInternal, "database error", err)
			}
			if count == 0 {
				return domain.NewAppError(domain.CodeValidation, "user was deleted by another process", nil)
			}
			return domain.NewAppError(domain.CodeValidation, "user was modified by another process", nil)
		}
		return nil
	})
	if err != nil {
		return err
	}
	u.Version = readVersion + 1
	return nil
}

// RegisterRoutes registers the user routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/users")
	g.Use(m.mw...)
	m.resource.Register(g)
}
