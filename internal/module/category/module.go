package category

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes the category resource under /categories.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Category, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the category resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Category, uuid.UUID](db)
	agencies := crud.NewRepository[domain.Agency, uuid.UUID](db)

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Category, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(cat *domain.Category) uuid.UUID { return cat.ID },
		SearchFields: []string{"Name", "Description"},
		Includes:     []string{"Agency"},
		SortFields:   []string{"name", "create_time"},
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
			return q, nil
		},
		Authorize: crud.AgencyGuard(func(cat *domain.Category) uuid.UUID { return cat.AgencyID }),
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Category, error) {
			actor, _ := identity.FromContext(c)
			agencyID, err := crud.EffectiveAgencyID(actor, dto.AgencyID)
			if err != nil {
				return nil, err
			}
			return &domain.Category{
				Name:        dto.Name,
				Description: dto.Description,
				AgencyID:    agencyID,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, cat *domain.Category) error {
			cat.Name = dto.Name
			cat.Description = dto.Description
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Category, CreateRequest, EditRequest]{
		BeforeCreateEntity: func(c *gin.Context, cat *domain.Category) error {
			ok, err := agencies.Exists(c.Request.Context(), cat.AgencyID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.NewAppError(domain.CodeValidation, "agency does not exist", nil)
			}
			return nil
		},
	})

	return &Module{resource: resource, mw: mw}
}

// RegisterRoutes registers the category routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/categories")
	g.Use(m.mw...)
	m.resource.Register(g)
}
