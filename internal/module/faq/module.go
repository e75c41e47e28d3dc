package faq

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes the FAQ resource under /faqs. Reading is open to any actor,
// including anonymous integrations presenting an API key, which are pinned to
// the key's agency. Writes are staff-only via the middleware stack.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.FAQ, CreateRequest, EditRequest, Response]
	readMW   []gin.HandlerFunc
	writeMW  []gin.HandlerFunc
}

// NewModule builds the FAQ resource. readMW guards the list and get routes,
// writeMW the mutations.
func NewModule(db *gorm.DB, readMW, writeMW []gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.FAQ, uuid.UUID](db)
	agencies := crud.NewRepository[domain.Agency, uuid.UUID](db)

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.FAQ, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(f *domain.FAQ) uuid.UUID { return f.ID },
		SearchFields: []string{"Question", "Answer"},
		SortFields:   []string{"question", "create_time"},
		BaseQuery: func(c *gin.Context, req crud.Request) (*gorm.DB, error) {
			actor, _ := identity.FromContext(c)
			scope, err := crud.ScopeByAgency(actor, "agency_id")
			if err != nil {
				return nil, err
			}
			q := repo.Query(c.Request.Context()).Scopes(scope)
			if v := req.Filter("agencyId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid agencyId filter", err)
				}
				q = q.Where("agency_id = ?", id)
			}
			return q, nil
		},
		Authorize: crud.AgencyGuard(func(f *domain.FAQ) uuid.UUID { return f.AgencyID }),
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.FAQ, error) {
			actor, _ := identity.FromContext(c)
			agencyID, err := crud.EffectiveAgencyID(actor, dto.AgencyID)
			if err != nil {
				return nil, err
			}
			return &domain.FAQ{
				Question: dto.Question,
				Answer:   dto.Answer,
				AgencyID: agencyID,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, f *domain.FAQ) error {
			f.Question = dto.Question
			f.Answer = dto.Answer
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.FAQ, CreateRequest, EditRequest]{
		BeforeCreateEntity: func(c *gin.Context, f *domain.FAQ) error {
			ok, err := agencies.Exists(c.Request.Context(), f.AgencyID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.NewAppError(domain.CodeValidation, "agency does not exist", nil)
			}
			return nil
		},
	})

	return &Module{resource: resource, readMW: readMW, writeMW: writeMW}
}

// RegisterRoutes registers the FAQ routes with split read/write guards.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/faqs")

	read := g.Group("")
	read.Use(m.readMW...)
	read.GET("", m.resource.List)
	read.GET("/:id", m.resource.Get)

	write := g.Group("")
	write.Use(m.writeMW...)
	write.POST("", m.resource.Create)
	write.PUT("/:id", m.resource.Update)
	write.DELETE("/:id", m.resource.Delete)
}
