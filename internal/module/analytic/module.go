package analytic

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes agent performance snapshots under /analytics.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Analytic, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the analytic resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Analytic, uuid.UUID](db)
	users := crud.NewRepository[domain.User, uuid.UUID](db)

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Analytic, CreateRequest, EditRequest, Response]{
		ParseID:    crud.UUIDKey,
		EntityID:   func(a *domain.Analytic) uuid.UUID { return a.ID },
		Includes:   []string{"Agent"},
		SortFields: []string{"tickets_resolved", "customer_satisfaction_score", "create_time"},
		BaseQuery: func(c *gin.Context, req crud.Request) (*gorm.DB, error) {
			actor, _ := identity.FromContext(c)
			scope, err := crud.ScopeByAgency(actor, "agency_id")
			if err != nil {
				return nil, err
			}
			q := repo.Query(c.Request.Context(), "Agent").Scopes(scope)
			if v := req.Filter("agencyId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid agencyId filter", err)
				}
				q = q.Where("agency_id = ?", id)
			}
			if v := req.Filter("agentId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid agentId filter", err)
				}
				q = q.Where("agent_id = ?", id)
			}
			return q, nil
		},
		Authorize: crud.AgencyGuard(func(a *domain.Analytic) uuid.UUID { return a.AgencyID }),
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Analytic, error) {
			actor, _ := identity.FromContext(c)
			agencyID, err := crud.EffectiveAgencyID(actor, dto.AgencyID)
			if err != nil {
				return nil, err
			}
			return &domain.Analytic{
				AgentID:                   dto.AgentID,
				AgencyID:                  agencyID,
				TicketsResolved:           dto.TicketsResolved,
				AverageResponseTime:       dto.AverageResponseTime,
				CustomerSatisfactionScore: dto.CustomerSatisfactionScore,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, a *domain.Analytic) error {
			a.TicketsResolved = dto.TicketsResolved
			a.AverageResponseTime = dto.AverageResponseTime
			a.CustomerSatisfactionScore = dto.CustomerSatisfactionScore
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Analytic, CreateRequest, EditRequest]{
		BeforeCreateEntity: func(c *gin.Context, a *domain.Analytic) error {
			agent, err := users.GetByID(c.Request.Context(), a.AgentID)
			if err != nil {
				if domain.IsNotFound(err) {
					return domain.NewAppError(domain.CodeValidation, "agent does not exist", nil)
				}
				return err
			}
			if agent.AgencyID == nil || *agent.AgencyID != a.AgencyID {
				return domain.NewAppError(domain.CodeValidation, "agent belongs to a different agency", nil)
			}
			return nil
		},
	})

	return &Module{resource: resource, mw: mw}
}

// RegisterRoutes registers the analytic routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/analytics")
	g.Use(m.mw...)
	m.resource.Register(g)
}
