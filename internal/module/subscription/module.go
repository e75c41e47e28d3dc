package subscription

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes the subscription plan catalog under /subscriptions. Plans
// are global, not agency-partitioned, so no tenant scope applies. Writes
// stay admin-only.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Subscription, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the subscription resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Subscription, uuid.UUID](db)

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Subscription, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(s *domain.Subscription) uuid.UUID { return s.ID },
		SearchFields: []string{"PlanName", "Features"},
		SortFields:   []string{"plan_name", "price", "create_time"},
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Subscription, error) {
			if err := requireAdmin(c); err != nil {
				return nil, err
			}
			return &domain.Subscription{
				PlanName: dto.PlanName,
				Price:    dto.Price,
				Features: dto.Features,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, s *domain.Subscription) error {
			if err := requireAdmin(c); err != nil {
				return err
			}
			s.PlanName = dto.PlanName
			s.Price = dto.Price
			s.Features = dto.Features
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Subscription, CreateRequest, EditRequest]{
		BeforeDelete: func(c *gin.Context, id uuid.UUID, existing *domain.Subscription) error {
			if err := requireAdmin(c); err != nil {
				return err
			}
			var agencies int64
			if err := db.WithContext(c.Request.Context()).Model(&domain.Agency{}).
				Where("subscription_id = ?", id).Count(&agencies).Error; err != nil {
				return domain.NewAppError(domain.CodeInternal, "database error", err)
			}
			if agencies > 0 {
				return domain.NewAppError(domain.CodeValidation, "plan still has agencies subscribed", nil)
			}
			return nil
		},
	})

	return &Module{resource: resource, mw: mw}
}

func requireAdmin(c *gin.Context) error {
	actor, ok := identity.FromContext(c)
	if !ok || !actor.IsAdmin() {
		return domain.NewAppError(domain.CodeUnauthorized, "admin role required", nil)
	}
	return nil
}

// RegisterRoutes registers the subscription routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/subscriptions")
	g.Use(m.mw...)
	m.resource.Register(g)
}
