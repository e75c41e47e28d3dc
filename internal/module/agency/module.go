package agency

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes the agency (tenant) resource under /agencies. Reads are
// scoped like everything else; writes are admin territory.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Agency, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the agency resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Agency, uuid.UUID](db)
	subscriptions := crud.NewRepository[domain.Subscription, uuid.UUID](db)

	checkSubscription := func(c *gin.Context, a *domain.Agency) error {
		ok, err := subscriptions.Exists(c.Request.Context(), a.SubscriptionID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewAppError(domain.CodeValidation, "subscription plan does not exist", nil)
		}
		return nil
	}

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Agency, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(a *domain.Agency) uuid.UUID { return a.ID },
		SearchFields: []string{"Name", "Domain"},
		Includes:     []string{"Subscription"},
		SortFields:   []string{"name", "domain", "create_time"},
		BaseQuery: func(c *gin.Context, req crud.Request) (*gorm.DB, error) {
			actor, _ := identity.FromContext(c)
			// Agencies are the tenant themselves: staff see only their own
			// row, admins see all.
			scope, err := crud.ScopeByAgency(actor, "id")
			if err != nil {
				return nil, err
			}
			return repo.Query(c.Request.Context(), "Subscription").Scopes(scope), nil
		},
		Authorize: crud.AgencyGuard(func(a *domain.Agency) uuid.UUID { return a.ID }),
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Agency, error) {
			if err := requireAdmin(c); err != nil {
				return nil, err
			}
			return &domain.Agency{
				Name:           dto.Name,
				Domain:         dto.Domain,
				SubscriptionID: dto.SubscriptionID,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, a *domain.Agency) error {
			if err := requireAdmin(c); err != nil {
				return err
			}
			a.Name = dto.Name
			a.Domain = dto.Domain
			a.SubscriptionID = dto.SubscriptionID
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Agency, CreateRequest, EditRequest]{
		BeforeCreateEntity: checkSubscription,
		BeforeUpdateEntity: checkSubscription,
		BeforeDelete: func(c *gin.Context, id uuid.UUID, existing *domain.Agency) error {
			if err := requireAdmin(c); err != nil {
				return err
			}
			var users int64
			if err := db.WithContext(c.Request.Context()).Model(&domain.User{}).
				Where("agency_id = ?", id).Count(&users).Error; err != nil {
				return domain.NewAppError(domain.CodeInternal, "database error", err)
			}
			if users > 0 {
				return domain.NewAppError(domain.CodeValidation, "agency still has users attached", nil)
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

// RegisterRoutes registers the agency routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/agencies")
	g.Use(m.mw...)
	m.resource.Register(g)
}
