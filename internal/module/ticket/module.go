package ticket

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes the ticket resource under /tickets. Tickets are always
// agency-partitioned: staff see their own agency, admins see everything, and
// plain users see only tickets they opened.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Ticket, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the ticket resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Ticket, uuid.UUID](db)
	agencies := crud.NewRepository[domain.Agency, uuid.UUID](db)
	categories := crud.NewRepository[domain.Category, uuid.UUID](db)

	includes := []string{"Category", "Agency", "CreatedByUser", "AssignedToUser"}

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Ticket, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(t *domain.Ticket) uuid.UUID { return t.ID },
		SearchFields: []string{"Title", "Description", "Status"},
		Includes:     includes,
		SortFields:   []string{"title", "status", "priority", "create_time"},
		BaseQuery: func(c *gin.Context, req crud.Request) (*gorm.DB, error) {
			actor, _ := identity.FromContext(c)
			scope, err := crud.ScopeByAgency(actor, "agency_id")
			if err != nil {
				return nil, err
			}
			q := repo.Query(c.Request.Context(), includes...).Scopes(scope)
			if actor != nil && !actor.IsAdmin() && !actor.IsAgent() && !actor.APIKey {
				q = q.Where("created_by = ?", actor.UserID)
			}
			if v := req.Filter("agencyId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid agencyId filter", err)
				}
				q = q.Where("agency_id = ?", id)
			}
			if v := req.Filter("categoryId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid categoryId filter", err)
				}
				q = q.Where("category_id = ?", id)
			}
			if v := req.Filter("status"); v != "" {
				q = q.Where("status = ?", v)
			}
			if v := req.Filter("priority"); v != "" {
				q = q.Where("priority = ?", v)
			}
			return q, nil
		},
		Authorize: authorize,
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Ticket, error) {
			actor, ok := identity.FromContext(c)
			if !ok {
				return nil, domain.ErrUnauthorized
			}

			// Agents open tickets in their own agency regardless of the
			// payload; admins may target any agency.
			agencyID, err := crud.EffectiveAgencyID(actor, dto.AgencyID)
			if err != nil {
				return nil, err
			}

			priority := dto.Priority
			if priority == "" {
				priority = domain.TicketPriorityMedium
			}

			return &domain.Ticket{
				Title:                 dto.Title,
				Description:           dto.Description,
				Status:                domain.TicketStatusOpen,
				Priority:              priority,
				CategoryID:            dto.CategoryID,
				AgencyID:              agencyID,
				CreatedBy:             actor.UserRef(),
				AssignedTo:            dto.AssignedTo,
				OriginatedFromChatbot: actor.APIKey,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, t *domain.Ticket) error {
			t.Title = dto.Title
			t.Description = dto.Description
			t.Status = dto.Status
			t.Priority = dto.Priority
			t.CategoryID = dto.CategoryID
			t.AssignedTo = dto.AssignedTo
			// AgencyID and CreatedBy are fixed at creation.
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Ticket, CreateRequest, EditRequest]{
		BeforeCreateEntity: func(c *gin.Context, t *domain.Ticket) error {
			return checkReferences(c, agencies, categories, t)
		},
		BeforeUpdateEntity: func(c *gin.Context, t *domain.Ticket) error {
			return checkReferences(c, agencies, categories, t)
		},
	})

	return &Module{resource: resource, mw: mw}
}

var agencyGuard = crud.AgencyGuard(func(t *domain.Ticket) uuid.UUID { return t.AgencyID })

func authorize(c *gin.Context, t *domain.Ticket) error {
	if err := agencyGuard(c, t); err != nil {
		return err
	}
	// Requesters may only touch tickets they opened. Not-found rather than
	// unauthorized, so the response does not confirm the ticket exists.
	actor, _ := identity.FromContext(c)
	if actor != nil && !actor.IsAdmin() && !actor.IsAgent() && !actor.APIKey &&
		(t.CreatedBy == nil || *t.CreatedBy != actor.UserID) {
		return domain.ErrNotFound
	}
	return nil
}

// checkReferences verifies the agency exists and the category both exists and
// belongs to the ticket's agency.
func checkReferences(c *gin.Context, agencies crud.Repository[domain.Agency, uuid.UUID], categories crud.Repository[domain.Category, uuid.UUID], t *domain.Ticket) error {
	ctx := c.Request.Context()

	ok, err := agencies.Exists(ctx, t.AgencyID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewAppError(domain.CodeValidation, "agency does not exist", nil)
	}

	category, err := categories.GetByID(ctx, t.CategoryID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "category does not exist", nil)
		}
		return err
	}
	if category.AgencyID != t.AgencyID {
		return domain.NewAppError(domain.CodeValidation, "category belongs to a different agency", nil)
	}
	return nil
}

// RegisterRoutes registers the ticket routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/tickets")
	g.Use(m.mw...)
	m.resource.Register(g)
}
