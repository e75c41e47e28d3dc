package reply

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// Module exposes the reply resource under /replies. A reply has no agency
// column of its own; tenant scoping goes through the owning ticket via a
// ticket-id subquery. Internal replies are visible to staff only.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Reply, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the reply resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Reply, uuid.UUID](db)
	tickets := crud.NewRepository[domain.Ticket, uuid.UUID](db)

	ticketGuard := func(c *gin.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
		ticket, err := tickets.GetByID(c.Request.Context(), ticketID)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewAppError(domain.CodeValidation, "ticket does not exist", nil)
			}
			return nil, err
		}

		actor, ok := identity.FromContext(c)
		if !ok {
			return nil, domain.ErrUnauthorized
		}
		if actor.IsAdmin() {
			return ticket, nil
		}
		if actor.IsAgent() || actor.APIKey {
			if actor.AgencyID == nil {
				return nil, domain.NewAppError(domain.CodeUnauthorized, "agent not authorized: no agency assigned", nil)
			}
			if ticket.AgencyID != *actor.AgencyID {
				return nil, domain.NewAppError(domain.CodeUnauthorized, "agent not authorized for this agency", nil)
			}
			return ticket, nil
		}
		// Requesters may only touch replies on their own tickets.
		if ticket.CreatedBy == nil || *ticket.CreatedBy != actor.UserID {
			return nil, domain.ErrNotFound
		}
		return ticket, nil
	}

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Reply, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(r *domain.Reply) uuid.UUID { return r.ID },
		SearchFields: []string{"Content"},
		Includes:     []string{"User"},
		SortFields:   []string{"create_time"},
		DefaultSort:  "id ASC",
		BaseQuery: func(c *gin.Context, req crud.Request) (*gorm.DB, error) {
			actor, ok := identity.FromContext(c)
			if !ok {
				return nil, domain.ErrUnauthorized
			}

			q := repo.Query(c.Request.Context(), "User")
			ticketIDs := db.Model(&domain.Ticket{}).Select("id")
			switch {
			case actor.IsAdmin():
				// Unrestricted.
			case actor.IsAgent() || actor.APIKey:
				if actor.AgencyID == nil {
					return nil, domain.NewAppError(domain.CodeUnauthorized, "agent not authorized: no agency assigned", nil)
				}
				q = q.Where("ticket_id IN (?)", ticketIDs.Where("agency_id = ?", *actor.AgencyID))
			default:
				q = q.Where("ticket_id IN (?)", ticketIDs.Where("created_by = ?", actor.UserID)).
					Where("is_internal = ?", false)
			}

			if v := req.Filter("ticketId"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, domain.NewAppError(domain.CodeValidation, "invalid ticketId filter", err)
				}
				q = q.Where("ticket_id = ?", id)
			}
			return q, nil
		},
		Authorize: func(c *gin.Context, r *domain.Reply) error {
			if _, err := ticketGuard(c, r.TicketID); err != nil {
				return err
			}
			// Internal replies stay invisible to requesters.
			actor, _ := identity.FromContext(c)
			if actor != nil && !actor.IsAdmin() && !actor.IsAgent() && !actor.APIKey && r.IsInternal {
				return domain.ErrNotFound
			}
			return nil
		},
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Reply, error) {
			actor, ok := identity.FromContext(c)
			if !ok {
				return nil, domain.ErrUnauthorized
			}
			if dto.IsInternal && !actor.IsAdmin() && !actor.IsAgent() {
				return nil, domain.NewAppError(domain.CodeUnauthorized, "staff role required for internal replies", nil)
			}
			return &domain.Reply{
				TicketID:       dto.TicketID,
				UserID:         actor.UserRef(),
				Content:        dto.Content,
				IsInternal:     dto.IsInternal,
				IsChatbotReply: actor.APIKey,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, r *domain.Reply) error {
			actor, _ := identity.FromContext(c)
			if dto.IsInternal && actor != nil && !actor.IsAdmin() && !actor.IsAgent() {
				return domain.NewAppError(domain.CodeUnauthorized, "staff role required for internal replies", nil)
			}
			r.Content = dto.Content
			r.IsInternal = dto.IsInternal
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Reply, CreateRequest, EditRequest]{
		BeforeCreateEntity: func(c *gin.Context, r *domain.Reply) error {
			_, err := ticketGuard(c, r.TicketID)
			return err
		},
	})

	return &Module{resource: resource, mw: mw}
}

// RegisterRoutes registers the reply routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/replies")
	g.Use(m.mw...)
	m.resource.Register(g)
}
