package integration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

// apiKeyBytes is the entropy of a generated key; hex-encoded it fits the
// 64-char column.
const apiKeyBytes = 32

// Store resolves API keys for the API-key middleware.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetByAPIKey fetches an integration by its key.
func (s *Store) GetByAPIKey(ctx context.Context, key string) (*domain.Integration, error) {
	var integration domain.Integration
	if err := s.db.WithContext(ctx).First(&integration, "api_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	return &integration, nil
}

// Module exposes the integration resource under /integrations. Creating one
// mints the API key anonymous clients later present in X-Api-Key.
type Module struct {
	resource *crud.Resource[uuid.UUID, domain.Integration, CreateRequest, EditRequest, Response]
	mw       []gin.HandlerFunc
}

// NewModule builds the integration resource. mw guards every route.
func NewModule(db *gorm.DB, mw ...gin.HandlerFunc) *Module {
	repo := crud.NewRepository[domain.Integration, uuid.UUID](db)
	agencies := crud.NewRepository[domain.Agency, uuid.UUID](db)

	resource := crud.NewResource(repo, crud.Options[uuid.UUID, domain.Integration, CreateRequest, EditRequest, Response]{
		ParseID:      crud.UUIDKey,
		EntityID:     func(i *domain.Integration) uuid.UUID { return i.ID },
		SearchFields: []string{"Name"},
		SortFields:   []string{"name", "create_time"},
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
		Authorize: crud.AgencyGuard(func(i *domain.Integration) uuid.UUID { return i.AgencyID }),
		NewEntity: func(c *gin.Context, dto *CreateRequest) (*domain.Integration, error) {
			actor, _ := identity.FromContext(c)
			agencyID, err := crud.EffectiveAgencyID(actor, dto.AgencyID)
			if err != nil {
				return nil, err
			}
			key, err := generateAPIKey()
			if err != nil {
				return nil, err
			}
			return &domain.Integration{
				Name:     dto.Name,
				APIKey:   key,
				AgencyID: agencyID,
				Enabled:  true,
			}, nil
		},
		ApplyUpdate: func(c *gin.Context, dto *EditRequest, i *domain.Integration) error {
			i.Name = dto.Name
			i.Enabled = *dto.Enabled
			return nil
		},
		ToResponse: toResponse,
	}, crud.Hooks[uuid.UUID, domain.Integration, CreateRequest, EditRequest]{
		BeforeCreateEntity: func(c *gin.Context, i *domain.Integration) error {
			ok, err := agencies.Exists(c.Request.Context(), i.AgencyID)
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

// generateAPIKey mints a random key.
func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to generate api key", err)
	}
	return hex.EncodeToString(b), nil
}

// RegisterRoutes registers the integration routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/integrations")
	g.Use(m.mw...)
	m.resource.Register(g)
}
