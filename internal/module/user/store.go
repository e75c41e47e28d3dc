package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/crud"
	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// Store wraps the user repository with the email and id lookups the auth
// service and the auth middleware need.
type Store struct {
	db   *gorm.DB
	repo crud.Repository[domain.User, uuid.UUID]
}

// NewStore creates a Store backed by the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, repo: crud.NewRepository[domain.User, uuid.UUID](db)}
}

// Create inserts a new user.
func (s *Store) Create(ctx context.Context, u *domain.User) error {
	return s.repo.Create(ctx, u)
}

// GetUserByID fetches a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail fetches a user by email address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewAppError(domain.CodeInternal, "database error", err)
	}
	return &u, nil
}
