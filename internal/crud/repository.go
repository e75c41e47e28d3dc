package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// Repository is the persistence surface the lifecycle controller and the
// query engine build on. Includes name navigation properties to eager-load
// alongside the primary fetch.
type Repository[E any, ID comparable] interface {
	Create(ctx context.Context, entity *E) error
	GetByID(ctx context.Context, id ID, includes ...string) (*E, error)
	Exists(ctx context.Context, id ID) (bool, error)
	Update(ctx context.Context, entity *E) error
	Delete(ctx context.Context, id ID) error

	// Query returns a composable read-only base query with the given
	// navigation includes preloaded, ready for further filtering.
	Query(ctx context.Context, includes ...string) *gorm.DB
}

// gormRepository implements Repository using GORM.
type gormRepository[E any, ID comparable] struct {
	db *gorm.DB
}

// NewRepository creates a Repository for entity type E backed by the given
// GORM database.
func NewRepository[E any, ID comparable](db *gorm.DB) Repository[E, ID] {
	return &gormRepository[E, ID]{db: db}
}

func (r *gormRepository[E, ID]) Create(ctx context.Context, entity *E) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *gormRepository[E, ID]) GetByID(ctx context.Context, id ID, includes ...string) (*E, error) {
	q := r.db.WithContext(ctx)
	for _, inc := range includes {
		q = q.Preload(inc)
	}
	var entity E
	if err := q.First(&entity, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

func (r *gormRepository[E, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(E)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

func (r *gormRepository[E, ID]) Update(ctx context.Context, entity *E) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *gormRepository[E, ID]) Delete(ctx context.Context, id ID) error {
	result := r.db.WithContext(ctx).Delete(new(E), "id = ?", id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *gormRepository[E, ID]) Query(ctx context.Context, includes ...string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(E))
	for _, inc := range includes {
		q = q.Preload(inc)
	}
	return q
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
