package pkg

import (
	"context"

	"gorm.io/gorm"
)

// WithTx runs fn inside a database transaction bound to ctx.
// It commits when fn returns nil, rolls back on error, and rolls back
// before re-raising when fn panics.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
