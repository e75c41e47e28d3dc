package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the common base struct for all domain models.
// IDs are UUIDv7 values: time-ordered, so the query engine's default
// "id ASC" sort yields creation order. The ID is assigned once in
// BeforeCreate and never reassigned.
//
// DeleteTime exists for schema compatibility with deployments that
// soft-delete out of band; the Delete operations in this service remove
// rows physically and never populate it.
type BaseModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreateTime   time.Time  `json:"create_time"`
	ModifiedTime *time.Time `json:"modified_time"`
	DeleteTime   *time.Time `json:"delete_time,omitempty"`
}

// BeforeCreate assigns a UUIDv7 primary key and the creation timestamp.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	if m.CreateTime.IsZero() {
		m.CreateTime = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate stamps the modification timestamp.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now().UTC()
	m.ModifiedTime = &now
	return nil
}

// Staff roles. Admin sees all agencies; Manager and Agent are restricted to
// their own agency; RoleUser is a plain authenticated requester.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleUser    = "user"
)
