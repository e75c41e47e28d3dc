package domain

import "github.com/google/uuid"

// User is a person who can sign in: a requester, an agency-bound agent or
// manager, or an unrestricted admin. AgencyID is nil for admins and for
// requesters that are not attached to a tenant yet.
//
// Version is an optimistic-concurrency token: updates must carry the version
// they read, and a stale version is reported as a conflict instead of
// silently overwriting.
type User struct {
	BaseModel
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string     `gorm:"size:32" json:"phone"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         string     `gorm:"size:32;not null;default:user" json:"role"`
	AgencyID     *uuid.UUID `gorm:"type:uuid;index" json:"agency_id"`
	Version      int        `gorm:"not null;default:1" json:"version"`

	Agency *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
}
