package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for provisioning a user account.
type CreateRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=100"`
	Email    string     `json:"email" binding:"required,email"`
	Phone    string     `json:"phone" binding:"omitempty,max=32"`
	Password string     `json:"password" binding:"required,min=8,max=72"`
	Role     string     `json:"role" binding:"omitempty,oneof=admin manager agent user"`
	AgencyID *uuid.UUID `json:"agency_id"`
}

// EditRequest is the input for replacing a user's profile. Version must carry
// the value the client read; a stale version is rejected as a conflict.
// Credentials are not editable here.
type EditRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=100"`
	Email    string     `json:"email" binding:"required,email"`
	Phone    string     `json:"phone" binding:"omitempty,max=32"`
	Role     string     `json:"role" binding:"required,oneof=admin manager agent user"`
	AgencyID *uuid.UUID `json:"agency_id"`
	Version  int        `json:"version" binding:"required,min=1"`
}

// Response is the public shape of a user.
type Response struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	AgencyID     *uuid.UUID `json:"agency_id"`
	AgencyName   string     `json:"agency_name,omitempty"`
	Version      int        `json:"version"`
	CreateTime   time.Time  `json:"create_time"`
	ModifiedTime *time.Time `json:"modified_time"`
}

func toResponse(u *domain.User) Response {
	resp := Response{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		AgencyID:     u.AgencyID,
		Version:      u.Version,
		CreateTime:   u.CreateTime,
		ModifiedTime: u.ModifiedTime,
	}
	if u.Agency != nil {
		resp.AgencyName = u.Agency.Name
	}
	return resp
}
