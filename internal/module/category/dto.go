package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for creating a ticket category.
type CreateRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=100"`
	Description string    `json:"description" binding:"omitempty,max=500"`
	AgencyID    uuid.UUID `json:"agency_id" binding:"required"`
}

// EditRequest is the input for replacing a category. The agency binding is
// fixed at creation.
type EditRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// Response is the public shape of a category.
type Response struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	AgencyID     uuid.UUID  `json:"agency_id"`
	AgencyName   string     `json:"agency_name,omitempty"`
	CreateTime   time.Time  `json:"create_time"`
	ModifiedTime *time.Time `json:"modified_time"`
}

func toResponse(cat *domain.Category) Response {
	resp := Response{
		ID:           cat.ID,
		Name:         cat.Name,
		Description:  cat.Description,
		AgencyID:     cat.AgencyID,
		CreateTime:   cat.CreateTime,
		ModifiedTime: cat.ModifiedTime,
	}
	if cat.Agency != nil {
		resp.AgencyName = cat.Agency.Name
	}
	return resp
}
