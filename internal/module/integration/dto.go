package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for registering an integration. The API key is
// generated server-side and returned once in the response.
type CreateRequest struct {
	Name     string    `json:"name" binding:"required,min=1,max=100"`
	AgencyID uuid.UUID `json:"agency_id" binding:"required"`
}

// EditRequest is the input for renaming or toggling an integration. The key
// itself is immutable; rotate by delete and re-create.
type EditRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// Response is the public shape of an integration.
type Response struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	APIKey       string     `json:"api_key"`
	AgencyID     uuid.UUID  `json:"agency_id"`
	Enabled      bool       `json:"enabled"`
	CreateTime   time.Time  `json:"create_time"`
	ModifiedTime *time.Time `json:"modified_time"`
}

func toResponse(i *domain.Integration) Response {
	return Response{
		ID:           i.ID,
		Name:         i.Name,
		APIKey:       i.APIKey,
		AgencyID:     i.AgencyID,
		Enabled:      i.Enabled,
		CreateTime:   i.CreateTime,
		ModifiedTime: i.ModifiedTime,
	}
}
