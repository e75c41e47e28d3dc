package faq

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for publishing an FAQ entry.
type CreateRequest struct {
	Question string    `json:"question" binding:"required,min=1,max=500"`
	Answer   string    `json:"answer" binding:"required"`
	AgencyID uuid.UUID `json:"agency_id" binding:"required"`
}

// EditRequest is the input for replacing an FAQ entry.
type EditRequest struct {
	Question string `json:"question" binding:"required,min=1,max=500"`
	Answer   string `json:"answer" binding:"required"`
}

// Response is the public shape of an FAQ entry.
type Response struct {
	ID           uuid.UUID  `json:"id"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	AgencyID     uuid.UUID  `json:"agency_id"`
	CreateTime   time.Time  `json:"create_time"`
	ModifiedTime *time.Time `json:"modified_time"`
}

func toResponse(f *domain.FAQ) Response {
	return Response{
		ID:           f.ID,
		Question:     f.Question,
		Answer:       f.Answer,
		AgencyID:     f.AgencyID,
		CreateTime:   f.CreateTime,
		ModifiedTime: f.ModifiedTime,
	}
}
