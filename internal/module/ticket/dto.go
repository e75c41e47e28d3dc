package ticket

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for opening a ticket.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description string     `json:"description" binding:"required"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CategoryID  uuid.UUID  `json:"category_id" binding:"required"`
	AgencyID    uuid.UUID  `json:"agency_id" binding:"required"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// EditRequest is the input for replacing a ticket.
type EditRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description string     `json:"description" binding:"required"`
	Status      string     `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	Priority    string     `json:"priority" binding:"required,oneof=low medium high urgent"`
	CategoryID  uuid.UUID  `json:"category_id" binding:"required"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// Response is the public shape of a ticket.
type Response struct {
	ID                    uuid.UUID  `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Status                string     `json:"status"`
	Priority              string     `json:"priority"`
	CategoryID            uuid.UUID  `json:"category_id"`
	CategoryName          string     `json:"category_name,omitempty"`
	AgencyID              uuid.UUID  `json:"agency_id"`
	AgencyName            string     `json:"agency_name,omitempty"`
	CreatedBy             *uuid.UUID `json:"created_by"`
	CreatedByName         string     `json:"created_by_name,omitempty"`
	AssignedTo            *uuid.UUID `json:"assigned_to"`
	AssignedToName        string     `json:"assigned_to_name,omitempty"`
	OriginatedFromChatbot bool       `json:"originated_from_chatbot"`
	CreateTime            time.Time  `json:"create_time"`
	ModifiedTime          *time.Time `json:"modified_time"`
}

func toResponse(t *domain.Ticket) Response {
	resp := Response{
		ID:                    t.ID,
		Title:                 t.Title,
		Description:           t.Description,
		Status:                t.Status,
		Priority:              t.Priority,
		CategoryID:            t.CategoryID,
		AgencyID:              t.AgencyID,
		CreatedBy:             t.CreatedBy,
		AssignedTo:            t.AssignedTo,
		OriginatedFromChatbot: t.OriginatedFromChatbot,
		CreateTime:            t.CreateTime,
		ModifiedTime:          t.ModifiedTime,
	}
	if t.Category != nil {
		resp.CategoryName = t.Category.Name
	}
	if t.Agency != nil {
		resp.AgencyName = t.Agency.Name
	}
	if t.CreatedByUser != nil {
		resp.CreatedByName = t.CreatedByUser.Name
	}
	if t.AssignedToUser != nil {
		resp.AssignedToName = t.AssignedToUser.Name
	}
	return resp
}
