package reply

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for posting a reply on a ticket.
type CreateRequest struct {
	TicketID   uuid.UUID `json:"ticket_id" binding:"required"`
	Content    string    `json:"content" binding:"required"`
	IsInternal bool      `json:"is_internal"`
}

// EditRequest is the input for editing a reply's content.
type EditRequest struct {
	Content    string `json:"content" binding:"required"`
	IsInternal bool   `json:"is_internal"`
}

// Response is the public shape of a reply.
type Response struct {
	ID             uuid.UUID  `json:"id"`
	TicketID       uuid.UUID  `json:"ticket_id"`
	UserID         *uuid.UUID `json:"user_id"`
	UserName       string     `json:"user_name,omitempty"`
	Content        string     `json:"content"`
	IsInternal     bool       `json:"is_internal"`
	IsChatbotReply bool       `json:"is_chatbot_reply"`
	CreateTime     time.Time  `json:"create_time"`
	ModifiedTime   *time.Time `json:"modified_time"`
}

func toResponse(r *domain.Reply) Response {
	resp := Response{
		ID:             r.ID,
		TicketID:       r.TicketID,
		UserID:         r.UserID,
		Content:        r.Content,
		IsInternal:     r.IsInternal,
		IsChatbotReply: r.IsChatbotReply,
		CreateTime:     r.CreateTime,
		ModifiedTime:   r.ModifiedTime,
	}
	if r.User != nil {
		resp.UserName = r.User.Name
	}
	return resp
}
