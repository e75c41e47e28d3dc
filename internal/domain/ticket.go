package domain

import "github.com/google/uuid"

// Ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// Ticket priorities.
const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

// Ticket is a customer support request, always owned by one agency.
// CreatedBy is nil for chatbot-originated tickets: API-key actors have no
// user row, and the column carries a foreign key to users.
type Ticket struct {
	BaseModel
	Title                 string     `gorm:"size:255;not null" json:"title"`
	Description           string     `gorm:"type:text;not null" json:"description"`
	Status                string     `gorm:"size:32;not null;default:open" json:"status"`
	Priority              string     `gorm:"size:32;not null;default:medium" json:"priority"`
	CategoryID            uuid.UUID  `gorm:"type:uuid;index" json:"category_id"`
	AgencyID              uuid.UUID  `gorm:"type:uuid;index" json:"agency_id"`
	CreatedBy             *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	AssignedTo            *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to"`
	OriginatedFromChatbot bool       `json:"originated_from_chatbot"`

	Agency         *Agency   `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
	Category       *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedByUser  *User     `gorm:"foreignKey:CreatedBy" json:"created_by_user,omitempty"`
	AssignedToUser *User     `gorm:"foreignKey:AssignedTo" json:"assigned_to_user,omitempty"`
	Replies        []Reply   `gorm:"foreignKey:TicketID" json:"replies,omitempty"`
}

// Reply is a message on a ticket, either public or internal (agent-only).
// UserID is nil for chatbot replies, mirroring Ticket.CreatedBy.
type Reply struct {
	BaseModel
	TicketID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"ticket_id"`
	UserID         *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	IsInternal     bool       `json:"is_internal"`
	IsChatbotReply bool       `json:"is_chatbot_reply"`

	Ticket *Ticket `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Category groups tickets within one agency.
type Category struct {
	BaseModel
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	AgencyID    uuid.UUID `gorm:"type:uuid;index;not null" json:"agency_id"`

	Agency *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
}
