package domain

import (
	"time"

	"github.com/google/uuid"
)

// FAQ is a published question/answer pair, visible to an agency's customers
// either through an authenticated session or through an integration API key.
type FAQ struct {
	BaseModel
	AgencyID uuid.UUID `gorm:"type:uuid;index;not null" json:"agency_id"`
	Question string    `gorm:"size:500" json:"question"`
	Answer   string    `gorm:"type:text" json:"answer"`

	Agency *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
}

// Integration stores a named API key through which an agency's public surface
// (FAQ listing, anonymous tickets) can be reached without a user session.
type Integration struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"name"`
	APIKey   string    `gorm:"size:64;uniqueIndex;not null;column:api_key" json:"api_key"`
	AgencyID uuid.UUID `gorm:"type:uuid;index;not null" json:"agency_id"`
	Enabled  bool      `gorm:"not null;default:true" json:"enabled"`

	Agency *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
}

// Analytic is a per-agent performance snapshot within an agency.
type Analytic struct {
	BaseModel
	AgentID                   uuid.UUID     `gorm:"type:uuid;index;not null" json:"agent_id"`
	AgencyID                  uuid.UUID     `gorm:"type:uuid;index;not null" json:"agency_id"`
	TicketsResolved           int           `json:"tickets_resolved"`
	AverageResponseTime       time.Duration `json:"average_response_time"`
	CustomerSatisfactionScore float64       `json:"customer_satisfaction_score"`

	Agent  *User   `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Agency *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
}
