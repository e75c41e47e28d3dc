package analytic

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for recording an agent performance snapshot.
type CreateRequest struct {
	AgentID                   uuid.UUID     `json:"agent_id" binding:"required"`
	AgencyID                  uuid.UUID     `json:"agency_id" binding:"required"`
	TicketsResolved           int           `json:"tickets_resolved" binding:"omitempty,gte=0"`
	AverageResponseTime       time.Duration `json:"average_response_time" binding:"omitempty,gte=0"`
	CustomerSatisfactionScore float64       `json:"customer_satisfaction_score" binding:"omitempty,gte=0,lte=5"`
}

// EditRequest is the input for replacing a snapshot's measures.
type EditRequest struct {
	TicketsResolved           int           `json:"tickets_resolved" binding:"omitempty,gte=0"`
	AverageResponseTime       time.Duration `json:"average_response_time" binding:"omitempty,gte=0"`
	CustomerSatisfactionScore float64       `json:"customer_satisfaction_score" binding:"omitempty,gte=0,lte=5"`
}

// Response is the public shape of a snapshot.
type Response struct {
	ID                        uuid.UUID     `json:"id"`
	AgentID                   uuid.UUID     `json:"agent_id"`
	AgentName                 string        `json:"agent_name,omitempty"`
	AgencyID                  uuid.UUID     `json:"agency_id"`
	TicketsResolved           int           `json:"tickets_resolved"`
	AverageResponseTime       time.Duration `json:"average_response_time"`
	CustomerSatisfactionScore float64       `json:"customer_satisfaction_score"`
	CreateTime                time.Time     `json:"create_time"`
	ModifiedTime              *time.Time    `json:"modified_time"`
}

func toResponse(a *domain.Analytic) Response {
	resp := Response{
		ID:                        a.ID,
		AgentID:                   a.AgentID,
		AgencyID:                  a.AgencyID,
		TicketsResolved:           a.TicketsResolved,
		AverageResponseTime:       a.AverageResponseTime,
		CustomerSatisfactionScore: a.CustomerSatisfactionScore,
		CreateTime:                a.CreateTime,
		ModifiedTime:              a.ModifiedTime,
	}
	if a.Agent != nil {
		resp.AgentName = a.Agent.Name
	}
	return resp
}
