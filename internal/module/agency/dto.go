package agency

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for onboarding an agency.
type CreateRequest struct {
	Name           string    `json:"name" binding:"required,min=1,max=200"`
	Domain         string    `json:"domain" binding:"omitempty,max=255"`
	SubscriptionID uuid.UUID `json:"subscription_id" binding:"required"`
}

// EditRequest is the input for replacing an agency.
type EditRequest struct {
	Name           string    `json:"name" binding:"required,min=1,max=200"`
	Domain         string    `json:"domain" binding:"omitempty,max=255"`
	SubscriptionID uuid.UUID `json:"subscription_id" binding:"required"`
}

// Response is the public shape of an agency.
type Response struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Domain           string     `json:"domain"`
	SubscriptionID   uuid.UUID  `json:"subscription_id"`
	SubscriptionPlan string     `json:"subscription_plan,omitempty"`
	CreateTime       time.Time  `json:"create_time"`
	ModifiedTime     *time.Time `json:"modified_time"`
}

func toResponse(a *domain.Agency) Response {
	resp := Response{
		ID:             a.ID,
		Name:           a.Name,
		Domain:         a.Domain,
		SubscriptionID: a.SubscriptionID,
		CreateTime:     a.CreateTime,
		ModifiedTime:   a.ModifiedTime,
	}
	if a.Subscription != nil {
		resp.SubscriptionPlan = a.Subscription.PlanName
	}
	return resp
}
