package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// CreateRequest is the input for defining a billing plan.
type CreateRequest struct {
	PlanName string  `json:"plan_name" binding:"required,min=1,max=100"`
	Price    float64 `json:"price" binding:"omitempty,gte=0"`
	Features string  `json:"features"`
}

// EditRequest is the input for replacing a billing plan.
type EditRequest struct {
	PlanName string  `json:"plan_name" binding:"required,min=1,max=100"`
	Price    float64 `json:"price" binding:"omitempty,gte=0"`
	Features string  `json:"features"`
}

// Response is the public shape of a billing plan.
type Response struct {
	ID           uuid.UUID  `json:"id"`
	PlanName     string     `json:"plan_name"`
	Price        float64    `json:"price"`
	Features     string     `json:"features"`
	CreateTime   time.Time  `json:"create_time"`
	ModifiedTime *time.Time `json:"modified_time"`
}

func toResponse(s *domain.Subscription) Response {
	return Response{
		ID:           s.ID,
		PlanName:     s.PlanName,
		Price:        s.Price,
		Features:     s.Features,
		CreateTime:   s.CreateTime,
		ModifiedTime: s.ModifiedTime,
	}
}
