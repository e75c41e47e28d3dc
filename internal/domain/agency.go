package domain

import "github.com/google/uuid"

// Agency is the tenant: nearly every other entity is partitioned by it.
type Agency struct {
	BaseModel
	Name           string    `gorm:"size:200;not null" json:"name"`
	Domain         string    `gorm:"size:255" json:"domain"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;index" json:"subscription_id"`

	Subscription *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
}

// Subscription is a billing plan an agency subscribes to.
type Subscription struct {
	BaseModel
	PlanName string  `gorm:"size:100;not null" json:"plan_name"`
	Price    float64 `json:"price"`
	Features string  `json:"features"`
}
