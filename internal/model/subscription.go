package model

import (
	"time"
)

type Subscription struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	UserID           int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanID           string    `gorm:"size:50;not null" json:"plan_id"`
	PlanName         string    `gorm:"size:20;not null" json:"plan_name"` // free, basic, premium
	CreditsRemaining int       `gorm:"default:0" json:"credits_remaining"`
	Amount           float64   `gorm:"type:decimal(10,2)" json:"amount,omitempty"`
	PaymentID        string    `gorm:"size:100" json:"payment_id,omitempty"`
	Status           string    `gorm:"size:20;default:active;index" json:"status"` // active, cancelled
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
