package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription is the single billing record a user can hold. The unique index
// on UserID plus upsert semantics in the webhook handler guarantee at most one
// row per user.
type Subscription struct {
	ID                 string             `json:"id" gorm:"primaryKey;size:36"`
	UserID             string             `json:"user_id" gorm:"uniqueIndex;size:36;not null"`
	PlanID             string             `json:"plan_id" gorm:"not null"`
	PlanName           string             `json:"plan_name" gorm:"not null"`
	Status             SubscriptionStatus `json:"status" gorm:"default:'active'"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end" gorm:"default:false"`
	Amount             float64            `json:"amount"`
	MPPaymentID        string             `json:"mp_payment_id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the subscription currently grants access.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive && time.Now().Before(s.CurrentPeriodEnd)
}
