package models

import (
	"time"
)

// Subscription statuses as reported by the gateway. Only SubStatusActive,
// SubStatusSuspended and SubStatusCancelled are durable local states;
// authenticated/authorized are transient gateway signals observed between
// mandate setup and the first charge.
const (
	SubStatusPendingPayment = "pending_payment"
	SubStatusActive         = "active"
	SubStatusAuthenticated  = "authenticated"
	SubStatusAuthorized     = "authorized"
	SubStatusCancelled      = "cancelled"
	SubStatusSuspended      = "suspended"
	SubStatusExpired        = "expired"
)

type Merchant struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	UserID       uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	BusinessName string `gorm:"not null" json:"business_name"`

	PlanType           string `gorm:"default:'starter'" json:"plan_type"`
	SubscriptionStatus string `gorm:"default:'pending_payment'" json:"subscription_status"`
	SubscriptionID     string `gorm:"index" json:"subscription_id"`

	LastPaymentAt *time.Time `json:"last_payment_at"`

	// UpcomingPlan is set between a downgrade request and its effective date,
	// and cleared exactly once the charge on that date is reconciled.
	UpcomingPlan     string     `json:"upcoming_plan"`
	UpcomingPlanDate *time.Time `json:"upcoming_plan_date"`

	SLADays         int    `gorm:"default:7" json:"sla_days"`
	PreferredMethod string `json:"preferred_method"`

	Metadata  JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscribed reports whether the merchant already holds a live or in-progress
// subscription, which blocks creating another one.
func (m *Merchant) Subscribed() bool {
	switch m.SubscriptionStatus {
	case SubStatusActive, SubStatusAuthenticated, SubStatusAuthorized:
		return true
	}
	return false
}
