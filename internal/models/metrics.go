package models

import "time"

// UsageMetrics tracks a merchant's current-cycle counters. Counters only ever
// increase during a cycle; the reset happens in the webhook reconciler when a
// charge is confirmed, never from a client-initiated call.
type UsageMetrics struct {
	ID         uint `gorm:"primarykey" json:"-"`
	MerchantID uint `gorm:"uniqueIndex;not null" json:"merchant_id"`

	TotalRefundsCount    int64 `gorm:"default:0" json:"total_refunds_count"`
	SettledAmountPaise   int64 `gorm:"default:0" json:"settled_amount_paise"`
	LiabilityAmountPaise int64 `gorm:"default:0" json:"liability_amount_paise"`
	StuckAmountPaise     int64 `gorm:"default:0" json:"stuck_amount_paise"`

	CycleStartedAt time.Time `json:"cycle_started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
