package models

import "time"

// PaymentRecord is an append-only record of a confirmed subscription charge.
// GatewayPaymentID is the idempotency key: webhook delivery is at-least-once,
// and a redelivered charged event must not produce a second record.
type PaymentRecord struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	MerchantID       uint   `gorm:"index;not null" json:"merchant_id"`
	GatewayPaymentID string `gorm:"uniqueIndex;not null" json:"gateway_payment_id"`
	SubscriptionID   string `gorm:"index" json:"subscription_id"`

	AmountPaise int64  `json:"amount_paise"`
	Currency    string `gorm:"default:'INR'" json:"currency"`
	Method      string `json:"method"`

	// Snapshot of the plan and usage at the time of the charge, so overage
	// invoices stay explainable after the plan changes.
	PlanType   string `json:"plan_type"`
	Usage      int64  `json:"usage"`
	UsageLimit int64  `json:"usage_limit"`
	ExcessRate int64  `json:"excess_rate"`

	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}
