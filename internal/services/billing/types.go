package billing

import "time"

// Update modes.
const (
	ModeUpgrade   = "upgrade"
	ModeDowngrade = "downgrade"
)

// CreateResult is returned by CreateSubscription. The merchant is NOT active
// yet; activation arrives later through the webhook.
type CreateResult struct {
	SubscriptionID string `json:"subscriptionId"`
	CreatedAt      int64  `json:"t"`
}

// UpdateResult reports how a plan change was applied.
type UpdateResult struct {
	Mode          string     `json:"mode"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
}

// OverageResult is the read-only excess-fee computation for the current cycle.
type OverageResult struct {
	AmountInPaise int64 `json:"amountInPaise"`
	Usage         int64 `json:"usage"`
	Limit         int64 `json:"limit"`
	ExcessRate    int64 `json:"excessRate"`
}

// Webhook response statuses.
const (
	WebhookStatusOK                 = "ok"
	WebhookStatusIgnoredDuplicate   = "ignored_duplicate"
	WebhookStatusIgnoredNoPaymentID = "ignored_no_payment_id"
)

// WebhookResult is the acknowledgement body for a processed webhook event.
type WebhookResult struct {
	Status string `json:"status"`
}
