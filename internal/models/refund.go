package models

import "time"

// Refund statuses. Terminal states are SETTLED and FAILED.
const (
	RefundStatusGatheringDetails = "GATHERING_DETAILS"
	RefundStatusInitiated        = "REFUND_INITIATED"
	RefundStatusProcessingAtBank = "PROCESSING_AT_BANK"
	RefundStatusSettled          = "SETTLED"
	RefundStatusFailed           = "FAILED"
)

// Refund is the product's core business object: one customer refund tracked by
// a merchant. Rows are tenant-isolated by MerchantID; every query must filter
// on it.
type Refund struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	PublicID   string `gorm:"uniqueIndex;not null" json:"id"`
	MerchantID uint   `gorm:"index;not null" json:"-"`

	OrderReference string `json:"order_reference"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`

	AmountPaise int64  `json:"amount_paise"`
	Status      string `gorm:"default:'GATHERING_DETAILS';index" json:"status"`

	// UTR is the bank reference proving the transfer settled.
	UTR string `json:"utr,omitempty"`

	ImportBatchID string `gorm:"index" json:"import_batch_id,omitempty"`

	Timeline []RefundTimelineEntry `gorm:"foreignKey:RefundID" json:"timeline,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefundTimelineEntry is one status-change event in a refund's history.
// Entries are append-only and never deleted.
type RefundTimelineEntry struct {
	ID       uint   `gorm:"primarykey" json:"-"`
	RefundID uint   `gorm:"index;not null" json:"-"`
	Status   string `gorm:"not null" json:"status"`
	Note     string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ValidRefundStatus reports whether s is a known refund status.
func ValidRefundStatus(s string) bool {
	switch s {
	case RefundStatusGatheringDetails, RefundStatusInitiated,
		RefundStatusProcessingAtBank, RefundStatusSettled, RefundStatusFailed:
		return true
	}
	return false
}
