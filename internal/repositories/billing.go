package repositories

import (
	"context"
	"time"

	"refundly/internal/models"
	"refundly/internal/repositories/cache"

	"gorm.io/gorm"
)

// BillingRepository applies the write set of a reconciled charge atomically.
// The merchant update, the payment record and the counter reset must land
// together: a crash between them would leave the merchant active with stale
// usage counters, or a payment recorded without the reset.
type BillingRepository interface {
	ApplyCharge(merchant *models.Merchant, record *models.PaymentRecord, cycleStart time.Time) error
}

type billingRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewBillingRepository(db *gorm.DB, cacheService *cache.CacheService) BillingRepository {
	return &billingRepository{db: db, cache: cacheService}
}

func (r *billingRepository) ApplyCharge(merchant *models.Merchant, record *models.PaymentRecord, cycleStart time.Time) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(merchant).Error; err != nil {
			return err
		}

		// The unique index on gateway_payment_id backstops the reconciler's
		// idempotency pre-check: two concurrent deliveries of the same event
		// cannot both commit.
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		return tx.Model(&models.UsageMetrics{}).
			Where("merchant_id = ?", merchant.ID).
			Updates(map[string]interface{}{
				"total_refunds_count":    0,
				"settled_amount_paise":   0,
				"liability_amount_paise": 0,
				"stuck_amount_paise":     0,
				"cycle_started_at":       cycleStart,
			}).Error
	})
	if err != nil {
		return err
	}

	if r.cache != nil {
		_ = r.cache.InvalidateMerchant(context.Background(), merchant.ID)
	}
	return nil
}
