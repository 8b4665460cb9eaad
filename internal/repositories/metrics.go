package repositories

import (
	"errors"
	"time"

	"refundly/internal/models"

	"gorm.io/gorm"
)

var ErrMetricsNotFound = errors.New("usage metrics not found")

// MetricsRepository maintains the per-merchant, per-cycle usage counters.
// Counters are incremented by refund activity and reset only through the
// billing reconciler (see billing.Service).
type MetricsRepository interface {
	Get(merchantID uint) (*models.UsageMetrics, error)
	GetOrCreate(merchantID uint) (*models.UsageMetrics, error)
	AddRefund(merchantID uint, amountPaise int64) error
	RecordSettlement(merchantID uint, amountPaise int64) error
	RecordFailure(merchantID uint, amountPaise int64) error
}

type metricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) Get(merchantID uint) (*models.UsageMetrics, error) {
	var metrics models.UsageMetrics
	err := r.db.Where("merchant_id = ?", merchantID).First(&metrics).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMetricsNotFound
		}
		return nil, err
	}
	return &metrics, nil
}

func (r *metricsRepository) GetOrCreate(merchantID uint) (*models.UsageMetrics, error) {
	metrics, err := r.Get(merchantID)
	if err == nil {
		return metrics, nil
	}
	if !errors.Is(err, ErrMetricsNotFound) {
		return nil, err
	}

	metrics = &models.UsageMetrics{
		MerchantID:     merchantID,
		CycleStartedAt: time.Now(),
	}
	if err := r.db.Create(metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

// AddRefund bumps the refund counter and the outstanding liability.
// Updates are expression-based so concurrent increments don't lose writes.
func (r *metricsRepository) AddRefund(merchantID uint, amountPaise int64) error {
	if _, err := r.GetOrCreate(merchantID); err != nil {
		return err
	}
	return r.db.Model(&models.UsageMetrics{}).
		Where("merchant_id = ?", merchantID).
		Updates(map[string]interface{}{
			"total_refunds_count":    gorm.Expr("total_refunds_count + 1"),
			"liability_amount_paise": gorm.Expr("liability_amount_paise + ?", amountPaise),
		}).Error
}

// RecordSettlement moves an amount from liability to settled.
func (r *metricsRepository) RecordSettlement(merchantID uint, amountPaise int64) error {
	return r.db.Model(&models.UsageMetrics{}).
		Where("merchant_id = ?", merchantID).
		Updates(map[string]interface{}{
			"settled_amount_paise":   gorm.Expr("settled_amount_paise + ?", amountPaise),
			"liability_amount_paise": gorm.Expr("liability_amount_paise - ?", amountPaise),
		}).Error
}

// RecordFailure moves an amount from liability to stuck.
func (r *metricsRepository) RecordFailure(merchantID uint, amountPaise int64) error {
	return r.db.Model(&models.UsageMetrics{}).
		Where("merchant_id = ?", merchantID).
		Updates(map[string]interface{}{
			"stuck_amount_paise":     gorm.Expr("stuck_amount_paise + ?", amountPaise),
			"liability_amount_paise": gorm.Expr("liability_amount_paise - ?", amountPaise),
		}).Error
}
