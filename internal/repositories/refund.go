package repositories

import (
	"errors"

	"refundly/internal/models"

	"gorm.io/gorm"
)

var ErrRefundNotFound = errors.New("refund not found")

// RefundRepository persists refund records. Every query filters on merchant_id;
// refunds are never shared across merchants.
type RefundRepository interface {
	Create(refund *models.Refund) error
	CreateBatch(refunds []*models.Refund) error
	GetByPublicID(merchantID uint, publicID string) (*models.Refund, error)
	List(merchantID uint, status string, offset, limit int) ([]models.Refund, int64, error)
	Recent(merchantID uint, limit int) ([]models.Refund, error)
	Save(refund *models.Refund) error
	AppendTimeline(entry *models.RefundTimelineEntry) error
	CountByStatus(merchantID uint) (map[string]int64, error)
	SumAmountByStatus(merchantID uint, status string) (int64, error)
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(refund *models.Refund) error {
	return r.db.Create(refund).Error
}

func (r *refundRepository) CreateBatch(refunds []*models.Refund) error {
	return r.db.Create(refunds).Error
}

func (r *refundRepository) GetByPublicID(merchantID uint, publicID string) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.Preload("Timeline", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("merchant_id = ? AND public_id = ?", merchantID, publicID).
		First(&refund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) List(merchantID uint, status string, offset, limit int) ([]models.Refund, int64, error) {
	var refunds []models.Refund
	var total int64

	query := r.db.Model(&models.Refund{}).Where("merchant_id = ?", merchantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&refunds).Error
	return refunds, total, err
}

func (r *refundRepository) Recent(merchantID uint, limit int) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.Where("merchant_id = ?", merchantID).
		Order("created_at DESC").Limit(limit).Find(&refunds).Error
	return refunds, err
}

func (r *refundRepository) Save(refund *models.Refund) error {
	return r.db.Save(refund).Error
}

func (r *refundRepository) AppendTimeline(entry *models.RefundTimelineEntry) error {
	return r.db.Create(entry).Error
}

func (r *refundRepository) CountByStatus(merchantID uint) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.Refund{}).
		Select("status, count(*) as count").
		Where("merchant_id = ?", merchantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *refundRepository) SumAmountByStatus(merchantID uint, status string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Refund{}).
		Select("COALESCE(SUM(amount_paise), 0)").
		Where("merchant_id = ? AND status = ?", merchantID, status).
		Scan(&total).Error
	return total, err
}
