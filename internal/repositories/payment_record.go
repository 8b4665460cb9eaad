package repositories

import (
	"errors"

	"refundly/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment record not found")

// PaymentRecordRepository persists confirmed subscription charges.
// Records are append-only; there is deliberately no Update or Delete.
type PaymentRecordRepository interface {
	Create(record *models.PaymentRecord) error
	GetByGatewayPaymentID(gatewayPaymentID string) (*models.PaymentRecord, error)
	Latest(merchantID uint) (*models.PaymentRecord, error)
	List(merchantID uint, offset, limit int) ([]models.PaymentRecord, int64, error)
}

type paymentRecordRepository struct {
	db *gorm.DB
}

func NewPaymentRecordRepository(db *gorm.DB) PaymentRecordRepository {
	return &paymentRecordRepository{db: db}
}

func (r *paymentRecordRepository) Create(record *models.PaymentRecord) error {
	return r.db.Create(record).Error
}

func (r *paymentRecordRepository) GetByGatewayPaymentID(gatewayPaymentID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.db.Where("gateway_payment_id = ?", gatewayPaymentID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *paymentRecordRepository) Latest(merchantID uint) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.db.Where("merchant_id = ?", merchantID).
		Order("paid_at DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *paymentRecordRepository) List(merchantID uint, offset, limit int) ([]models.PaymentRecord, int64, error) {
	var records []models.PaymentRecord
	var total int64

	query := r.db.Model(&models.PaymentRecord{}).Where("merchant_id = ?", merchantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("paid_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}
