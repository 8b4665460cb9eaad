package repositories

import (
	"context"
	"errors"

	"refundly/internal/models"
	"refundly/internal/repositories/cache"

	"gorm.io/gorm"
)

var ErrMerchantNotFound = errors.New("merchant not found")

// MerchantRepository defines merchant persistence operations. Reads by id go
// through the Redis cache; every write invalidates it.
type MerchantRepository interface {
	GetByID(id uint) (*models.Merchant, error)
	GetByUserID(userID uint) (*models.Merchant, error)
	GetBySubscriptionID(subscriptionID string) (*models.Merchant, error)
	Create(merchant *models.Merchant) error
	Update(merchant *models.Merchant) error
}

type merchantRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewMerchantRepository(db *gorm.DB, cacheService *cache.CacheService) MerchantRepository {
	return &merchantRepository{db: db, cache: cacheService}
}

func (r *merchantRepository) GetByID(id uint) (*models.Merchant, error) {
	ctx := context.Background()
	var merchant models.Merchant

	if r.cache != nil {
		if hit, err := r.cache.GetMerchant(ctx, id, &merchant); err == nil && hit {
			return &merchant, nil
		}
	}

	if err := r.db.First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.CacheMerchant(ctx, &merchant)
	}
	return &merchant, nil
}

func (r *merchantRepository) GetByUserID(userID uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("user_id = ?", userID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) GetBySubscriptionID(subscriptionID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("subscription_id = ?", subscriptionID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) Create(merchant *models.Merchant) error {
	return r.db.Create(merchant).Error
}

func (r *merchantRepository) Update(merchant *models.Merchant) error {
	if merchant.ID == 0 {
		return errors.New("cannot update merchant with ID 0")
	}
	if err := r.db.Save(merchant).Error; err != nil {
		return err
	}
	if r.cache != nil {
		_ = r.cache.InvalidateMerchant(context.Background(), merchant.ID)
	}
	return nil
}
