package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockMerchantRepo struct {
	mock.Mock
}

func (m *MockMerchantRepo) GetByID(id uint) (*models.Merchant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepo) GetByUserID(userID uint) (*models.Merchant, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepo) GetBySubscriptionID(subscriptionID string) (*models.Merchant, error) {
	args := m.Called(subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepo) Create(merchant *models.Merchant) error {
	args := m.Called(merchant)
	return args.Error(0)
}

func (m *MockMerchantRepo) Update(merchant *models.Merchant) error {
	args := m.Called(merchant)
	return args.Error(0)
}

type MockRefundRepo struct {
	mock.Mock
}

func (m *MockRefundRepo) Create(refund *models.Refund) error {
	args := m.Called(refund)
	return args.Error(0)
}

func (m *MockRefundRepo) CreateBatch(refunds []*models.Refund) error {
	args := m.Called(refunds)
	return args.Error(0)
}

func (m *MockRefundRepo) GetByPublicID(merchantID uint, publicID string) (*models.Refund, error) {
	args := m.Called(merchantID, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

func (m *MockRefundRepo) List(merchantID uint, status string, offset, limit int) ([]models.Refund, int64, error) {
	args := m.Called(merchantID, status, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Refund), args.Get(1).(int64), args.Error(2)
}

func (m *MockRefundRepo) Recent(merchantID uint, limit int) ([]models.Refund, error) {
	args := m.Called(merchantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Refund), args.Error(1)
}

func (m *MockRefundRepo) Save(refund *models.Refund) error {
	args := m.Called(refund)
	return args.Error(0)
}

func (m *MockRefundRepo) AppendTimeline(entry *models.RefundTimelineEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockRefundRepo) CountByStatus(merchantID uint) (map[string]int64, error) {
	args := m.Called(merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockRefundRepo) SumAmountByStatus(merchantID uint, status string) (int64, error) {
	args := m.Called(merchantID, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockMetricsRepo struct {
	mock.Mock
}

func (m *MockMetricsRepo) Get(merchantID uint) (*models.UsageMetrics, error) {
	args := m.Called(merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageMetrics), args.Error(1)
}

func (m *MockMetricsRepo) GetOrCreate(merchantID uint) (*models.UsageMetrics, error) {
	args := m.Called(merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageMetrics), args.Error(1)
}

func (m *MockMetricsRepo) AddRefund(merchantID uint, amountPaise int64) error {
	args := m.Called(merchantID, amountPaise)
	return args.Error(0)
}

func (m *MockMetricsRepo) RecordSettlement(merchantID uint, amountPaise int64) error {
	args := m.Called(merchantID, amountPaise)
	return args.Error(0)
}

func (m *MockMetricsRepo) RecordFailure(merchantID uint, amountPaise int64) error {
	args := m.Called(merchantID, amountPaise)
	return args.Error(0)
}

func TestGetMerchantDashboard(t *testing.T) {
	merchants := new(MockMerchantRepo)
	refunds := new(MockRefundRepo)
	metrics := new(MockMetricsRepo)

	// The billing service only reaches the merchant and metrics repos when
	// computing overage, so the gateway stays nil here.
	billingSvc := billing.NewService(merchants, nil, metrics, nil, nil, nil, nil)
	svc := NewService(refunds, metrics, merchants, billingSvc)

	cycleStart := time.Now().AddDate(0, 0, -12)
	merchant := &models.Merchant{ID: 1, PlanType: "starter", SubscriptionStatus: models.SubStatusActive}

	merchants.On("GetByID", uint(1)).Return(merchant, nil)
	refunds.On("CountByStatus", uint(1)).Return(map[string]int64{
		models.RefundStatusSettled:   80,
		models.RefundStatusInitiated: 40,
	}, nil)
	refunds.On("Recent", uint(1), 5).Return([]models.Refund{{PublicID: "pub-1"}}, nil)
	refunds.On("SumAmountByStatus", uint(1), models.RefundStatusSettled).Return(int64(700000), nil)
	metrics.On("Get", uint(1)).Return(&models.UsageMetrics{
		MerchantID:           1,
		TotalRefundsCount:    120,
		SettledAmountPaise:   400000,
		LiabilityAmountPaise: 150000,
		StuckAmountPaise:     20000,
		CycleStartedAt:       cycleStart,
	}, nil)

	dash, err := svc.GetMerchantDashboard(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "starter", dash.PlanType)
	assert.Equal(t, models.SubStatusActive, dash.SubscriptionStatus)
	assert.Equal(t, int64(120), dash.TotalRefundsCount)
	assert.Equal(t, int64(400000), dash.SettledAmountPaise)
	assert.Equal(t, int64(700000), dash.LifetimeSettledPaise)
	assert.Equal(t, int64(100), dash.UsageLimit)
	assert.Equal(t, int64(20*15*100), dash.Overage.AmountInPaise)
	assert.Len(t, dash.RecentRefunds, 1)
	assert.Equal(t, cycleStart, dash.CycleStartedAt)

	merchants.AssertExpectations(t)
	refunds.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestGetMerchantDashboard_MetricsErrors(t *testing.T) {
	newDeps := func() (*MockMerchantRepo, *MockRefundRepo, *MockMetricsRepo, Service) {
		merchants := new(MockMerchantRepo)
		refunds := new(MockRefundRepo)
		metrics := new(MockMetricsRepo)
		billingSvc := billing.NewService(merchants, nil, metrics, nil, nil, nil, nil)
		svc := NewService(refunds, metrics, merchants, billingSvc)

		merchants.On("GetByID", uint(1)).Return(&models.Merchant{ID: 1, PlanType: "starter"}, nil)
		refunds.On("CountByStatus", uint(1)).Return(map[string]int64{}, nil)
		refunds.On("Recent", uint(1), 5).Return([]models.Refund{}, nil)
		refunds.On("SumAmountByStatus", uint(1), models.RefundStatusSettled).Return(int64(0), nil)
		return merchants, refunds, metrics, svc
	}

	t.Run("missing metrics row is tolerated", func(t *testing.T) {
		_, _, metrics, svc := newDeps()
		metrics.On("Get", uint(1)).Return(nil, repositories.ErrMetricsNotFound)

		dash, err := svc.GetMerchantDashboard(context.Background(), 1)
		assert.NoError(t, err)
		assert.Zero(t, dash.TotalRefundsCount)
		assert.Equal(t, int64(100), dash.UsageLimit)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		_, _, metrics, svc := newDeps()
		dbErr := errors.New("connection reset")
		// First lookup feeds the overage preview, the second the counters.
		metrics.On("Get", uint(1)).Return(&models.UsageMetrics{MerchantID: 1}, nil).Once()
		metrics.On("Get", uint(1)).Return(nil, dbErr)

		_, err := svc.GetMerchantDashboard(context.Background(), 1)
		assert.ErrorIs(t, err, dbErr)
	})
}
