package billing

import (
	"context"
	"time"

	"refundly/internal/config"
	"refundly/internal/gateway"
	"refundly/internal/models"

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

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(record *models.PaymentRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByGatewayPaymentID(gatewayPaymentID string) (*models.PaymentRecord, error) {
	args := m.Called(gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepo) Latest(merchantID uint) (*models.PaymentRecord, error) {
	args := m.Called(merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepo) List(merchantID uint, offset, limit int) ([]models.PaymentRecord, int64, error) {
	args := m.Called(merchantID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.PaymentRecord), args.Get(1).(int64), args.Error(2)
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

type MockBillingRepo struct {
	mock.Mock
}

func (m *MockBillingRepo) ApplyCharge(merchant *models.Merchant, record *models.PaymentRecord, cycleStart time.Time) error {
	args := m.Called(merchant, record, cycleStart)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateSubscription(ctx context.Context, params gateway.CreateSubscriptionParams) (*gateway.Subscription, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Subscription), args.Error(1)
}

func (m *MockGateway) FetchSubscription(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Subscription), args.Error(1)
}

func (m *MockGateway) UpdateSubscription(ctx context.Context, subscriptionID, planID string, changeNow bool) error {
	args := m.Called(ctx, subscriptionID, planID, changeNow)
	return args.Error(0)
}

func (m *MockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockGateway) CreateAddon(ctx context.Context, subscriptionID string, addon gateway.AddonParams) error {
	args := m.Called(ctx, subscriptionID, addon)
	return args.Error(0)
}

func (m *MockGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPaymentConfirmation(ctx context.Context, merchant *models.Merchant, record *models.PaymentRecord) error {
	args := m.Called(ctx, merchant, record)
	return args.Error(0)
}

type testDeps struct {
	merchants *MockMerchantRepo
	payments  *MockPaymentRepo
	metrics   *MockMetricsRepo
	billing   *MockBillingRepo
	gateway   *MockGateway
	notifier  *MockNotifier
}

func testConfig() *config.Billing {
	return &config.Billing{
		KeyID:         "rzp_test_key",
		KeySecret:     "secret",
		WebhookSecret: "whsecret",
		PlanIDs: map[string]string{
			"starter": "plan_starter",
			"growth":  "plan_growth",
			"scale":   "plan_scale",
		},
		GSTRate:  0.18,
		Currency: "INR",
	}
}

func newTestService() (*Service, *testDeps) {
	deps := &testDeps{
		merchants: new(MockMerchantRepo),
		payments:  new(MockPaymentRepo),
		metrics:   new(MockMetricsRepo),
		billing:   new(MockBillingRepo),
		gateway:   new(MockGateway),
		notifier:  new(MockNotifier),
	}
	svc := NewService(deps.merchants, deps.payments, deps.metrics, deps.billing, deps.gateway, testConfig(), deps.notifier)
	return svc, deps
}
