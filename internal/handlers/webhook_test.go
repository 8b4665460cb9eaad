package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"refundly/internal/config"
	"refundly/internal/gateway"
	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/billing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

const testWebhookSecret = "test_webhook_secret"

// hmacGateway verifies signatures the same way the production client does, so
// the handler test exercises real signing end to end.
type hmacGateway struct {
	secret string
}

func (g *hmacGateway) CreateSubscription(ctx context.Context, params gateway.CreateSubscriptionParams) (*gateway.Subscription, error) {
	return &gateway.Subscription{ID: "sub_test"}, nil
}

func (g *hmacGateway) FetchSubscription(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	return &gateway.Subscription{ID: subscriptionID}, nil
}

func (g *hmacGateway) UpdateSubscription(ctx context.Context, subscriptionID, planID string, changeNow bool) error {
	return nil
}

func (g *hmacGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return nil
}

func (g *hmacGateway) CreateAddon(ctx context.Context, subscriptionID string, addon gateway.AddonParams) error {
	return nil
}

func (g *hmacGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type memMerchants struct {
	merchant *models.Merchant
	updated  bool
}

func (m *memMerchants) GetByID(id uint) (*models.Merchant, error) {
	if m.merchant != nil && m.merchant.ID == id {
		return m.merchant, nil
	}
	return nil, repositories.ErrMerchantNotFound
}

func (m *memMerchants) GetByUserID(userID uint) (*models.Merchant, error) {
	return nil, repositories.ErrMerchantNotFound
}

func (m *memMerchants) GetBySubscriptionID(subscriptionID string) (*models.Merchant, error) {
	if m.merchant != nil && m.merchant.SubscriptionID == subscriptionID {
		return m.merchant, nil
	}
	return nil, repositories.ErrMerchantNotFound
}

func (m *memMerchants) Create(merchant *models.Merchant) error { return nil }

func (m *memMerchants) Update(merchant *models.Merchant) error {
	m.updated = true
	return nil
}

type memPayments struct {
	byGatewayID map[string]*models.PaymentRecord
}

func (p *memPayments) Create(record *models.PaymentRecord) error {
	p.byGatewayID[record.GatewayPaymentID] = record
	return nil
}

func (p *memPayments) GetByGatewayPaymentID(id string) (*models.PaymentRecord, error) {
	if record, ok := p.byGatewayID[id]; ok {
		return record, nil
	}
	return nil, repositories.ErrPaymentNotFound
}

func (p *memPayments) Latest(merchantID uint) (*models.PaymentRecord, error) {
	return nil, repositories.ErrPaymentNotFound
}

func (p *memPayments) List(merchantID uint, offset, limit int) ([]models.PaymentRecord, int64, error) {
	return nil, 0, nil
}

type memMetrics struct {
	metrics *models.UsageMetrics
}

func (m *memMetrics) Get(merchantID uint) (*models.UsageMetrics, error) {
	if m.metrics != nil {
		return m.metrics, nil
	}
	return nil, repositories.ErrMetricsNotFound
}

func (m *memMetrics) GetOrCreate(merchantID uint) (*models.UsageMetrics, error) {
	return m.Get(merchantID)
}

func (m *memMetrics) AddRefund(merchantID uint, amountPaise int64) error        { return nil }
func (m *memMetrics) RecordSettlement(merchantID uint, amountPaise int64) error { return nil }
func (m *memMetrics) RecordFailure(merchantID uint, amountPaise int64) error    { return nil }

type memBilling struct {
	payments *memPayments
	applied  int
}

func (b *memBilling) ApplyCharge(merchant *models.Merchant, record *models.PaymentRecord, cycleStart time.Time) error {
	b.applied++
	return b.payments.Create(record)
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookApp(merchant *models.Merchant) (*fiber.App, *memBilling) {
	cfg := &config.Billing{
		WebhookSecret: testWebhookSecret,
		PlanIDs:       map[string]string{"starter": "plan_starter", "growth": "plan_growth"},
		Currency:      "INR",
	}
	payments := &memPayments{byGatewayID: make(map[string]*models.PaymentRecord)}
	billingRepo := &memBilling{payments: payments}

	svc := billing.NewService(
		&memMerchants{merchant: merchant},
		payments,
		&memMetrics{metrics: &models.UsageMetrics{MerchantID: merchant.ID, TotalRefundsCount: 10}},
		billingRepo,
		&hmacGateway{secret: testWebhookSecret},
		cfg,
		nil,
	)

	app := fiber.New()
	app.Post("/api/billing/webhook", NewWebhookHandler(svc).HandleGatewayWebhook)
	return app, billingRepo
}

func chargedBody(paymentID string) []byte {
	return []byte(`{
		"event": "subscription.charged",
		"payload": {
			"subscription": {"entity": {"id": "sub_1", "plan_id": "plan_starter", "notes": {"merchant_id": 1}}},
			"payment": {"entity": {"id": "` + paymentID + `", "amount": 117882, "currency": "INR", "method": "card"}}
		}
	}`)
}

func postWebhook(app *fiber.App, body []byte, signature string) (int, map[string]interface{}, error) {
	req := httptest.NewRequest("POST", "/api/billing/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}

	resp, err := app.Test(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var parsed map[string]interface{}
	_ = json.Unmarshal(raw, &parsed)
	return resp.StatusCode, parsed, nil
}

func TestHandleGatewayWebhook(t *testing.T) {
	newMerchant := func() *models.Merchant {
		return &models.Merchant{ID: 1, PlanType: "starter", SubscriptionID: "sub_1", SubscriptionStatus: models.SubStatusPendingPayment}
	}

	t.Run("missing signature header", func(t *testing.T) {
		app, repo := newWebhookApp(newMerchant())

		status, _, err := postWebhook(app, chargedBody("pay_1"), "")
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Zero(t, repo.applied)
	})

	t.Run("tampered body is rejected without mutation", func(t *testing.T) {
		app, repo := newWebhookApp(newMerchant())
		body := chargedBody("pay_1")
		signature := signBody(body)
		tampered := bytes.Replace(body, []byte("117882"), []byte("1"), 1)

		status, _, err := postWebhook(app, tampered, signature)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Zero(t, repo.applied)
	})

	t.Run("correctly signed charge reconciles", func(t *testing.T) {
		merchant := newMerchant()
		app, repo := newWebhookApp(merchant)
		body := chargedBody("pay_1")

		status, parsed, err := postWebhook(app, body, signBody(body))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "ok", parsed["status"])
		assert.Equal(t, 1, repo.applied)
		assert.Equal(t, models.SubStatusActive, merchant.SubscriptionStatus)
	})

	t.Run("redelivery is acknowledged but not reapplied", func(t *testing.T) {
		app, repo := newWebhookApp(newMerchant())
		body := chargedBody("pay_1")
		signature := signBody(body)

		status, parsed, err := postWebhook(app, body, signature)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "ok", parsed["status"])

		status, parsed, err = postWebhook(app, body, signature)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "ignored_duplicate", parsed["status"])
		assert.Equal(t, 1, repo.applied)
	})

	t.Run("malformed but signed body", func(t *testing.T) {
		app, _ := newWebhookApp(newMerchant())
		body := []byte(`{"event":`)

		status, _, err := postWebhook(app, body, signBody(body))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}
