// Package billing implements the subscription lifecycle and its webhook
// reconciliation against the payment gateway.
//
// Merchant-initiated calls (create/update/cancel) record local intent and call
// the gateway; the gateway's signed webhook later confirms what actually
// happened and is the source of truth for whether a subscription is active.
package billing

import (
	"context"
	"errors"
	"log"
	"time"

	"refundly/internal/config"
	"refundly/internal/gateway"
	"refundly/internal/models"
	"refundly/internal/repositories"
)

// indefiniteCycles stands in for "renew until cancelled": the gateway requires
// a fixed total cycle count, so we ask for ten years of monthly cycles.
const indefiniteCycles = 120

// paymentMethodUPI is the gateway's payment method identifier for UPI
// mandates, which cannot be rescheduled at cycle end.
const paymentMethodUPI = "upi"

// Notifier sends best-effort merchant emails. Implementations must be safe to
// fail; errors are logged, never propagated.
type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, merchant *models.Merchant, record *models.PaymentRecord) error
}

// Service owns subscription state transitions for merchants.
type Service struct {
	merchants repositories.MerchantRepository
	payments  repositories.PaymentRecordRepository
	metrics   repositories.MetricsRepository
	billing   repositories.BillingRepository
	gateway   gateway.Client
	cfg       *config.Billing
	notifier  Notifier
}

func NewService(
	merchants repositories.MerchantRepository,
	payments repositories.PaymentRecordRepository,
	metrics repositories.MetricsRepository,
	billingRepo repositories.BillingRepository,
	gatewayClient gateway.Client,
	cfg *config.Billing,
	notifier Notifier,
) *Service {
	return &Service{
		merchants: merchants,
		payments:  payments,
		metrics:   metrics,
		billing:   billingRepo,
		gateway:   gatewayClient,
		cfg:       cfg,
		notifier:  notifier,
	}
}

// CreateSubscription starts a recurring subscription for the merchant. It does
// NOT mark the merchant active: activation is deferred to the charged webhook,
// so a client-reported success is never trusted.
func (s *Service) CreateSubscription(ctx context.Context, merchantID uint, planType string) (*CreateResult, error) {
	if _, ok := GetPlan(planType); !ok {
		return nil, ErrUnknownPlan
	}

	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		return nil, err
	}

	if merchant.Subscribed() {
		return nil, ErrAlreadySubscribed
	}

	planID, ok := s.cfg.PlanID(planType)
	if !ok {
		log.Printf("billing: no gateway plan id configured for plan %q (merchant %d)", planType, merchantID)
		return nil, ErrPlanNotConfigured
	}

	sub, err := s.gateway.CreateSubscription(ctx, gateway.CreateSubscriptionParams{
		PlanID:     planID,
		TotalCount: indefiniteCycles,
		Notes:      map[string]interface{}{"merchant_id": merchant.ID},
	})
	if err != nil {
		return nil, err
	}

	// Record the intent; status stays pending_payment until the charge
	// webhook confirms money was collected.
	merchant.SubscriptionID = sub.ID
	if err := s.merchants.Update(merchant); err != nil {
		return nil, err
	}

	return &CreateResult{SubscriptionID: sub.ID, CreatedAt: sub.CreatedAt}, nil
}

// UpdateSubscription switches the merchant to a new plan. Upgrades take effect
// immediately; downgrades are scheduled for the cycle end so mid-cycle revenue
// is never reduced.
func (s *Service) UpdateSubscription(ctx context.Context, merchantID uint, newPlanType string) (*UpdateResult, error) {
	newPlan, ok := GetPlan(newPlanType)
	if !ok {
		return nil, ErrUnknownPlan
	}

	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		return nil, err
	}

	if merchant.SubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	currentPlan, ok := GetPlan(merchant.PlanType)
	if !ok {
		log.Printf("billing: merchant %d carries unknown plan %q", merchant.ID, merchant.PlanType)
		return nil, ErrUnknownPlan
	}

	if s.paysByUPI(ctx, merchant) {
		return nil, ErrUPIRestriction
	}

	planID, ok := s.cfg.PlanID(newPlanType)
	if !ok {
		log.Printf("billing: no gateway plan id configured for plan %q (merchant %d)", newPlanType, merchantID)
		return nil, ErrPlanNotConfigured
	}

	if newPlan.BasePrice > currentPlan.BasePrice {
		// Upgrade: apply now, the gateway prorates the difference.
		if err := s.gateway.UpdateSubscription(ctx, merchant.SubscriptionID, planID, true); err != nil {
			return nil, err
		}

		merchant.PlanType = newPlanType
		merchant.UpcomingPlan = ""
		merchant.UpcomingPlanDate = nil
		if err := s.merchants.Update(merchant); err != nil {
			return nil, err
		}
		return &UpdateResult{Mode: ModeUpgrade}, nil
	}

	// Downgrade: schedule at cycle end, keep billing the current plan.
	if err := s.gateway.UpdateSubscription(ctx, merchant.SubscriptionID, planID, false); err != nil {
		return nil, err
	}

	effective := downgradeEffectiveDate(merchant.LastPaymentAt, time.Now())
	merchant.UpcomingPlan = newPlanType
	merchant.UpcomingPlanDate = &effective
	if err := s.merchants.Update(merchant); err != nil {
		return nil, err
	}
	return &UpdateResult{Mode: ModeDowngrade, EffectiveDate: &effective}, nil
}

// CancelSubscription cancels immediately at the gateway. A gateway bad-request
// means the subscription is already gone there; local state is converged to
// cancelled either way, so retries after partial failures are safe.
func (s *Service) CancelSubscription(ctx context.Context, merchantID uint, subscriptionID string) error {
	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		return err
	}

	// The merchant may only cancel its own subscription.
	if merchant.SubscriptionID == "" || merchant.SubscriptionID != subscriptionID {
		return ErrNoSubscription
	}

	if err := s.gateway.CancelSubscription(ctx, subscriptionID); err != nil {
		var gwErr *gateway.Error
		if !errors.As(err, &gwErr) || !gwErr.BadRequest() {
			return err
		}
		log.Printf("billing: subscription %s already cancelled at gateway: %v", subscriptionID, err)
	}

	merchant.SubscriptionStatus = models.SubStatusCancelled
	return s.merchants.Update(merchant)
}

// paysByUPI detects the restricted payment method from the gateway's
// subscription object, falling back to the most recent local payment record.
// Both lookups are best-effort: an unknown method does not block the update.
func (s *Service) paysByUPI(ctx context.Context, merchant *models.Merchant) bool {
	sub, err := s.gateway.FetchSubscription(ctx, merchant.SubscriptionID)
	if err == nil && sub.PaymentMethod != "" {
		return sub.PaymentMethod == paymentMethodUPI
	}
	if err != nil {
		log.Printf("billing: payment method lookup failed for subscription %s: %v", merchant.SubscriptionID, err)
	}

	latest, err := s.payments.Latest(merchant.ID)
	if err != nil {
		return false
	}
	return latest.Method == paymentMethodUPI
}

// downgradeEffectiveDate approximates the next billing anchor as the last
// payment date plus 30 days. When the last payment date is stale enough that
// the result is already past, it falls forward to today plus 30 days. Known
// approximation: this drifts for non-30-day cycles.
func downgradeEffectiveDate(lastPaymentAt *time.Time, now time.Time) time.Time {
	fallback := now.AddDate(0, 0, 30)
	if lastPaymentAt == nil {
		return fallback
	}

	effective := lastPaymentAt.AddDate(0, 0, 30)
	if effective.Before(now) {
		return fallback
	}
	return effective
}
