package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"refundly/internal/gateway"
	"refundly/internal/models"
	"refundly/internal/repositories"
)

// Gateway webhook event names this service reconciles.
const (
	eventSubscriptionCharged       = "subscription.charged"
	eventSubscriptionAuthenticated = "subscription.authenticated"
	eventSubscriptionHalted        = "subscription.halted"
	eventSubscriptionCancelled     = "subscription.cancelled"
)

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type subscriptionEntity struct {
	ID            string                 `json:"id"`
	PlanID        string                 `json:"plan_id"`
	Status        string                 `json:"status"`
	PaymentMethod string                 `json:"payment_method"`
	Notes         map[string]interface{} `json:"notes"`
}

type paymentEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

// HandleWebhook verifies and reconciles one gateway event. Delivery is
// at-least-once and unordered with respect to retries; every branch below is
// idempotent against redelivery.
//
// Signature verification fails closed: nothing is parsed and no state is
// touched on a mismatch.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return nil, ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch event.Event {
	case eventSubscriptionCharged:
		return s.reconcileCharge(ctx, &event)

	case eventSubscriptionAuthenticated:
		// Mandate verified but no money collected yet. Not a durable state
		// transition: activation waits for the charged event, otherwise a
		// merchant whose first charge fails would be billed as active.
		log.Printf("billing: subscription %s authenticated, awaiting first charge",
			event.Payload.Subscription.Entity.ID)
		return &WebhookResult{Status: WebhookStatusOK}, nil

	case eventSubscriptionHalted:
		return s.applyTerminalStatus(ctx, &event, models.SubStatusSuspended)

	case eventSubscriptionCancelled:
		return s.applyTerminalStatus(ctx, &event, models.SubStatusCancelled)

	default:
		// Acknowledge with success so the gateway does not retry events this
		// system intentionally ignores.
		log.Printf("billing: ignoring webhook event %q", event.Event)
		return &WebhookResult{Status: WebhookStatusOK}, nil
	}
}

// reconcileCharge is the only path that activates a merchant. On success it
// applies the merchant update, the payment record and the counter reset in one
// transaction; the overage add-on and the confirmation email stay outside as
// best-effort side effects.
func (s *Service) reconcileCharge(ctx context.Context, event *webhookEvent) (*WebhookResult, error) {
	sub := event.Payload.Subscription.Entity
	payment := event.Payload.Payment.Entity

	if payment.ID == "" {
		log.Printf("billing: charged event for subscription %s carries no payment id", sub.ID)
		return &WebhookResult{Status: WebhookStatusIgnoredNoPaymentID}, nil
	}

	// Idempotency: the same charged event may arrive multiple times.
	if _, err := s.payments.GetByGatewayPaymentID(payment.ID); err == nil {
		log.Printf("billing: payment %s already recorded, ignoring redelivery", payment.ID)
		return &WebhookResult{Status: WebhookStatusIgnoredDuplicate}, nil
	} else if !errors.Is(err, repositories.ErrPaymentNotFound) {
		return nil, err
	}

	merchant, err := s.merchantForEvent(&sub)
	if err != nil {
		// Acknowledge so the gateway stops redelivering an event this system
		// can never reconcile; a 5xx here would retry forever.
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			log.Printf("billing: charged event for unknown subscription %s", sub.ID)
			return &WebhookResult{Status: WebhookStatusOK}, nil
		}
		return nil, err
	}

	// The event only carries the gateway plan id; map it back to the plan key.
	// A miss is a reachable misconfiguration: log loudly and keep the
	// merchant's previous plan rather than corrupting state.
	planType, ok := s.cfg.PlanKeyByID(sub.PlanID)
	if !ok {
		log.Printf("billing: ALERT no internal plan maps to gateway plan %q, keeping merchant %d on plan %q",
			sub.PlanID, merchant.ID, merchant.PlanType)
		planType = merchant.PlanType
	}

	// Overage from the cycle that just ended, computed before counters reset.
	overage, err := s.CalculateOverage(ctx, merchant.ID)
	if err != nil {
		return nil, err
	}

	if overage.AmountInPaise > 0 {
		// Failing to collect an overage fee must not also fail acknowledging
		// the primary subscription charge.
		bestEffort("overage addon", func() error {
			return s.gateway.CreateAddon(ctx, sub.ID, gateway.AddonParams{
				Name:        fmt.Sprintf("Refund overage (%d over %d)", overage.Usage, overage.Limit),
				AmountPaise: overage.AmountInPaise,
				Currency:    s.cfg.Currency,
			})
		})
	}

	now := time.Now()
	merchant.SubscriptionStatus = models.SubStatusActive
	merchant.LastPaymentAt = &now
	merchant.PlanType = planType
	merchant.UpcomingPlan = ""
	merchant.UpcomingPlanDate = nil
	// Adopt the (possibly rotated) subscription id the gateway reports.
	merchant.SubscriptionID = sub.ID

	record := &models.PaymentRecord{
		MerchantID:       merchant.ID,
		GatewayPaymentID: payment.ID,
		SubscriptionID:   sub.ID,
		AmountPaise:      payment.Amount,
		Currency:         payment.Currency,
		Method:           payment.Method,
		PlanType:         planType,
		Usage:            overage.Usage,
		UsageLimit:       overage.Limit,
		ExcessRate:       overage.ExcessRate,
		PaidAt:           now,
	}

	if err := s.billing.ApplyCharge(merchant, record, now); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		bestEffort("payment confirmation email", func() error {
			return s.notifier.SendPaymentConfirmation(ctx, merchant, record)
		})
	}

	return &WebhookResult{Status: WebhookStatusOK}, nil
}

// applyTerminalStatus handles halted and cancelled events: a plain
// last-write-wins status update, idempotent by construction.
func (s *Service) applyTerminalStatus(ctx context.Context, event *webhookEvent, status string) (*WebhookResult, error) {
	sub := event.Payload.Subscription.Entity

	merchant, err := s.merchantForEvent(&sub)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			log.Printf("billing: %s event for unknown subscription %s", event.Event, sub.ID)
			return &WebhookResult{Status: WebhookStatusOK}, nil
		}
		return nil, err
	}

	merchant.SubscriptionStatus = status
	if err := s.merchants.Update(merchant); err != nil {
		return nil, err
	}
	return &WebhookResult{Status: WebhookStatusOK}, nil
}

// merchantForEvent resolves the merchant from the notes attached at
// subscription creation, falling back to the stored subscription id.
func (s *Service) merchantForEvent(sub *subscriptionEntity) (*models.Merchant, error) {
	if id, ok := merchantIDFromNotes(sub.Notes); ok {
		merchant, err := s.merchants.GetByID(id)
		if err == nil {
			return merchant, nil
		}
		if !errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, err
		}
	}
	return s.merchants.GetBySubscriptionID(sub.ID)
}

func merchantIDFromNotes(notes map[string]interface{}) (uint, bool) {
	switch v := notes["merchant_id"].(type) {
	case float64:
		return uint(v), true
	case string:
		var id uint
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			return id, true
		}
	}
	return 0, false
}

// bestEffort runs a named non-fatal side effect. This is the explicit policy
// for enrichment calls: failures are logged and swallowed so the primary flow
// still completes.
func bestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("billing: best-effort %s failed: %v", name, err)
	}
}
