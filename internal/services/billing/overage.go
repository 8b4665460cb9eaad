package billing

import (
	"context"
	"errors"
	"log"

	"refundly/internal/repositories"
)

// CalculateOverage computes the excess fee for the merchant's current cycle.
// It is read-only; the caller decides whether to charge.
//
// A missing merchant, unknown plan or missing metrics row returns a zeroed
// result instead of an error: overage is billing enrichment, and a data gap
// must not block the webhook flow that calls this.
func (s *Service) CalculateOverage(ctx context.Context, merchantID uint) (*OverageResult, error) {
	zero := &OverageResult{}

	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			log.Printf("billing: overage requested for missing merchant %d", merchantID)
			return zero, nil
		}
		return nil, err
	}

	plan, ok := GetPlan(merchant.PlanType)
	if !ok {
		log.Printf("billing: merchant %d has unknown plan %q, skipping overage", merchantID, merchant.PlanType)
		return zero, nil
	}

	metrics, err := s.metrics.Get(merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMetricsNotFound) {
			return &OverageResult{Limit: plan.Limit, ExcessRate: plan.ExcessRate}, nil
		}
		return nil, err
	}

	excess := metrics.TotalRefundsCount - plan.Limit
	if excess < 0 {
		excess = 0
	}

	return &OverageResult{
		AmountInPaise: excess * plan.ExcessRate * 100,
		Usage:         metrics.TotalRefundsCount,
		Limit:         plan.Limit,
		ExcessRate:    plan.ExcessRate,
	}, nil
}
