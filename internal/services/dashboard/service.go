// Package dashboard aggregates the merchant-facing metrics view.
package dashboard

import (
	"context"
	"errors"
	"time"

	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/billing"
)

type Service interface {
	GetMerchantDashboard(ctx context.Context, merchantID uint) (*MerchantDashboard, error)
}

// MerchantDashboard is the aggregate the dashboard page renders.
type MerchantDashboard struct {
	PlanType           string     `json:"plan_type"`
	SubscriptionStatus string     `json:"subscription_status"`
	UpcomingPlan       string     `json:"upcoming_plan,omitempty"`
	UpcomingPlanDate   *time.Time `json:"upcoming_plan_date,omitempty"`

	StatusCounts map[string]int64 `json:"status_counts"`

	TotalRefundsCount    int64 `json:"total_refunds_count"`
	SettledAmountPaise   int64 `json:"settled_amount_paise"`
	LiabilityAmountPaise int64 `json:"liability_amount_paise"`
	StuckAmountPaise     int64 `json:"stuck_amount_paise"`

	// LifetimeSettledPaise sums settled refund rows across all cycles, unlike
	// the counters above which reset when a charge reconciles.
	LifetimeSettledPaise int64 `json:"lifetime_settled_paise"`

	UsageLimit     int64                  `json:"usage_limit"`
	Overage        *billing.OverageResult `json:"overage"`
	CycleStartedAt time.Time              `json:"cycle_started_at"`

	RecentRefunds []models.Refund `json:"recent_refunds"`
}

type service struct {
	refunds   repositories.RefundRepository
	metrics   repositories.MetricsRepository
	merchants repositories.MerchantRepository
	billing   *billing.Service
}

func NewService(
	refunds repositories.RefundRepository,
	metrics repositories.MetricsRepository,
	merchants repositories.MerchantRepository,
	billingSvc *billing.Service,
) Service {
	return &service{
		refunds:   refunds,
		metrics:   metrics,
		merchants: merchants,
		billing:   billingSvc,
	}
}

func (s *service) GetMerchantDashboard(ctx context.Context, merchantID uint) (*MerchantDashboard, error) {
	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		return nil, err
	}

	counts, err := s.refunds.CountByStatus(merchantID)
	if err != nil {
		return nil, err
	}

	recent, err := s.refunds.Recent(merchantID, 5)
	if err != nil {
		return nil, err
	}

	lifetimeSettled, err := s.refunds.SumAmountByStatus(merchantID, models.RefundStatusSettled)
	if err != nil {
		return nil, err
	}

	overage, err := s.billing.CalculateOverage(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	dash := &MerchantDashboard{
		PlanType:             merchant.PlanType,
		SubscriptionStatus:   merchant.SubscriptionStatus,
		UpcomingPlan:         merchant.UpcomingPlan,
		UpcomingPlanDate:     merchant.UpcomingPlanDate,
		StatusCounts:         counts,
		UsageLimit:           overage.Limit,
		Overage:              overage,
		LifetimeSettledPaise: lifetimeSettled,
		RecentRefunds:        recent,
	}

	// A merchant with no activity yet has no metrics row; anything else is a
	// real storage failure.
	metrics, err := s.metrics.Get(merchantID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMetricsNotFound) {
			return nil, err
		}
		return dash, nil
	}

	dash.TotalRefundsCount = metrics.TotalRefundsCount
	dash.SettledAmountPaise = metrics.SettledAmountPaise
	dash.LiabilityAmountPaise = metrics.LiabilityAmountPaise
	dash.StuckAmountPaise = metrics.StuckAmountPaise
	dash.CycleStartedAt = metrics.CycleStartedAt

	return dash, nil
}
