// Package refund implements the lifecycle of the product's core business
// object: customer refunds tracked by a merchant.
package refund

import (
	"context"
	"log"

	"refundly/internal/models"
	"refundly/internal/repositories"

	"github.com/google/uuid"
)

// allowedTransitions defines the legal forward moves of a refund. FAILED may
// be retried back into REFUND_INITIATED; SETTLED is terminal.
var allowedTransitions = map[string][]string{
	models.RefundStatusGatheringDetails: {models.RefundStatusInitiated, models.RefundStatusFailed},
	models.RefundStatusInitiated:        {models.RefundStatusProcessingAtBank, models.RefundStatusSettled, models.RefundStatusFailed},
	models.RefundStatusProcessingAtBank: {models.RefundStatusSettled, models.RefundStatusFailed},
	models.RefundStatusSettled:          {},
	models.RefundStatusFailed:           {models.RefundStatusInitiated},
}

// Notifier sends best-effort customer emails on settlement.
type Notifier interface {
	SendRefundSettled(ctx context.Context, refund *models.Refund) error
}

// CreateInput are the fields a merchant supplies for a new refund.
type CreateInput struct {
	OrderReference string `json:"order_reference"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`
	AmountPaise    int64  `json:"amount_paise"`
}

// BulkImportResult reports a batch import: created refunds plus per-row
// failures, keyed by the row's position in the input.
type BulkImportResult struct {
	BatchID  string           `json:"batch_id"`
	Imported int              `json:"imported"`
	Failed   map[int]string   `json:"failed,omitempty"`
	Refunds  []*models.Refund `json:"refunds"`
}

type Service struct {
	refunds  repositories.RefundRepository
	metrics  repositories.MetricsRepository
	notifier Notifier
}

func NewService(refunds repositories.RefundRepository, metrics repositories.MetricsRepository, notifier Notifier) *Service {
	return &Service{
		refunds:  refunds,
		metrics:  metrics,
		notifier: notifier,
	}
}

// Create records a new refund in GATHERING_DETAILS and bumps the merchant's
// cycle usage counter.
func (s *Service) Create(ctx context.Context, merchantID uint, input CreateInput) (*models.Refund, error) {
	if input.AmountPaise <= 0 {
		return nil, ErrInvalidAmount
	}

	refund := &models.Refund{
		PublicID:       uuid.NewString(),
		MerchantID:     merchantID,
		OrderReference: input.OrderReference,
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		CustomerPhone:  input.CustomerPhone,
		AmountPaise:    input.AmountPaise,
		Status:         models.RefundStatusGatheringDetails,
	}

	if err := s.refunds.Create(refund); err != nil {
		return nil, err
	}

	if err := s.refunds.AppendTimeline(&models.RefundTimelineEntry{
		RefundID: refund.ID,
		Status:   models.RefundStatusGatheringDetails,
		Note:     "refund created",
	}); err != nil {
		return nil, err
	}

	if err := s.metrics.AddRefund(merchantID, input.AmountPaise); err != nil {
		// Usage counters are billing enrichment; the refund itself is saved.
		log.Printf("refund: failed to bump usage counters for merchant %d: %v", merchantID, err)
	}

	return refund, nil
}

// Get loads one refund with its timeline, scoped to the merchant.
func (s *Service) Get(ctx context.Context, merchantID uint, publicID string) (*models.Refund, error) {
	return s.refunds.GetByPublicID(merchantID, publicID)
}

// List returns the merchant's refunds, optionally filtered by status.
func (s *Service) List(ctx context.Context, merchantID uint, status string, offset, limit int) ([]models.Refund, int64, error) {
	if status != "" && !models.ValidRefundStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.refunds.List(merchantID, status, offset, limit)
}

// UpdateStatus applies a validated transition, appends a timeline entry and
// keeps the cycle counters in sync. Timeline entries are never rewritten.
func (s *Service) UpdateStatus(ctx context.Context, merchantID uint, publicID, newStatus, note, utr string) (*models.Refund, error) {
	if !models.ValidRefundStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	refund, err := s.refunds.GetByPublicID(merchantID, publicID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(refund.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	if newStatus == models.RefundStatusSettled {
		if utr == "" {
			return nil, ErrMissingUTR
		}
		refund.UTR = utr
	}

	previous := refund.Status
	refund.Status = newStatus
	if err := s.refunds.Save(refund); err != nil {
		return nil, err
	}

	if err := s.refunds.AppendTimeline(&models.RefundTimelineEntry{
		RefundID: refund.ID,
		Status:   newStatus,
		Note:     note,
	}); err != nil {
		return nil, err
	}

	switch newStatus {
	case models.RefundStatusSettled:
		if err := s.metrics.RecordSettlement(merchantID, refund.AmountPaise); err != nil {
			log.Printf("refund: failed to record settlement for merchant %d: %v", merchantID, err)
		}
		if s.notifier != nil {
			if err := s.notifier.SendRefundSettled(ctx, refund); err != nil {
				log.Printf("refund: settlement email for %s failed: %v", refund.PublicID, err)
			}
		}
	case models.RefundStatusFailed:
		// Only count the failure once, on the first move into FAILED.
		if previous != models.RefundStatusFailed {
			if err := s.metrics.RecordFailure(merchantID, refund.AmountPaise); err != nil {
				log.Printf("refund: failed to record failure for merchant %d: %v", merchantID, err)
			}
		}
	}

	return refund, nil
}

// BulkImport creates many refunds under one batch id. Invalid rows are
// reported per index and do not abort the rest of the batch.
func (s *Service) BulkImport(ctx context.Context, merchantID uint, rows []CreateInput) (*BulkImportResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	result := &BulkImportResult{
		BatchID: uuid.NewString(),
		Failed:  make(map[int]string),
	}

	var refunds []*models.Refund
	for i, row := range rows {
		if row.AmountPaise <= 0 {
			result.Failed[i] = ErrInvalidAmount.Error()
			continue
		}
		refunds = append(refunds, &models.Refund{
			PublicID:       uuid.NewString(),
			MerchantID:     merchantID,
			OrderReference: row.OrderReference,
			CustomerName:   row.CustomerName,
			CustomerEmail:  row.CustomerEmail,
			CustomerPhone:  row.CustomerPhone,
			AmountPaise:    row.AmountPaise,
			Status:         models.RefundStatusGatheringDetails,
			ImportBatchID:  result.BatchID,
		})
	}

	if len(refunds) > 0 {
		if err := s.refunds.CreateBatch(refunds); err != nil {
			return nil, err
		}
		for _, refund := range refunds {
			if err := s.refunds.AppendTimeline(&models.RefundTimelineEntry{
				RefundID: refund.ID,
				Status:   models.RefundStatusGatheringDetails,
				Note:     "imported in batch " + result.BatchID,
			}); err != nil {
				return nil, err
			}
			if err := s.metrics.AddRefund(merchantID, refund.AmountPaise); err != nil {
				log.Printf("refund: failed to bump usage counters for merchant %d: %v", merchantID, err)
			}
		}
	}

	result.Imported = len(refunds)
	result.Refunds = refunds
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

// BulkUpdateStatus applies the same transition to many refunds, collecting
// per-refund failures instead of aborting.
func (s *Service) BulkUpdateStatus(ctx context.Context, merchantID uint, publicIDs []string, newStatus, note string) (updated []*models.Refund, failed map[string]string, err error) {
	if !models.ValidRefundStatus(newStatus) {
		return nil, nil, ErrInvalidStatus
	}

	failed = make(map[string]string)
	for _, id := range publicIDs {
		refund, uerr := s.UpdateStatus(ctx, merchantID, id, newStatus, note, "")
		if uerr != nil {
			failed[id] = uerr.Error()
			continue
		}
		updated = append(updated, refund)
	}
	if len(failed) == 0 {
		failed = nil
	}
	return updated, failed, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
