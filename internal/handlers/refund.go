package handlers

import (
	"errors"

	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/refund"
	"refundly/internal/utils/pagination"
	"refundly/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type RefundHandler struct {
	refundService *refund.Service
}

func NewRefundHandler(refundService *refund.Service) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

func (h *RefundHandler) CreateRefund(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input refund.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	created, err := h.refundService.Create(c.Context(), claims.MerchantID, input)
	if err != nil {
		return refundError(c, err)
	}
	return response.Success(c, "Refund created", created)
}

func (h *RefundHandler) GetRefund(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	found, err := h.refundService.Get(c.Context(), claims.MerchantID, c.Params("id"))
	if err != nil {
		return refundError(c, err)
	}
	return c.JSON(found)
}

func (h *RefundHandler) ListRefunds(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	p := pagination.ParseFromRequest(c)

	refunds, total, err := h.refundService.List(c.Context(), claims.MerchantID, c.Query("status"), p.Offset, p.Limit)
	if err != nil {
		return refundError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, refunds))
}

func (h *RefundHandler) UpdateRefundStatus(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		Status string `json:"status"`
		Note   string `json:"note"`
		UTR    string `json:"utr"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	updated, err := h.refundService.UpdateStatus(c.Context(), claims.MerchantID, c.Params("id"), input.Status, input.Note, input.UTR)
	if err != nil {
		return refundError(c, err)
	}
	return response.Success(c, "Refund updated", updated)
}

func (h *RefundHandler) BulkImport(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		Refunds []refund.CreateInput `json:"refunds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.refundService.BulkImport(c.Context(), claims.MerchantID, input.Refunds)
	if err != nil {
		return refundError(c, err)
	}
	return response.Success(c, "Import finished", result)
}

func (h *RefundHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		RefundIDs []string `json:"refund_ids"`
		Status    string   `json:"status"`
		Note      string   `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if len(input.RefundIDs) == 0 {
		return response.BadRequest(c, "refund_ids is required")
	}

	updated, failed, err := h.refundService.BulkUpdateStatus(c.Context(), claims.MerchantID, input.RefundIDs, input.Status, input.Note)
	if err != nil {
		return refundError(c, err)
	}
	return response.Success(c, "Bulk update finished", fiber.Map{
		"updated": updated,
		"failed":  failed,
	})
}

func refundError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrRefundNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, refund.ErrInvalidAmount),
		errors.Is(err, refund.ErrInvalidStatus),
		errors.Is(err, refund.ErrInvalidTransition),
		errors.Is(err, refund.ErrMissingUTR),
		errors.Is(err, refund.ErrEmptyBatch):
		return response.BadRequest(c, err.Error())
	}
	return response.ServerError(c, err.Error())
}
