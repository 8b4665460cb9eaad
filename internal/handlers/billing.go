package handlers

import (
	"errors"

	"refundly/internal/config"
	"refundly/internal/gateway"
	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/billing"
	"refundly/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BillingHandler struct {
	billingService *billing.Service
	cfg            *config.Billing
}

func NewBillingHandler(billingService *billing.Service, cfg *config.Billing) *BillingHandler {
	return &BillingHandler{billingService: billingService, cfg: cfg}
}

// GetPlans serves the plan catalog with GST breakdowns for the pricing page.
func (h *BillingHandler) GetPlans(c *fiber.Ctx) error {
	type pricedPlan struct {
		billing.Plan
		Tax billing.TaxBreakdown `json:"tax"`
	}

	plans := billing.PlanList()
	priced := make([]pricedPlan, 0, len(plans))
	for _, p := range plans {
		priced = append(priced, pricedPlan{
			Plan: p,
			Tax:  billing.CalculateGST(float64(p.BasePrice), h.cfg.GSTRate),
		})
	}
	return response.Success(c, "Plans", priced)
}

func (h *BillingHandler) CreateSubscription(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		PlanType string `json:"planType"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.PlanType == "" {
		return response.BadRequest(c, "planType is required")
	}

	result, err := h.billingService.CreateSubscription(c.Context(), claims.MerchantID, input.PlanType)
	if err != nil {
		return billingError(c, err)
	}

	return c.JSON(fiber.Map{
		"subscriptionId": result.SubscriptionID,
		"t":              result.CreatedAt,
	})
}

func (h *BillingHandler) UpdateSubscription(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		NewPlanType string `json:"newPlanType"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.NewPlanType == "" {
		return response.BadRequest(c, "newPlanType is required")
	}

	result, err := h.billingService.UpdateSubscription(c.Context(), claims.MerchantID, input.NewPlanType)
	if err != nil {
		return billingError(c, err)
	}

	body := fiber.Map{
		"success": true,
		"mode":    result.Mode,
	}
	if result.EffectiveDate != nil {
		body["effectiveDate"] = result.EffectiveDate
	}
	return c.JSON(body)
}

func (h *BillingHandler) CancelSubscription(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.SubscriptionID == "" {
		return response.BadRequest(c, "subscriptionId is required")
	}

	if err := h.billingService.CancelSubscription(c.Context(), claims.MerchantID, input.SubscriptionID); err != nil {
		return billingError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  models.SubStatusCancelled,
	})
}

// GetOverage previews the current cycle's excess fee without charging it.
func (h *BillingHandler) GetOverage(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	result, err := h.billingService.CalculateOverage(c.Context(), claims.MerchantID)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return c.JSON(result)
}

// billingError maps billing service errors onto the HTTP error taxonomy:
// client errors 400, conflicts 409, missing merchants 404, configuration 500,
// gateway failures 502 with the gateway's own description passed through.
func billingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrAlreadySubscribed):
		return response.ErrorWithCode(c, fiber.StatusConflict, "ALREADY_SUBSCRIBED", err.Error())
	case errors.Is(err, billing.ErrUPIRestriction):
		return response.ErrorWithCode(c, fiber.StatusBadRequest, "UPI_RESTRICTION", err.Error())
	case errors.Is(err, billing.ErrUnknownPlan),
		errors.Is(err, billing.ErrNoSubscription):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, billing.ErrPlanNotConfigured):
		return response.ServerError(c, err.Error())
	case errors.Is(err, repositories.ErrMerchantNotFound):
		return response.NotFound(c, err.Error())
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return response.BadGateway(c, gwErr.Description)
	}
	return response.ServerError(c, err.Error())
}
