package handlers

import (
	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/services/auth"
	"refundly/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MerchantHandler struct {
	merchants   repositories.MerchantRepository
	authService auth.Service
}

func NewMerchantHandler(merchants repositories.MerchantRepository, authService auth.Service) *MerchantHandler {
	return &MerchantHandler{merchants: merchants, authService: authService}
}

func (h *MerchantHandler) GetMerchantProfile(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	merchant, err := h.merchants.GetByID(claims.MerchantID)
	if err != nil {
		return response.NotFound(c, "Merchant profile not found")
	}

	profile := fiber.Map{"merchant": merchant}
	if user, err := h.authService.GetUserByID(claims.UserID); err == nil {
		profile["account"] = fiber.Map{
			"email": user.Email,
			"name":  user.Name,
			"phone": user.Phone,
		}
	}
	return c.JSON(profile)
}

// UpdateMerchantProfile updates business settings. Subscription fields are
// deliberately not writable here; only the billing flows touch them.
func (h *MerchantHandler) UpdateMerchantProfile(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		BusinessName    string `json:"business_name"`
		SLADays         int    `json:"sla_days"`
		PreferredMethod string `json:"preferred_method"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	merchant, err := h.merchants.GetByID(claims.MerchantID)
	if err != nil {
		return response.NotFound(c, "Merchant profile not found")
	}

	if input.BusinessName != "" {
		merchant.BusinessName = input.BusinessName
	}
	if input.SLADays > 0 {
		merchant.SLADays = input.SLADays
	}
	if input.PreferredMethod != "" {
		merchant.PreferredMethod = input.PreferredMethod
	}

	if err := h.merchants.Update(merchant); err != nil {
		return response.ServerError(c, "Failed to update merchant profile")
	}
	return response.Success(c, "Profile updated successfully", merchant)
}
