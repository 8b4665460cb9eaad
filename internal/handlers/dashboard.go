package handlers

import (
	"refundly/internal/models"
	"refundly/internal/services/dashboard"
	"refundly/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) GetMerchantDashboard(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	dash, err := h.dashboardService.GetMerchantDashboard(c.Context(), claims.MerchantID)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return c.JSON(dash)
}
