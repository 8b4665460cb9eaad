package handlers

import (
	"refundly/internal/services/chatbot"
	"refundly/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ChatbotHandler struct {
	chatbotService *chatbot.Service
}

func NewChatbotHandler(chatbotService *chatbot.Service) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

func (h *ChatbotHandler) Message(c *fiber.Ctx) error {
	var input struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	return c.JSON(h.chatbotService.Respond(input.Message))
}
