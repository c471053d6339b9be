package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

type VerificationHandler struct {
	verification *services.VerificationService
}

func NewVerificationHandler(verification *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

func (h *VerificationHandler) Setup(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}

	var req dto.VerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	channel, ok := parseChannel(req.Channel)
	if !ok {
		return badRequest(c, "channel must be email or phone")
	}

	if err := h.verification.Setup(c.Context(), userID, channel); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Verification code sent"})
}

func (h *VerificationHandler) Verify(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}

	var req dto.VerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	channel, ok := parseChannel(req.Channel)
	if !ok {
		return badRequest(c, "channel must be email or phone")
	}

	if err := h.verification.Verify(c.Context(), userID, channel, req.Code); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Verified successfully"})
}

func parseChannel(raw string) (services.Channel, bool) {
	switch raw {
	case "email":
		return services.ChannelEmail, true
	case "phone":
		return services.ChannelPhone, true
	}
	return "", false
}
