package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

type PasswordHandler struct {
	passwords *services.PasswordService
}

func NewPasswordHandler(passwords *services.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwords: passwords}
}

func (h *PasswordHandler) Change(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return badRequest(c, "New password must be at least 8 characters")
	}

	if err := h.passwords.ChangePassword(c.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password changed successfully"})
}

func (h *PasswordHandler) Forgot(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.passwords.ForgotPassword(c.Context(), req.Email); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password reset email sent"})
}

func (h *PasswordHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return badRequest(c, "New password must be at least 8 characters")
	}

	access, err := h.passwords.ResetPassword(c.Context(), req.Token, req.NewPassword)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Password reset successfully",
		"access_token": access,
	})
}
