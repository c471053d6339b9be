package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

type TwoFactorHandler struct {
	twoFactor *services.TwoFactorService
	auth      *services.AuthService
}

func NewTwoFactorHandler(twoFactor *services.TwoFactorService, auth *services.AuthService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor, auth: auth}
}

func (h *TwoFactorHandler) Setup(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}
	if err := h.twoFactor.Setup(c.Context(), userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Verification code sent"})
}

func (h *TwoFactorHandler) Verify(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}

	var req dto.VerifyTwoFactorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.twoFactor.Verify(c.Context(), userID, req.Code, req.Enable); err != nil {
		return serviceError(c, err)
	}
	if req.Enable {
		return c.JSON(dto.MessageResponse{Message: "Two-factor authentication enabled"})
	}
	return c.JSON(dto.MessageResponse{Message: "Two-factor authentication disabled"})
}

// CompleteLogin is the second step of a 2FA login: temp token plus mailed
// code in, token pair out.
func (h *TwoFactorHandler) CompleteLogin(c *fiber.Ctx) error {
	var req dto.TwoFactorLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.twoFactor.CompleteLogin(c.Context(), req.TempToken, req.Code)
	if err != nil {
		return serviceError(c, err)
	}

	pair, err := h.auth.Login(c.Context(), user)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.NewUserResponse(user),
	})
}

// Resend reissues the login code, accepting either the temp token or a
// bare user id.
func (h *TwoFactorHandler) Resend(c *fiber.Ctx) error {
	var req dto.ResendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.TempToken != "" {
		if err := h.twoFactor.ResendOTP(c.Context(), req.TempToken); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(dto.MessageResponse{Message: "Verification code resent"})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return badRequest(c, "temp_token or user_id is required")
	}
	if err := h.twoFactor.ResendForLogin(c.Context(), userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Verification code resent"})
}
