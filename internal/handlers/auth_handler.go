package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

type AuthHandler struct {
	auth      *services.AuthService
	twoFactor *services.TwoFactorService
}

func NewAuthHandler(auth *services.AuthService, twoFactor *services.TwoFactorService) *AuthHandler {
	return &AuthHandler{auth: auth, twoFactor: twoFactor}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, pair, err := h.auth.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.NewUserResponse(user),
	})
}

// Login verifies credentials and either issues a token pair or, for 2FA
// accounts, mails a code and returns the temporary token for the second
// step.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.auth.VerifyPassword(c.Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	if user.TwoFactorEnabled {
		tempToken, err := h.twoFactor.BeginLogin(c.Context(), user)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(dto.TwoFactorChallengeResponse{
			TwoFactorRequired: true,
			TempToken:         tempToken,
		})
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

func (h *AuthHandler) GoogleSignIn(c *fiber.Ctx) error {
	var req dto.GoogleSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.IDToken == "" {
		return badRequest(c, "Identity token is required")
	}

	user, pair, err := h.auth.GoogleSignIn(c.Context(), req.IDToken)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, pair, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}
	if err := h.auth.Logout(c.Context(), userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}
	if err := h.auth.LogoutAll(c.Context(), userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out on all devices"})
}
