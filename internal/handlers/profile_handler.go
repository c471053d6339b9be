package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}

	profile, err := h.profiles.Get(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(profile)
}
