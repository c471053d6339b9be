package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

// serviceError maps the service error taxonomy onto HTTP statuses. Every
// enumerated kind keeps its own message; only genuinely unexpected errors
// collapse into a 500.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNoPendingOTP):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrEmailTakenGoogle):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrBadOldPassword),
		errors.Is(err, services.ErrOTPMismatch),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrTempTokenInvalid),
		errors.Is(err, services.ErrRefreshTokenInvalid),
		errors.Is(err, services.ErrNoValidRefreshToken),
		errors.Is(err, services.ErrInvalidGoogleToken):
		status = fiber.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, services.ErrAccountInactive):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrWrongProvider),
		errors.Is(err, services.ErrMalformedRefreshToken),
		errors.Is(err, services.ErrResetTokenInvalid),
		errors.Is(err, services.ErrNoActiveOTPSession),
		errors.Is(err, services.ErrAlreadyVerified):
		status = fiber.StatusBadRequest
		message = err.Error()
	default:
		slog.Error("unhandled service error", "error", err, "path", c.Path())
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: message})
}
