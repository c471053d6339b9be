package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/config"
	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.AccessTokenSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// RequireFreshToken rejects access tokens whose embedded token_version no
// longer matches the account, which is what makes LogoutAll effective
// without a blacklist. It also refuses temporary 2FA tokens (they share
// the signing key but carry a purpose claim) and non-active accounts.
func RequireFreshToken(users services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokenClaims(c)
		if err != nil {
			return unauthorized(c)
		}
		if _, scoped := claims["purpose"]; scoped {
			return unauthorized(c)
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c)
		}
		version, ok := claims["token_version"].(float64)
		if !ok {
			return unauthorized(c)
		}

		user, err := users.FindByID(c.Context(), userID)
		if err != nil {
			return unauthorized(c)
		}
		if user.TokenVersion != int(version) || user.Status != models.StatusActive {
			return unauthorized(c)
		}
		return c.Next()
	}
}

// UserID extracts the authenticated user id from JWT claims in context.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := tokenClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func tokenClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized",
	})
}
