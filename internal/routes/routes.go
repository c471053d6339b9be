package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mertakdeniz/lunamarket-backend/internal/config"
	"github.com/mertakdeniz/lunamarket-backend/internal/handlers"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/ratelimit"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users services.UserStore,
	otpLimiter *ratelimit.Limiter,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	twoFactorHandler *handlers.TwoFactorHandler,
	verificationHandler *handlers.VerificationHandler,
	profileHandler *handlers.ProfileHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth routes are public but carry a stricter per-IP limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleSignIn)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/2fa/login", twoFactorHandler.CompleteLogin)
	auth.Post("/password/forgot", passwordHandler.Forgot)
	auth.Post("/password/reset", passwordHandler.Reset)

	// OTP resend is the easiest endpoint to abuse; the Redis limiter is
	// shared across instances, unlike the in-memory one above.
	resend := auth.Group("/2fa/resend")
	if otpLimiter != nil {
		resend.Use(otpLimiter.Middleware(3, 5*time.Minute))
	}
	resend.Post("/", twoFactorHandler.Resend)

	// Protected routes: valid signature via JWTProtected, then the
	// token_version cross-check against the live account.
	guard := middleware.JWTProtected(cfg)
	fresh := middleware.RequireFreshToken(users)

	api.Post("/auth/logout", guard, fresh, authHandler.Logout)
	api.Post("/auth/logout-all", guard, fresh, authHandler.LogoutAll)
	api.Post("/auth/password/change", guard, fresh, passwordHandler.Change)
	api.Post("/auth/2fa/setup", guard, fresh, twoFactorHandler.Setup)
	api.Post("/auth/2fa/verify", guard, fresh, twoFactorHandler.Verify)
	api.Post("/auth/verification/setup", guard, fresh, verificationHandler.Setup)
	api.Post("/auth/verification/verify", guard, fresh, verificationHandler.Verify)
	api.Get("/profile/me", guard, fresh, profileHandler.Me)
}
