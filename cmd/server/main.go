package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mertakdeniz/lunamarket-backend/internal/config"
	"github.com/mertakdeniz/lunamarket-backend/internal/database"
	"github.com/mertakdeniz/lunamarket-backend/internal/dto"
	"github.com/mertakdeniz/lunamarket-backend/internal/events"
	"github.com/mertakdeniz/lunamarket-backend/internal/google"
	"github.com/mertakdeniz/lunamarket-backend/internal/handlers"
	"github.com/mertakdeniz/lunamarket-backend/internal/logging"
	"github.com/mertakdeniz/lunamarket-backend/internal/mailer"
	"github.com/mertakdeniz/lunamarket-backend/internal/middleware"
	"github.com/mertakdeniz/lunamarket-backend/internal/ratelimit"
	"github.com/mertakdeniz/lunamarket-backend/internal/repository"
	"github.com/mertakdeniz/lunamarket-backend/internal/routes"
	"github.com/mertakdeniz/lunamarket-backend/internal/services"
	"github.com/mertakdeniz/lunamarket-backend/internal/token"
)

func main() {
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup()

	cfg := config.Load()

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		slog.Error("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET environment variables are required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

	// Log retention sweep
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetention, cleanupDone)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Token codec
	codec := token.NewCodec(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.TwoFactorTokenTTL,
	)

	// Mail delivery
	var mail services.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		slog.Warn("SMTP not configured, mail deliveries will be logged only")
		mail = mailer.Log{}
	}

	// Domain events: subscriptions are explicit and happen here, nowhere else out of sight.
	dispatcher := events.NewDispatcher()
	profileService := services.NewProfileService(profileRepo)
	dispatcher.Subscribe(profileService.HandleAccountCreated)
	if cfg.AMQPURL != "" {
		publisher := events.NewAMQPPublisher(cfg.AMQPURL)
		dispatcher.Subscribe(publisher.Publish)
		slog.Info("rabbitmq event publishing enabled")
	}

	// Services
	verifier := google.NewVerifier(cfg.GoogleClientID)
	authService := services.NewAuthService(userRepo, tokenRepo, codec, verifier, dispatcher, cfg.RefreshTokenTTL)
	passwordService := services.NewPasswordService(userRepo, codec, mail, cfg.PasswordResetTTL)
	twoFactorService := services.NewTwoFactorService(userRepo, codec, mail, cfg.SetupOTPTTL, cfg.LoginOTPTTL)
	verificationService := services.NewVerificationService(userRepo, mail, cfg.SetupOTPTTL)

	// Redis-backed limiter for OTP resend (optional)
	var otpLimiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			slog.Warn("redis unavailable, otp rate limiting disabled", "error", err)
		} else {
			otpLimiter = ratelimit.NewLimiter(rdb, "otp")
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, twoFactorService)
	passwordHandler := handlers.NewPasswordHandler(passwordService)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService, authService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	profileHandler := handlers.NewProfileHandler(profileService)
	healthHandler := handlers.NewHealthHandler(db)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		},
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, userRepo, otpLimiter,
		authHandler, passwordHandler, twoFactorHandler,
		verificationHandler, profileHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
