package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"terravista/internal/auth"
	"terravista/internal/config"
	"terravista/internal/controller"
	"terravista/internal/httpx"
	"terravista/internal/logging"
	"terravista/internal/middleware"
	"terravista/internal/repository"
	"terravista/internal/social/google"
	"terravista/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	repos := repository.NewManager(db)
	repos.MustValidate()

	go repos.Tokens().SweepExpired(ctx, time.Hour)

	authLogger := logging.NewAdapter(logger.Named("auth"))

	tokens := auth.NewTokenService(auth.TokenConfig{
		SigningKey:     []byte(cfg.JWT.Secret),
		AccessTTL:      cfg.JWT.AccessExpiration,
		RefreshTTL:     cfg.JWT.RefreshExpiration,
		VerifyEmailTTL: cfg.JWT.VerifyEmailExpires,
	}, repos.Tokens(), repos.Users(), authLogger)

	authenticator := auth.NewAuthenticator(repos.Users(), tokens, authLogger)

	googleProvider := google.New(google.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		CallbackURL:  cfg.Google.CallbackURL,
	})
	stateManager := google.NewStateManager([]byte(cfg.JWT.Secret), 10*time.Minute)

	objectStore, err := storage.NewS3Store(ctx, cfg.S3, cfg.PublicURL)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "terravista",
		ErrorHandler: httpx.NewErrorHandler(cfg.IsProduction()),
		BodyLimit:    32 * 1024 * 1024,
	})

	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(compress.New())
	app.Use(middleware.RequestLogger(logger))

	// limit repeated failed requests to the auth endpoints
	if cfg.IsProduction() {
		app.Use("/v1/auth", limiter.New(limiter.Config{
			Max:                    20,
			Expiration:             15 * time.Minute,
			SkipSuccessfulRequests: true,
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Api is Running")
	})

	v1 := app.Group("/v1")

	authGate := middleware.Authorize(tokens, repos.Users())
	authorGate := middleware.Authorize(tokens, repos.Users(), auth.CapabilityCreatePost)
	adminGate := middleware.Authorize(tokens, repos.Users(), auth.CapabilityGetUsers, auth.CapabilityManageUsers)

	controller.NewAuthController(authenticator, googleProvider, stateManager).
		RegisterRoutes(v1.Group("/auth"))

	users := v1.Group("/users", authGate)
	controller.NewUsersController(repos.Users()).RegisterRoutes(users, adminGate)

	controller.NewPropertiesController(repos.Properties(), repos.Posts(), objectStore).
		RegisterRoutes(v1.Group("/post"), authorGate, adminGate)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	logger.Info("server started", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
