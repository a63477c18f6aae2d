package router

import (
	"fmt"

	"github.com/anonto42/twittor/backend/internal/handlers"
	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/session"
	"github.com/anonto42/twittor/backend/internal/token"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/anonto42/twittor/backend/pkg/config"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/anonto42/twittor/backend/pkg/mailer"
	"github.com/anonto42/twittor/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// outermost, so recovered panics are counted as 500s
	e.Use(middleware.Metrics())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(eMiddleware.SecureWithConfig(eMiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "same-origin",
	}))
	e.Use(eMiddleware.BodyLimit("1M"))
	e.Use(eMiddleware.CSRFWithConfig(cfg.CSRFConfig()))
	logger.Log.Info("Global middleware configured.")
}

// SetupRoutes builds the repositories, services and handlers and registers every route.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, m mailer.Mailer) error {
	renderer, err := views.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	e.Renderer = renderer

	emails, err := views.NewEmails()
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewPostgresPostRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo)
	feedService := services.NewFeedService(postRepo, userRepo, cfg.TweetsPerPage)
	socialService := services.NewSocialService(followRepo, userRepo, postRepo)
	accountService := services.NewAccountService(userRepo, token.NewSigner(cfg.SecretKey, cfg.TokenTTL), m, emails, services.AccountOptions{
		BaseURL:         cfg.BaseURL,
		SubjectActivate: cfg.Mail.SubjectUserActivate,
		SubjectReset:    cfg.Mail.SubjectResetPassword,
	})
	if db.Mongo != nil {
		accountService.WithDeliveryLog(repositories.NewMongoEmailDeliveryRepository(db.Mongo.Database(cfg.MongoDatabase)))
		logger.Log.Info("Email delivery log enabled.")
	}

	// --- Sessions ---
	var store session.Store
	if db.Redis != nil {
		store = session.NewRedisStore(db.Redis)
		logger.Log.Info("Using Redis session store.")
	} else {
		store = session.NewMemoryStore()
		logger.Log.Warn("REDIS_URL not set, sessions are kept in memory.")
	}
	sessions := session.NewManager(store, session.Options{
		TTL:         cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
		Secure:      cfg.IsProduction(),
	})
	e.Use(sessions.Middleware())
	e.Use(middleware.LoadCurrentUser(userRepo))
	e.Use(middleware.RequestLogger())

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// All pages live at the root; login requirements are set per route.
	root := e.Group("")

	handlers.NewAuthHandler(authService).RegisterAuthRoutes(root)
	handlers.NewFeedHandler(feedService).RegisterFeedRoutes(root)
	handlers.NewPostHandler(feedService).RegisterPostRoutes(root)
	handlers.NewUserHandler(feedService, socialService, accountService).RegisterProfileRoutes(root)
	handlers.NewFollowHandler(socialService, accountService).RegisterFollowRoutes(root)
	handlers.NewAccountHandler(accountService).RegisterAccountRoutes(root)

	logger.Log.Info("All routes configured.")
	return nil
}
