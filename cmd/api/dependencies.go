package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"

	authhandler "github.com/pennywise-app/pennywise/internal/domain/auth/handler"
	"github.com/pennywise-app/pennywise/internal/domain/auth/repository"
	"github.com/pennywise-app/pennywise/internal/domain/auth/service"
	"github.com/pennywise-app/pennywise/internal/domain/category"
	categoryhandler "github.com/pennywise-app/pennywise/internal/domain/category/handler"
	"github.com/pennywise-app/pennywise/internal/domain/importer"
	importhandler "github.com/pennywise-app/pennywise/internal/domain/importer/handler"
	"github.com/pennywise-app/pennywise/internal/domain/summary"
	summaryhandler "github.com/pennywise-app/pennywise/internal/domain/summary/handler"
	"github.com/pennywise-app/pennywise/internal/domain/transaction"
	transactionhandler "github.com/pennywise-app/pennywise/internal/domain/transaction/handler"
	"github.com/pennywise-app/pennywise/internal/middleware"
	"github.com/pennywise-app/pennywise/pkg/config"
	"github.com/pennywise-app/pennywise/pkg/cron"
	"github.com/pennywise-app/pennywise/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	AuthRepo        repository.AuthRepository
	CategoryRepo    category.Repository
	TransactionRepo transaction.Repository
	SummaryRepo     summary.Repository

	// Services
	TokenManager       service.TokenManager
	AuthService        *service.AuthService
	CategoryService    *category.Service
	TransactionService *transaction.Service
	ImportService      *importer.Service
	SummaryService     *summary.Service
	Scheduler          *cron.Scheduler
	RateLimiter        *middleware.RateLimiter

	// Handlers
	AuthHandler        *authhandler.AuthHandler
	CategoryHandler    *categoryhandler.CategoryHandler
	TransactionHandler *transactionhandler.TransactionHandler
	ImportHandler      *importhandler.ImportHandler
	SummaryHandler     *summaryhandler.SummaryHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initOAuth()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.AuthRepo = repository.NewPostgresAuthRepository(d.DB.Pool)
	d.CategoryRepo = category.NewPostgresRepository(d.DB.Pool)
	d.TransactionRepo = transaction.NewPostgresRepository(d.DB.Pool)
	d.SummaryRepo = summary.NewPostgresRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	jwtSecret := []byte(d.Config.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		return fmt.Errorf("jwt secret is required")
	}

	accessTokenTTL := 1 * time.Hour
	refreshTokenTTL := 30 * 24 * time.Hour

	d.TokenManager = service.NewTokenManager(jwtSecret, jwtSecret, accessTokenTTL, refreshTokenTTL)
	emailService := service.NewEmailService(d.Config.Email.ResendAPIKey, d.Config.Email.FromAddress, d.Config.Server.BaseURL)
	d.AuthService = service.NewAuthService(
		d.AuthRepo,
		d.TokenManager,
		emailService,
		d.Logger,
		refreshTokenTTL,
	)

	d.CategoryService = category.NewService(d.CategoryRepo, d.Logger)
	d.TransactionService = transaction.NewService(d.TransactionRepo, d.CategoryService, d.Logger)
	d.ImportService = importer.NewService(d.TransactionRepo, d.CategoryService, d.Logger)
	d.SummaryService = summary.NewService(d.SummaryRepo, d.Logger)

	d.Scheduler = cron.NewScheduler(d.AuthService, d.Logger)
	d.RateLimiter = middleware.NewRateLimiter(
		d.Config.Server.RateLimitPerSecond,
		d.Config.Server.RateLimitBurst,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initOAuth registers the goth providers and the session store backing the
// OAuth handshake.
func (d *Dependencies) initOAuth() {
	gothic.Store = sessions.NewCookieStore([]byte(d.Config.Auth.SessionSecret))

	var providers []goth.Provider
	oauth := d.Config.OAuth
	if oauth.GoogleClientID != "" {
		providers = append(providers, google.New(
			oauth.GoogleClientID,
			oauth.GoogleClientSecret,
			d.Config.Server.BaseURL+"/api/v1/auth/oauth/google/callback",
			"email", "profile",
		))
	}
	if oauth.GithubClientID != "" {
		providers = append(providers, github.New(
			oauth.GithubClientID,
			oauth.GithubClientSecret,
			d.Config.Server.BaseURL+"/api/v1/auth/oauth/github/callback",
			"user:email",
		))
	}
	goth.UseProviders(providers...)

	d.Logger.Info("oauth providers registered", slog.Int("count", len(providers)))
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.AuthHandler = authhandler.NewAuthHandler(d.AuthService, d.Logger)
	d.CategoryHandler = categoryhandler.NewCategoryHandler(d.CategoryService, d.Logger)
	d.TransactionHandler = transactionhandler.NewTransactionHandler(d.TransactionService, d.Logger)
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.AuthService, d.Logger)
	d.SummaryHandler = summaryhandler.NewSummaryHandler(d.SummaryService, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.RateLimiter != nil {
		d.RateLimiter.Stop()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
