package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline/craftline/internal/auth"
	"github.com/craftline/craftline/internal/cache"
	"github.com/craftline/craftline/internal/config"
	"github.com/craftline/craftline/internal/crypto"
	"github.com/craftline/craftline/internal/db"
	"github.com/craftline/craftline/internal/email"
	"github.com/craftline/craftline/internal/handlers"
	"github.com/craftline/craftline/internal/logging"
	"github.com/craftline/craftline/internal/services"
	"github.com/craftline/craftline/internal/uploads"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	var emailProvider email.Provider
	if cfg.EmailEnabled() {
		emailProvider, err = email.NewProvider(email.Config{
			Provider:     cfg.EmailProvider,
			From:         cfg.EmailFrom,
			APIKey:       cfg.ResendAPIKey,
			SMTPHost:     cfg.SMTPHost,
			SMTPPort:     cfg.SMTPPort,
			SMTPUsername: cfg.SMTPUsername,
			SMTPPassword: cfg.SMTPPassword,
		})
		if err != nil {
			closeCacheProvider(logger, cacheProvider)
			database.Close()
			return nil, fmt.Errorf("failed to initialize email provider: %w", err)
		}
	}
	notifier, err := services.NewNotifier(emailProvider)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, err
	}

	var imageProvider uploads.Provider
	if cfg.UploadsEnabled() {
		imageProvider, err = uploads.NewMinioProvider(uploads.Config{
			Endpoint:  cfg.UploadsEndpoint,
			AccessKey: cfg.UploadsAccessKey,
			SecretKey: cfg.UploadsSecretKey,
			Bucket:    cfg.UploadsBucket,
			UseSSL:    cfg.UploadsUseSSL,
			PublicURL: cfg.UploadsPublicURL,
		})
		if err != nil {
			closeCacheProvider(logger, cacheProvider)
			database.Close()
			return nil, fmt.Errorf("failed to initialize uploads provider: %w", err)
		}
	}

	userStore := db.NewUserStore(database)
	productStore := db.NewProductStore(database)
	orderStore := db.NewOrderStore(database)
	returnStore := db.NewReturnStore(database)
	ratingStore := db.NewRatingStore(database)
	hireStore := db.NewHireStore(database)

	authenticator := auth.NewJWTAuthenticator(cfg.JWTSecret)

	resetURLBase := strings.TrimRight(cfg.BaseURL, "/") + "/reset-password"
	accountService := services.NewAccountService(userStore, authenticator, cacheProvider, notifier,
		resetURLBase, logger.With("component", "account_service"))
	productService := services.NewProductService(productStore, imageProvider)
	orderService := services.NewOrderService(orderStore, productStore, userStore, notifier,
		logger.With("component", "order_service"))
	returnService := services.NewReturnService(returnStore, encryptor, notifier,
		logger.With("component", "return_service"))
	ratingService := services.NewRatingService(ratingStore, orderStore)
	hireService := services.NewHireService(hireStore, userStore)

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		DB:             database,
		Authenticator:  authenticator,
		AccountService: accountService,
		ProductService: productService,
		OrderService:   orderService,
		ReturnService:  returnService,
		RatingService:  ratingService,
		HireService:    hireService,
		Logger:         logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	sentry.Flush(2 * time.Second)
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
