// Package bootstrap assembles configuration, storage, realtime delivery,
// services and the HTTP router into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/unilink/internal/app/controllers"
	appMigrations "github.com/yigit/unilink/internal/app/migrations"
	appRepos "github.com/yigit/unilink/internal/app/repositories"
	appRoutes "github.com/yigit/unilink/internal/app/routes"
	appServices "github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/config"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/domain"
	appMiddleware "github.com/yigit/unilink/internal/middleware"
	pkgAuth "github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/filestorage"
	"github.com/yigit/unilink/internal/pkg/helpers"
	"github.com/yigit/unilink/internal/pkg/imaging"
	"github.com/yigit/unilink/internal/pkg/logger"
	"github.com/yigit/unilink/internal/pkg/realtime"
	wsclient "github.com/yigit/unilink/internal/pkg/websocket"
	"github.com/yigit/unilink/internal/seed"
	"github.com/yigit/unilink/migrations"
)

// DefaultConfigPath is used when no config file is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	LoginLimiter   *appMiddleware.RateLimiter
	JWTService     *pkgAuth.JWTService
	Broker         *realtime.Broker
	// Bridge is set when change signals travel through Postgres
	Bridge *realtime.PGBridge
	// LocalStorage is set when uploads are kept on disk and served by this process
	LocalStorage *filestorage.LocalStorage
	Logger       zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenDatabase establishes the database connection pool.
func OpenDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database.Pool, nil
}

// RunMigrations applies the embedded schema files that have not run yet.
func RunMigrations(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, logger.Component("migrations"))
	applied, err := migrator.Migrate(ctx, migrations.FS)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, migrates and seeds the database.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	dbPool, err := OpenDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}
	if err := seed.CreateDefaultData(ctx, dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
	return dbPool, nil
}

// NewJWTService builds the token service from the jwt section
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// NewUploader selects the storage backend. The returned LocalStorage is nil
// unless files are kept on local disk.
func NewUploader(cfg *config.Config, lgr zerolog.Logger) (filestorage.Uploader, *filestorage.LocalStorage, error) {
	storageLog := lgr.With().Str("component", "filestorage").Str("driver", cfg.Storage.Driver).Logger()

	if cfg.Storage.Driver == config.StorageDriverCloudinary {
		client := &http.Client{Timeout: cfg.Storage.UploadTimeout}
		return filestorage.NewCloudinaryUploader(cfg.Storage.CloudinaryURL, client, storageLog), nil, nil
	}

	baseURL := cfg.Storage.PublicBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port + "/uploads"
	}
	local, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL, storageLog)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return local, local, nil
}

// ServiceSettings maps configuration onto the service tunables
func ServiceSettings(cfg *config.Config) appServices.Settings {
	return appServices.Settings{
		Policy: domain.NewPolicy(cfg.Location(), cfg.Consultation.InPersonGrace),
		Attachments: appServices.AttachmentConfig{
			Imaging: imaging.Options{
				MaxWidth: cfg.Imaging.MaxWidth,
				Quality:  cfg.Imaging.JPEGQuality,
			},
			ImagePreset:    cfg.Storage.ImagePreset,
			DocumentPreset: cfg.Storage.DocumentPreset,
			ImageFolder:    cfg.Storage.ImageFolder,
			DocumentFolder: cfg.Storage.DocumentFolder,
			UploadTimeout:  cfg.Storage.UploadTimeout,
		},
		InboxScanWarnThreshold: cfg.Chat.InboxScanWarnThreshold,
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.JWTService = NewJWTService(cfg)

	uploader, local, err := NewUploader(cfg, lgr)
	if err != nil {
		return nil, err
	}
	deps.LocalStorage = local

	deps.Broker = realtime.NewBroker(logger.Component("realtime"))
	var publisher realtime.Publisher = deps.Broker
	if cfg.Realtime.Driver == config.RealtimeDriverPostgres {
		deps.Bridge = realtime.NewPGBridge(dbPool, cfg.Realtime.Channel, deps.Broker,
			logger.Component("pgbridge"))
		publisher = deps.Bridge
	}

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, uploader, publisher, deps.Broker,
		ServiceSettings(cfg), time.Now, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.LoginLimiter = appMiddleware.NewRateLimiter(cfg.Server.LoginRateLimit)

	upgrader := wsclient.NewUpgrader(cfg.Server.AllowedOrigins)
	deps.Controllers = newControllers(deps.Services, upgrader, lgr)

	return deps, nil
}

func newControllers(svc *appServices.Services, upgrader *websocket.Upgrader, lgr zerolog.Logger) appRoutes.Controllers {
	component := func(name string) zerolog.Logger {
		return lgr.With().Str("controller", name).Logger()
	}
	return appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(svc.Auth, component("auth")),
		Profile:       appControllers.NewProfileController(svc.Profile),
		Consultations: appControllers.NewConsultationController(svc.Consultations, upgrader, component("consultations")),
		Messages:      appControllers.NewMessageController(svc.Messages, svc.Threads, upgrader, component("messages")),
		Inbox:         appControllers.NewInboxController(svc.Inbox, upgrader, component("inbox")),
		Notifications: appControllers.NewNotificationController(svc.Notifications, upgrader, component("notifications")),
		Communities:   appControllers.NewCommunityController(svc.Communities, upgrader, component("communities")),
		Events:        appControllers.NewEventController(svc.Events, upgrader, component("events")),
	}
}

// StartBackground runs the realtime broker and, when configured, the
// Postgres listener until ctx is cancelled.
func (d *Dependencies) StartBackground(ctx context.Context) {
	go d.Broker.Run(ctx)
	if d.Bridge != nil {
		go func() {
			if err := d.Bridge.Run(ctx); err != nil {
				d.Logger.Error().Err(err).Msg("Realtime listener stopped")
			}
		}()
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.LoginLimiter)

	if deps.LocalStorage != nil {
		router.Static("/uploads", deps.LocalStorage.BasePath())
		lgr.Info().Str("path", deps.LocalStorage.BasePath()).Msg("Static file serving configured for uploads directory")
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
		AllowWebSockets: true,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
