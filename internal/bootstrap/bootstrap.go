package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/mertz/schooladmin/internal/app/controllers"
	appMigrations "github.com/mertz/schooladmin/internal/app/migrations"
	appRepos "github.com/mertz/schooladmin/internal/app/repositories"
	appRoutes "github.com/mertz/schooladmin/internal/app/routes"
	appServices "github.com/mertz/schooladmin/internal/app/services"
	"github.com/mertz/schooladmin/internal/config"
	"github.com/mertz/schooladmin/internal/db"
	appMiddleware "github.com/mertz/schooladmin/internal/middleware"
	pkgAuth "github.com/mertz/schooladmin/internal/pkg/auth"
	"github.com/mertz/schooladmin/internal/pkg/email"
	"github.com/mertz/schooladmin/internal/pkg/filestorage"
	"github.com/mertz/schooladmin/internal/pkg/helpers"
	"github.com/mertz/schooladmin/internal/pkg/identity"
	"github.com/mertz/schooladmin/internal/pkg/logger"
	"github.com/mertz/schooladmin/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService           *appServices.AuthService
	SchoolService         *appServices.SchoolService
	StudentService        *appServices.StudentService
	TeacherService        *appServices.TeacherService
	ApplicationService    *appServices.ApplicationService
	AuthController        *appControllers.AuthController
	SchoolController      *appControllers.SchoolController
	StudentController     *appControllers.StudentController
	TeacherController     *appControllers.TeacherController
	ApplicationController *appControllers.ApplicationController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	IdentityClient        *identity.Client
	EmailService          email.EmailService
	FileStorage           *filestorage.LocalStorage
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	store, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		store.Pool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(store.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), store, lgr); err != nil {
		// Not fatal; the API works without the demo tenant
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return store, nil
}

// BuildDependencies initializes repositories, external clients, services and
// controllers.
func BuildDependencies(cfg *config.Config, store *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(store)

	// File storage serves uploaded documents under the /uploads static route
	var err error
	baseURL := "http://localhost:" + cfg.Server.Port
	fileStorageBaseURL := baseURL + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.IdentityClient = identity.NewClient(
		cfg.Identity.BaseURL,
		cfg.Identity.InternalToken,
		cfg.GetIdentityTimeout(),
		lgr,
	)

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.SchoolRepository,
		deps.JWTService,
	)
	deps.SchoolService = appServices.NewSchoolService(deps.Repos.SchoolRepository)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.GuardianRepository,
		deps.Repos.DocumentRepository,
		deps.IdentityClient,
		deps.EmailService,
		deps.FileStorage,
	)
	deps.TeacherService = appServices.NewTeacherService(
		deps.Repos.TeacherRepository,
		deps.Repos.DocumentRepository,
		deps.IdentityClient,
		deps.EmailService,
		deps.FileStorage,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.StudentRepository,
		deps.Repos.SchoolRepository,
		deps.IdentityClient,
		deps.EmailService,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.SchoolController = appControllers.NewSchoolController(deps.SchoolService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.TeacherController = appControllers.NewTeacherController(deps.TeacherService)
	deps.ApplicationController = appControllers.NewApplicationController(deps.ApplicationService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), gin.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.SchoolController,
		deps.StudentController,
		deps.TeacherController,
		deps.ApplicationController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
