package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/aadhaar"
	"jobgujarat-backend/internal/account"
	"jobgujarat-backend/internal/applications"
	googleauth "jobgujarat-backend/internal/auth"
	"jobgujarat-backend/internal/hiring"
	"jobgujarat-backend/internal/jobs"
	"jobgujarat-backend/internal/payments"
	"jobgujarat-backend/internal/queue"
	"jobgujarat-backend/internal/services/health"
	"jobgujarat-backend/internal/shared/config"
	"jobgujarat-backend/internal/shared/server"
	"jobgujarat-backend/internal/shared/storage/db"
	"jobgujarat-backend/internal/shared/storage/object"
	localstore "jobgujarat-backend/internal/shared/storage/object/local"
	s3store "jobgujarat-backend/internal/shared/storage/object/s3"
	"jobgujarat-backend/internal/users"
)

const devKeySecret = "dev_key_secret"

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	UsersRepo        users.Repo
	JobsRepo         jobs.Repo
	ApplicationsRepo applications.Repo
	AadhaarRepo      aadhaar.Repo
	PaymentsRepo     payments.Repo
	IntentsRepo      hiring.Repo

	Gateway             payments.Gateway
	UsersService        *users.Service
	JobsService         *jobs.Service
	ApplicationsService *applications.Service
	AadhaarService      *aadhaar.Service
	HiringService       *hiring.Service
	AccountService      *account.Service
	HealthService       *health.Service

	UsersHandler        *users.Handler
	JobsHandler         *jobs.Handler
	ApplicationsHandler *applications.Handler
	PaymentsHandler     *payments.Handler
	HiringHandler       *hiring.Handler
	AccountHandler      *account.Handler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		GoogleAuth:          app.GoogleAuth,
		UsersHandler:        app.UsersHandler,
		JobsHandler:         app.JobsHandler,
		ApplicationsHandler: app.ApplicationsHandler,
		PaymentsHandler:     app.PaymentsHandler,
		HiringHandler:       app.HiringHandler,
		AccountHandler:      app.AccountHandler,
		Health:              app.HealthService,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("JG_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
		app.AadhaarRepo = &aadhaar.PGRepo{DB: app.DB}
		app.PaymentsRepo = &payments.PGRepo{DB: app.DB}
		app.IntentsRepo = &hiring.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ApplicationsRepo = applications.NewMemoryRepo()
		app.AadhaarRepo = aadhaar.NewMemoryRepo()
		app.PaymentsRepo = payments.NewMemoryRepo()
		app.IntentsRepo = hiring.NewMemoryRepo()
	}

	keySecret := app.Config.RazorpayKeySecret
	app.Gateway = payments.Gateway(&payments.PlaceholderGateway{})
	if app.Config.RazorpayKeyID != "" && keySecret != "" {
		app.Gateway = payments.NewRazorpayClient(app.Config.RazorpayKeyID, keySecret, app.Config.RazorpayBaseURL)
	} else {
		if keySecret == "" && isDevLike(app.Config.Env) {
			keySecret = devKeySecret
		}
		log.Printf("bootstrap: razorpay credentials missing; using placeholder gateway")
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.JobsService = jobs.NewService(app.JobsRepo, app.UsersService)
	app.ApplicationsService = &applications.Service{
		Repo:  app.ApplicationsRepo,
		Jobs:  app.JobsRepo,
		Store: app.Store,
	}
	app.AadhaarService = aadhaar.NewService(app.AadhaarRepo, app.Store)
	app.AccountService = account.NewService(app.ApplicationsRepo, app.AadhaarRepo)
	app.HealthService = health.NewService(app.DB)
	app.HiringService = &hiring.Service{
		Intents:   app.IntentsRepo,
		Payments:  app.PaymentsRepo,
		Gateway:   app.Gateway,
		KeySecret: keySecret,
		Apps:      app.ApplicationsService,
		Aadhaar:   app.AadhaarService,
		Queue:     app.Queue,
	}

	publishableKey := app.Config.RazorpayKeyID
	if publishableKey == "" && isDevLike(app.Config.Env) {
		publishableKey = "rzp_test_local"
	}

	app.UsersHandler = users.NewHandler(app.UsersService)
	app.JobsHandler = jobs.NewHandler(app.JobsService)
	app.ApplicationsHandler = applications.NewHandler(app.ApplicationsService)
	app.PaymentsHandler = payments.NewHandler(publishableKey)
	app.HiringHandler = hiring.NewHandler(app.HiringService)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
