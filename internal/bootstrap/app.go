package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"upfolio-backend/internal/account"
	"upfolio-backend/internal/assistant"
	"upfolio-backend/internal/auth"
	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/llm"
	openai "upfolio-backend/internal/llm/openai"
	"upfolio-backend/internal/mailer"
	"upfolio-backend/internal/portfolio"
	"upfolio-backend/internal/ratelimit"
	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/shared/config"
	"upfolio-backend/internal/shared/server"
	"upfolio-backend/internal/shared/storage/db"
	"upfolio-backend/internal/shared/storage/object"
	localstore "upfolio-backend/internal/shared/storage/object/local"
	s3store "upfolio-backend/internal/shared/storage/object/s3"
	"upfolio-backend/internal/users"
)

const sweepInterval = 5 * time.Minute

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.ObjectStore
	Limiter *ratelimit.Limiter

	UsersRepo   users.Repo
	ResumesRepo resumes.Repo
	TokensRepo  auth.TokenRepo

	CreditsService   *credits.Service
	AuthService      *auth.Service
	ResumesService   *resumes.Service
	PortfolioService *portfolio.Service
	AssistantService *assistant.Service
	AccountService   *account.Service
	UsersService     *users.Service
	GoogleAuth       *auth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limiter, err := buildLimiter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Limiter: limiter,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	authHandler := auth.NewHandler(app.AuthService, limiter)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		AuthHandler:      authHandler,
		GoogleAuth:       app.GoogleAuth,
		ResumeHandler:    resumes.NewHandler(app.ResumesService),
		PortfolioHandler: portfolio.NewHandler(app.PortfolioService),
		AssistantHandler: assistant.NewHandler(app.AssistantService),
		CreditsHandler:   credits.NewHandler(app.CreditsService),
		UserHandler:      users.NewHandler(app.UsersService),
		AccountHandler:   account.NewHandler(app.AccountService, limiter),
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

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
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

// buildLimiter configures the fixed-window policies and starts the sweep.
// With REDIS_URL set the counters are shared across instances.
func buildLimiter(ctx context.Context, cfg config.Config) (*ratelimit.Limiter, error) {
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		store = ratelimit.NewRedisStore(redis.NewClient(opts), "ratelimit")
	}

	limiter := ratelimit.New(store, nil)
	policies := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{"LOGIN", 5, 15 * time.Minute},
		{"REGISTRATION", 3, time.Hour},
		{"PASSWORD_RESET", 3, time.Hour},
		{"EMAIL_VERIFY", 5, time.Hour},
		{"ACCOUNT_DELETE", 3, time.Hour},
	}
	for _, p := range policies {
		if err := limiter.Configure(p.name, p.limit, p.window); err != nil {
			return nil, fmt.Errorf("configure rate limit %s: %w", p.name, err)
		}
	}
	limiter.StartSweep(ctx, sweepInterval)
	return limiter, nil
}

func buildMailer(cfg config.Config) mailer.Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return mailer.LogMailer{}
	}
	return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if cfg.LLMProvider != "openai" || strings.TrimSpace(apiKey) == "" {
		log.Printf("bootstrap: no LLM credentials; AI features disabled")
		return llm.PlaceholderClient{}, nil
	}
	return openai.NewClient(apiKey, cfg.LLMModel)
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.TokensRepo = &auth.PGTokenRepo{DB: app.DB}
		app.CreditsService = credits.NewPostgresService(credits.NewPGStore(app.DB))
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.TokensRepo = auth.NewMemoryTokenRepo()
		app.CreditsService = credits.NewService()
	}

	llmClient, err := buildLLM(app.Config)
	if err != nil {
		return err
	}

	app.AuthService = auth.NewService(app.UsersRepo, app.TokensRepo, app.CreditsService, buildMailer(app.Config), app.Config.AppBaseURL)
	app.ResumesService = resumes.NewService(app.ResumesRepo, app.Store, resumes.LLMParser{Client: llmClient})
	app.PortfolioService = portfolio.NewService(app.UsersRepo, app.ResumesRepo)
	app.AssistantService = assistant.NewService(app.ResumesService, app.CreditsService, llmClient)
	app.AccountService = account.NewService(app.UsersRepo, app.ResumesRepo, app.TokensRepo, app.CreditsService, app.Store)
	app.UsersService = users.NewService(app.UsersRepo)

	if app.Config.GoogleClientID != "" {
		app.GoogleAuth = auth.NewGoogleService(
			app.Config.GoogleClientID,
			app.Config.GoogleClientSecret,
			app.Config.GoogleRedirectURL,
			app.Config.UIRedirectURL,
			app.AuthService,
		)
	}

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
