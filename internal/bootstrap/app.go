package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yel-hadr/resume-parser/internal/llm"
	"github.com/yel-hadr/resume-parser/internal/llm/openai"
	"github.com/yel-hadr/resume-parser/internal/resumes"
	"github.com/yel-hadr/resume-parser/internal/shared/config"
	"github.com/yel-hadr/resume-parser/internal/shared/server"
	"github.com/yel-hadr/resume-parser/internal/shared/storage/db"
	"github.com/yel-hadr/resume-parser/internal/shared/storage/object"
	localstore "github.com/yel-hadr/resume-parser/internal/shared/storage/object/local"
	s3store "github.com/yel-hadr/resume-parser/internal/shared/storage/object/s3"
	"github.com/yel-hadr/resume-parser/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Store         object.ObjectStore
	ResumesRepo   resumes.Repo
	ResumeService *resumes.Service
	ResumeHandler *resumes.Handler
	Hooks         *resumes.Hooks
	Sweeper       *resumes.Sweeper
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo resumes.Repo
	if sqlDB != nil {
		repo = &resumes.PGRepo{DB: sqlDB}
	} else {
		repo = resumes.NewMemoryRepo()
	}

	client := openai.NewClient(cfg.OpenAIAPIKey, cfg.Model, float64(cfg.Temperature), cfg.MaxTokens)

	hooks := &resumes.Hooks{}
	hooks.Register(logLifecycleEvents)

	svc := resumes.NewService(repo, store, client, hooks, resumes.ServiceConfig{
		MaxFileSize:    cfg.MaxFileSizeBytes(),
		AllowedTypes:   cfg.AllowedTypes,
		MaxPromptChars: cfg.MaxPromptChars,
		RetainUploads:  cfg.RetainUploads,
	})
	handler := resumes.NewHandler(svc)

	app := &App{
		Config:        cfg,
		DB:            sqlDB,
		Store:         store,
		ResumesRepo:   repo,
		ResumeService: svc,
		ResumeHandler: handler,
		Hooks:         hooks,
	}

	if cfg.AutoDeleteFiles && cfg.DeleteAfterDays > 0 {
		app.Sweeper = resumes.NewSweeper(repo, store, time.Duration(cfg.DeleteAfterDays)*24*time.Hour)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		ResumeHandler: handler,
	})

	return app, nil
}

// CompletionClient exposes the configured completion client, mainly so
// operational tooling can run a credential check.
func (a *App) CompletionClient() llm.CompletionClient {
	return a.ResumeService.LLM
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
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
		return localstore.New(cfg.UploadDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func logLifecycleEvents(ctx context.Context, ev resumes.Event) {
	telemetry.Info(ev.Name, map[string]any{
		"resume_id": ev.Resume.ID,
		"owner_id":  ev.Resume.OwnerID,
		"status":    ev.Resume.Status,
		"file_type": ev.Resume.FileType,
	})
}
