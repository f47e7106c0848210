package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/muskan-shah-02/dokydoc/internal/ai"
	"github.com/muskan-shah-02/dokydoc/internal/config"
	"github.com/muskan-shah-02/dokydoc/internal/db"
	"github.com/muskan-shah-02/dokydoc/internal/filestore"
	"github.com/muskan-shah-02/dokydoc/internal/handler"
	"github.com/muskan-shah-02/dokydoc/internal/job"
	"github.com/muskan-shah-02/dokydoc/internal/middleware"
	"github.com/muskan-shah-02/dokydoc/internal/repo"
	"github.com/muskan-shah-02/dokydoc/internal/schedule"
	"github.com/muskan-shah-02/dokydoc/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "dokydoc",
		Short: "dokydoc backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run dokydoc server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(conn)
	segmentRepo := repo.NewSegmentRepo(conn)
	resultRepo := repo.NewAnalysisResultRepo(conn)
	componentRepo := repo.NewCodeComponentRepo(conn)
	linkRepo := repo.NewLinkRepo(conn)
	mismatchRepo := repo.NewMismatchRepo(conn)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	collaborator := ai.NewClient(aiProvider, ai.ClientConfig{
		Model:         cfg.AI.Model,
		Timeout:       cfg.AI.Timeout,
		MaxInputChars: cfg.AI.MaxInputChars,
	})

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	documentService := service.NewDocumentService(docRepo, segmentRepo, resultRepo, linkRepo, mismatchRepo, store)
	analysisService := service.NewAnalysisService(docRepo, segmentRepo, resultRepo, collaborator)
	consolidationService := service.NewConsolidationService(docRepo, segmentRepo, resultRepo, collaborator)
	componentService := service.NewComponentService(componentRepo, linkRepo, mismatchRepo)
	codeAnalysisService := service.NewCodeAnalysisService(componentRepo, service.NewHTTPFetcher(), collaborator)
	linkService := service.NewLinkService(docRepo, componentRepo, linkRepo)
	validationService := service.NewValidationService(docRepo, componentRepo, linkRepo, mismatchRepo, collaborator)

	deps := handler.RouterDeps{
		Documents:  handler.NewDocumentHandler(documentService),
		Analysis:   handler.NewAnalysisHandler(analysisService, consolidationService),
		Components: handler.NewCodeComponentHandler(componentService, codeAnalysisService),
		Links:      handler.NewLinkHandler(linkService),
		Validation: handler.NewValidationHandler(validationService),
		JWTSecret:  []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	scheduler := schedule.NewCronScheduler()
	reaper := job.NewAnalysisReaperJob(docRepo, time.Duration(cfg.Jobs.ReaperMaxAgeH)*time.Hour)
	if err := scheduler.AddJob(reaper, cfg.Jobs.ReaperSpec); err != nil {
		return fmt.Errorf("schedule reaper: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
