package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casavia/casavia/internal/api/handlers"
	"github.com/casavia/casavia/internal/config"
	"github.com/casavia/casavia/internal/database"
	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/jobs"
	"github.com/casavia/casavia/internal/metrics"
	"github.com/casavia/casavia/internal/openai"
	"github.com/casavia/casavia/internal/repository"
	"github.com/casavia/casavia/internal/server"
	"github.com/casavia/casavia/internal/service"
	"github.com/casavia/casavia/internal/storage"
	"github.com/casavia/casavia/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the casavia API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	metrics.RegisterSearchMetrics()

	propertyRepo := repository.NewPropertyRepository(pool)
	inquiryRepo := repository.NewInquiryRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	if cfg.InitAgentName != "" {
		if err := bootstrapInitialAgent(ctx, cfg, agentRepo, apiKeyRepo); err != nil {
			return fmt.Errorf("failed to bootstrap initial agent: %w", err)
		}
	}

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		storageClient = &S3StorageAdapter{client: s3Client}
	}

	var embeddingWorker *jobs.Worker
	if cfg.HasOpenAI() {
		embeddingClient := openai.NewClient(cfg.OpenAIAPIKey)
		embeddingSvc := service.NewEmbeddingService(embeddingClient, propertyRepo)
		embeddingProcessor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc)
		embeddingWorker = jobs.NewWorker("embedding", embeddingProcessor, 10*time.Second)
		go embeddingWorker.Start(ctx)
		log.Println("embedding worker started")
	}

	expiryWorker := jobs.NewWorker("expiry", jobs.NewExpiryWorker(propertyRepo), 1*time.Hour)
	go expiryWorker.Start(ctx)
	log.Println("expiry worker started")

	uuidGen := &service.DefaultUUIDGenerator{}

	propertySvc := service.NewPropertyService(propertyRepo, embeddingJobRepo, cfg.SearchTimeout, cfg.ListingTTL)
	inquirySvc := service.NewInquiryService(inquiryRepo, propertyRepo, txRunner)
	dashboardSvc := service.NewDashboardService(propertyRepo, inquiryRepo)
	authSvc := service.NewAuthService(agentRepo, apiKeyRepo, uuidGen)

	var photoHandler *handlers.PhotoHandler
	if storageClient != nil {
		photoHandler = handlers.NewPhotoHandler(service.NewPhotoService(propertyRepo, storageClient))
	} else {
		photoHandler = handlers.NewPhotoHandler(&NoOpPhotoService{})
	}

	routerCfg := server.RouterConfig{
		AuthValidator:    authSvc,
		PropertyHandler:  handlers.NewPropertyHandler(propertySvc),
		InquiryHandler:   handlers.NewInquiryHandler(inquirySvc),
		PhotoHandler:     photoHandler,
		DashboardHandler: handlers.NewDashboardHandler(dashboardSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}
	expiryWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// S3StorageAdapter bridges the storage client to the service layer's
// metadata type.
type S3StorageAdapter struct {
	client *storage.S3Client
}

func (a *S3StorageAdapter) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	return a.client.GenerateUploadURL(ctx, key, contentType)
}

func (a *S3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *S3StorageAdapter) DeleteObject(ctx context.Context, key string) error {
	return a.client.DeleteObject(ctx, key)
}

func (a *S3StorageAdapter) HeadObject(ctx context.Context, key string) (*service.ObjectMetadata, error) {
	meta, err := a.client.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return &service.ObjectMetadata{
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}, nil
}

// NoOpPhotoService stands in when no S3 endpoint is configured.
type NoOpPhotoService struct{}

func (s *NoOpPhotoService) InitUpload(ctx context.Context, input service.InitPhotoUploadInput) (*service.InitPhotoUploadResult, error) {
	return nil, fmt.Errorf("photo service not configured: S3_ENDPOINT required")
}

func (s *NoOpPhotoService) CompleteUpload(ctx context.Context, input service.CompletePhotoUploadInput) error {
	return fmt.Errorf("photo service not configured: S3_ENDPOINT required")
}

func (s *NoOpPhotoService) DownloadURL(ctx context.Context, propertyID, storageKey string) (string, error) {
	return "", fmt.Errorf("photo service not configured: S3_ENDPOINT required")
}

func bootstrapInitialAgent(ctx context.Context, cfg *config.Config, agentRepo *repository.AgentRepository, apiKeyRepo *repository.APIKeyRepository) error {
	agent, err := agentRepo.GetByEmail(ctx, cfg.InitAgentEmail)
	if err != nil && err != domain.ErrAgentNotFound {
		return fmt.Errorf("failed to check existing agent: %w", err)
	}

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(agentRepo, apiKeyRepo, uuidGen)

	if agent == nil {
		agent, err = authSvc.CreateAgent(ctx, service.CreateAgentInput{
			Name:  cfg.InitAgentName,
			Email: cfg.InitAgentEmail,
		})
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}
		log.Printf("bootstrap: created agent '%s' (id: %s)", agent.Name, agent.ID)
	} else {
		log.Printf("bootstrap: agent '%s' already exists (id: %s)", agent.Name, agent.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid CASAVIA_INIT_API_KEY format (expected 'cva_<64 hex chars>')")
		}

		existingKey, err := authSvc.GetAPIKeyByHash(ctx, cfg.InitAPIKey)
		if err == nil && existingKey != nil {
			log.Printf("bootstrap: API key already exists (id: %s)", existingKey.ID)
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, agent.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql handle
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
