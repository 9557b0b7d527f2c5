package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/colorpress/configs"
	"github.com/maheshrc27/colorpress/internal/api/handlers"
	"github.com/maheshrc27/colorpress/internal/api/middleware"
	"github.com/maheshrc27/colorpress/internal/database"
	job "github.com/maheshrc27/colorpress/internal/jobs"
	"github.com/maheshrc27/colorpress/internal/notify"
	"github.com/maheshrc27/colorpress/internal/queue"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db, cfg.DatabaseDriver); err != nil {
		closeDB(db)
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if cfg.UseMock() {
		slog.Warn("running in mock mode, ideas, images and seo come from canned data")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    10 * 1024 * 1024, // 10 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	themeRepo := repository.NewThemeRepository(db)
	pageRepo := repository.NewPageRepository(db)
	approvedRepo := repository.NewApprovedPageRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	scheduledRepo := repository.NewScheduledPostRepository(db)

	store, err := imageStore(*cfg)
	if err != nil {
		closeDB(db)
		log.Fatalf("Failed to set up image storage: %v", err)
	}

	openAIService := service.NewOpenAIService(*cfg)
	imageService := service.NewImageService(*cfg, store)
	wordPressService := service.NewWordPressService(cfg.WordPress)

	var (
		redisClient  *redis.Client
		asynqClient  *asynq.Client
		asynqServer  *asynq.Server
		notifier     service.Notifier
		subscriber   notify.Subscriber
		inline       *queue.InlineDispatcher
		dispatcher   service.GenerationDispatcher
		redisConnOpt asynq.RedisClientOpt
	)

	if cfg.RedisURI != "" {
		opts, err := redisOptions(cfg.RedisURI)
		if err != nil {
			closeDB(db)
			log.Fatalf("Invalid REDIS_URI: %v", err)
		}
		redisClient = redis.NewClient(opts)
		redisNotifier := notify.NewRedisNotifier(redisClient)
		notifier, subscriber = redisNotifier, redisNotifier

		redisConnOpt = asynq.RedisClientOpt{
			Addr:      opts.Addr,
			Username:  opts.Username,
			Password:  opts.Password,
			DB:        opts.DB,
			TLSConfig: opts.TLSConfig,
		}
		asynqClient = asynq.NewClient(redisConnOpt)
		dispatcher = queue.NewAsynqDispatcher(asynqClient)
	} else {
		slog.Warn("REDIS_URI is unset, generation runs in process")
		localNotifier := notify.NewLocalNotifier()
		notifier, subscriber = localNotifier, localNotifier
	}

	generationService := service.NewGenerationService(themeRepo, pageRepo, openAIService, imageService, notifier)
	if dispatcher == nil {
		inline = queue.NewInlineDispatcher(generationService)
		dispatcher = inline
	}

	themeService := service.NewThemeService(themeRepo, pageRepo, approvedRepo, openAIService, dispatcher)
	reviewService := service.NewReviewService(db, pageRepo, approvedRepo, openAIService, notifier)
	publishService := service.NewPublishService(approvedRepo, settingsRepo, wordPressService, cfg.WordPress.DefaultCategoryID)

	// cron jobs
	publishJob := job.NewPublishJob(publishService)
	settingsService := service.NewSettingsService(settingsRepo, publishJob, cfg.DefaultPublishHour)

	settings, err := settingsService.Get(context.Background())
	if err != nil {
		closeDB(db)
		log.Fatalf("Failed to load scheduler settings: %v", err)
	}
	if err := publishJob.Start(settings); err != nil {
		slog.Error("daily publish trigger not started", "error", err)
	}

	// queue
	if asynqClient != nil {
		queueW := queue.NewQueue(generationService)
		asynqServer = asynq.NewServer(redisConnOpt, asynq.Config{
			Concurrency: cfg.QueueConcurrency,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeGenerateTheme, queueW.HandleGenerateThemeTask)

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Start(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	health := handlers.NewHealthHandler(db, cfg.UseMock())
	app.Get("/api/health", health.Health)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/auth/token", auth.IssueToken)

	app.Static("/images", cfg.ImagesDir)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	theme := handlers.NewThemeHandler(themeService, subscriber)
	api.Post("/ai/generate-ideas", theme.GenerateIdeas)
	api.Post("/ai/create-prompt", theme.CreatePrompt)
	api.Get("/ai/prompt/:promptId", theme.GetPrompt)
	api.Get("/ai/prompt/:promptId/events", theme.Events)

	review := handlers.NewReviewHandler(reviewService)
	api.Post("/ai/approve-page", review.ApprovePage)
	api.Post("/ai/reject-page", review.RejectPage)
	api.Post("/ai/generate-seo", review.GenerateSeo)

	publish := handlers.NewPublishHandler(publishService, wordPressService)
	api.Get("/wordpress/test-connection", publish.TestConnection)
	api.Get("/wordpress/categories", publish.ListCategories)
	api.Get("/wordpress/approved-pages", publish.ListApprovedPages)
	api.Post("/wordpress/publish-page", publish.PublishPage)
	api.Post("/wordpress/publish-batch", publish.PublishBatch)

	scheduler := handlers.NewSettingsHandler(settingsService, scheduledRepo)
	api.Get("/scheduler/settings", scheduler.GetSettings)
	api.Post("/scheduler/settings", scheduler.UpdateSettings)
	api.Get("/scheduler/scheduled-posts", scheduler.ScheduledPosts)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	publishJob.Stop()
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if asynqClient != nil {
		asynqClient.Close()
	}
	if inline != nil {
		inline.Wait()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}

func imageStore(cfg config.Config) (service.ImageStore, error) {
	if cfg.R2.Enabled() {
		return service.NewR2Service(context.Background(), cfg.R2)
	}
	slog.Info("R2 is not configured, storing images on disk", "dir", cfg.ImagesDir)
	return service.NewDiskStore(cfg.ImagesDir)
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(uri string) (*redis.Options, error) {
	if strings.Contains(uri, "://") {
		return redis.ParseURL(uri)
	}
	return &redis.Options{Addr: uri}, nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}
