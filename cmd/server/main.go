package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/crosspost-app/composer-api/configs"
	"github.com/crosspost-app/composer-api/internal/api/handlers"
	job "github.com/crosspost-app/composer-api/internal/jobs"
	"github.com/crosspost-app/composer-api/internal/queue"
	"github.com/crosspost-app/composer-api/internal/repository"
	"github.com/crosspost-app/composer-api/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == cfg.FrontendURL
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	socialAccountRepo := repository.NewSocialAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)

	r2Service := service.NewR2Service(*cfg)
	accountService := service.NewAccountService(socialAccountRepo)
	aiService := service.NewAIService(*cfg)
	submissionService := service.NewSubmissionService(*cfg)
	purge := func(keys []string) error {
		return queue.EnqueueMediaPurge(client, queue.MediaPurgePayload{Keys: keys})
	}
	composerService := service.NewComposerService(sessionRepo, historyRepo, accountService, aiService, submissionService, r2Service, purge)

	api := app.Group("/api")

	account := handlers.NewAccountHandler(accountService)
	api.Get("/accounts", account.ListAccounts)

	comp := handlers.NewComposerHandler(composerService)
	api.Post("/sessions", comp.CreateSession)
	api.Get("/sessions/:id", comp.GetSession)
	api.Put("/sessions/:id/draft", comp.UpdateDraft)
	api.Post("/sessions/:id/media", comp.AttachMedia)
	api.Post("/sessions/:id/media/remove", comp.RemoveMedia)
	api.Post("/sessions/:id/selection/toggle", comp.ToggleSelection)
	api.Post("/sessions/:id/selection/confirm", comp.ResolveConfirmation)
	api.Post("/sessions/:id/selection/all", comp.SelectAll)
	api.Post("/sessions/:id/selection/none", comp.DeselectAll)
	api.Post("/sessions/:id/content/discard", comp.DiscardContent)
	api.Get("/sessions/:id/validation", comp.Validation)
	api.Get("/sessions/:id/history", comp.History)
	api.Post("/sessions/:id/generate", comp.Generate)
	api.Post("/sessions/:id/submit", comp.Submit)

	// cron jobs
	cleanupJob := job.NewSessionCleanupJob(composerService)

	//queue
	queueW := queue.NewQueue(r2Service)

	c := cron.New()
	c.AddFunc("@every 24h00m00s", cleanupJob.PurgeStale)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeMediaPurge, queueW.HandleMediaPurgeTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
