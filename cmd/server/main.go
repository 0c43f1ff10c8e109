package main

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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/api/handlers"
	"github.com/maheshrc27/socialpro/internal/api/middleware"
	job "github.com/maheshrc27/socialpro/internal/jobs"
	"github.com/maheshrc27/socialpro/internal/queue"
	"github.com/maheshrc27/socialpro/internal/repository"
	"github.com/maheshrc27/socialpro/internal/service"
	"github.com/maheshrc27/socialpro/pkg/utils"
	"github.com/redis/go-redis/v9"
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

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	sessionKey, err := utils.SessionKey(cfg.SecretKey)
	if err != nil {
		log.Fatalf("Invalid SECRET_KEY: %v", err)
	}
	tokenCipher, err := utils.NewTokenCipher(cfg.SecretKey)
	if err != nil {
		log.Fatalf("Invalid SECRET_KEY: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	stateStore := repository.NewRedisStateStore(rdb, cfg.OAuthStateTTL)

	httpClient := &http.Client{Timeout: cfg.ProviderHTTPTimeout}
	providers := service.NewProviderClients(*cfg, httpClient)

	r2Service := service.NewR2Service(cfg.R2)
	if err := r2Service.Init(context.Background()); err != nil {
		log.Printf("Warning: media storage unavailable: %v", err)
	}

	inspector := asynq.NewInspector(redisConn)
	defer inspector.Close()
	postQueue := queue.NewQueue(client, inspector)

	authService := service.NewAuthService(cfg.Google, userRepo, httpClient)
	userService := service.NewUserService(userRepo)
	platformService := service.NewPlatformService(stateStore, socialAccountRepo, providers, tokenCipher)
	publisher := service.NewPublisher(providers, cfg.PublishConcurrency)
	mediaStore := service.NewMediaStore(r2Service, mediaAssetRepo)
	postService := service.NewPostService(postRepo, platformService, mediaStore, publisher, postQueue)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, sessionKey)

	auth := handlers.NewAuthHandler(*cfg, sessionKey, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Post("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(platformService, *cfg)
	// The provider redirect may outlive the session; the callback still has
	// to land on the dashboard.
	app.Get("/auth/:platform/callback", authMiddleware.OptionalSession(), platform.Callback)
	app.Get("/auth/:platform", authMiddleware.AuthMiddleware(), platform.Connect)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	media := handlers.NewMediaHandler(mediaStore)
	api.Get("/media", media.ListMedia)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Get("/accounts/instagram/media", platform.InstagramMedia)
	api.Get("/accounts/:platform/profile", platform.Profile)
	api.Post("/accounts/:platform/page", platform.SelectPage)
	api.Delete("/accounts/:platform", platform.DeleteSocialAccount)

	// cron jobs
	sweepJob := job.NewScheduleSweepJob(postService)

	c := cron.New()
	if err := sweepJob.Schedule(c, cfg.ScheduleSweepEvery); err != nil {
		log.Fatalf("Could not schedule sweep (SCHEDULE_SWEEP_EVERY): %v", err)
	}
	c.Start()
	defer c.Stop()

	worker := queue.NewWorker(postService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		worker.Register(mux)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.ServerAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ServerAddr)

	gracefulShutdown(app, server, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
	server.Shutdown()

	closeDB(db)
	log.Println("Server shutdown complete.")
}
