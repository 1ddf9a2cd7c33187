package main

import (
	"context"
	"fmt"
	"time"

	"taskman/configs"
	v1 "taskman/internal/api/v1"
	"taskman/internal/api/v1/handlers"
	"taskman/internal/cache"
	"taskman/internal/middleware"
	"taskman/internal/repository"
	"taskman/internal/token"
	myws "taskman/internal/websocket"
	"taskman/pkg/database"
	"taskman/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()
	ctx := context.Background()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(db)

	redisClient := database.ConnectRedis(ctx, cfg)
	defer redisClient.Close()

	// Wire up dependencies explicitly, no package-level state
	tokens := token.New(cfg.JWTSecret, cfg.TokenTTL)
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	taskCache := cache.NewTaskCache(redisClient)

	hub := myws.NewHub()
	go hub.Run()

	router := &v1.Router{
		Auth:   handlers.NewAuthHandler(users, tokens),
		Tasks:  handlers.NewTaskHandler(tasks, taskCache, hub),
		Health: handlers.NewHealthHandler(db),
		Guard:  middleware.RequireUser(tokens, users),
	}

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	router.Register(app)

	// WebSocket task event stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/tasks", websocket.New(func(c *websocket.Conn) {
		client := &myws.Client{Conn: c}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		// Consumers only listen; reading just detects the close
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.AppPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.AppPort)); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
