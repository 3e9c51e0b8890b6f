package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invest-retro/api"
	"invest-retro/auth"
	"invest-retro/cache"
	"invest-retro/config"
	"invest-retro/database"
	"invest-retro/database/reports"
	"invest-retro/database/reviews"
	"invest-retro/database/users"
	"invest-retro/feedback"
	"invest-retro/llm"
	"invest-retro/marketdata"
	"invest-retro/review"
)

// App represents the main application
type App struct {
	config   *config.Config
	db       *database.Database
	reportDB *database.ReportDB
	redis    *cache.RedisClient
	server   *api.Server
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config: cfg,
	}
}

// Start wires all components and runs the HTTP server
func (a *App) Start() error {
	// 1. Database connections
	fmt.Println("🗄️  Connecting to database...")
	db, err := database.Connect(
		a.config.Database.Host,
		a.config.Database.Port,
		a.config.Database.Name,
		a.config.Database.User,
		a.config.Database.Password,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	reportDB, err := database.NewReportConnection(database.ConnConfig{
		Host:     a.config.Database.Host,
		Port:     a.config.Database.Port,
		User:     a.config.Database.User,
		Password: a.config.Database.Password,
		DBName:   a.config.Database.Name,
	})
	if err != nil {
		return fmt.Errorf("report database connection failed: %w", err)
	}
	a.reportDB = reportDB

	// 2. Redis (session store)
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.Redis.Host,
		a.config.Redis.Port,
		a.config.Redis.Password,
	)
	if redisClient == nil {
		return fmt.Errorf("redis connection failed: sessions require redis")
	}
	a.redis = redisClient

	// 3. Repositories
	reviewRepo := reviews.NewRepository(db.DB())
	userRepo := users.NewRepository(db.DB())
	reportRepo := reports.NewRepository(reportDB.GetConn())

	// 4. Outbound clients and the classification pipeline
	marketClient := marketdata.NewClient(
		a.config.MarketData.URL,
		a.config.MarketData.MarketIndex,
		a.config.MarketData.Timeout,
	)

	llmClient := llm.NewClient(
		a.config.LLM.Endpoint,
		a.config.LLM.APIKey,
		a.config.LLM.Model,
	)
	invoker := feedback.NewInvoker(
		llmClient,
		a.config.LLM.MaxRetries,
		a.config.LLM.RetryDelay,
		a.config.LLM.Timeout,
		a.config.LLM.StrictTaxonomy,
	)

	reviewService := review.NewService(marketClient, invoker, reviewRepo)

	// 5. Sessions and HTTP server
	sessions := auth.NewSessionManager(redisClient, a.config.Auth.SessionTTL)
	a.server = api.NewServer(reviewService, userRepo, reportRepo, sessions)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start(a.config.Server.Port)
	}()

	// Block until the server fails or the process is told to stop
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		a.shutdown()
		return err
	case sig := <-quit:
		log.Printf("🛑 Received %s, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}

	a.shutdown()
	return nil
}

// shutdown releases long-lived connections
func (a *App) shutdown() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}
	if a.reportDB != nil {
		if err := a.reportDB.Close(); err != nil {
			log.Printf("Failed to close report database: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}
}
