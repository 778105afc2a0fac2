package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/delivery/consumer"
	delivery "golang-stock-insight/internal/insight/delivery/http"
	_ "golang-stock-insight/internal/insight/docs"
	"golang-stock-insight/internal/insight/repository"
	"golang-stock-insight/internal/insight/service"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/postgres"
	"golang-stock-insight/pkg/redis"
	"golang-stock-insight/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analysis Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db.DB)
	signalRepo := repository.NewSignalRepository(db.DB)
	stocksRepo := repository.NewStocksRepository(db.DB)
	marketRepo := repository.NewPolygonRepository(cfg, appLogger)
	articleRepo := repository.NewArticleRepository(cfg, appLogger)

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
	}
	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
	}

	// Initialize notifier
	var notifier telegram.Notifier = telegram.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	analyzer := service.NewStockAnalyzer(cfg, appLogger, aiRepo, marketRepo, articleRepo)
	panelManager := service.NewPanelManager(cfg, appLogger, analyzer, sessionRepo, signalRepo, notifier)
	defer panelManager.Shutdown()

	if cfg.Scheduler.Enabled {
		scheduleSvc := service.NewScheduleService(cfg, appLogger, stocksRepo, redisClient)
		go scheduleSvc.Start(ctx)
	}

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient, panelManager, appLogger)
	redisConsumer.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	panelsGroup := apiV1.Group("/panels")
	panelHandler := delivery.NewPanelHandler(panelManager, appLogger)
	panelHandler.RegisterRoutes(panelsGroup)
	streamHandler := delivery.NewStreamHandler(cfg, panelManager, appLogger)
	streamHandler.RegisterRoutes(panelsGroup)

	stocksHandler := delivery.NewStocksHandler(stocksRepo, appLogger)
	stocksHandler.RegisterRoutes(apiV1.Group("/stocks"))

	signalHandler := delivery.NewSignalHandler(signalRepo, appLogger)
	signalHandler.RegisterRoutes(apiV1.Group("/signals"))

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	redisConsumer.Stop()

	appLogger.Info("Server exiting")
}

// @title Stock Insight API
// @version 1.0
// @description AI analysis panels for stocks.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
