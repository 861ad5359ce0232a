package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"krishisense/internal/config"
	"krishisense/internal/handler"
	"krishisense/internal/repository"
	"krishisense/internal/service"
	"krishisense/internal/weather"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("KrishiSense Crop Price Advisor")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repo.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if n, errs := repo.BackfillEmbeddings(ctx); len(errs) > 0 {
		log.Printf("Warning: feature embedding backfill finished with %d errors: %v", len(errs), errs)
	} else if n > 0 {
		log.Printf("✅ Backfilled %d feature embeddings", n)
	}
	cancel()

	// Weather provider: OpenWeatherMap -> rate limiter -> cache
	if cfg.Weather.APIKey == "" {
		log.Println("⚠️  OPENWEATHER_API_KEY is not set - predictions will fail at the weather stage")
	}
	var weatherProvider weather.Provider = weather.NewOpenWeatherMapProvider(&cfg.Weather)
	weatherProvider = weather.NewRateLimitedProvider(weatherProvider, cfg.Weather.RateLimitRPS, cfg.Weather.RateBurst)
	weatherProvider = weather.NewCachedProvider(weatherProvider, weather.NewCache(cfg.Cache.RedisURL), cfg.Weather.CacheTTL)
	log.Printf("✅ Weather provider initialized")
	log.Printf("   - Rate limit: %.2f rps (burst %d)", cfg.Weather.RateLimitRPS, cfg.Weather.RateBurst)
	log.Printf("   - Cache TTL: %s", cfg.Weather.CacheTTL)

	// Initialize services
	modelService := service.NewModelService(&cfg.Model)
	predictionService := service.NewPredictionService(
		weatherProvider,
		modelService,
		repo,
		cfg.Model.RMSE,
		cfg.Logging.Debug(),
	)

	log.Println("✅ Services initialized")

	// Initialize handlers
	predictionHandler := handler.NewPredictionHandler(predictionService, &cfg.History)
	catalogHandler := handler.NewCatalogHandler(modelService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", handler.UserIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := repo.Ping(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    "crop-price-advisor",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
			"model":      modelService.Info().Name,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Reference data
		apiV1.GET("/markets", catalogHandler.Markets)
		apiV1.GET("/model", catalogHandler.ModelInfo)

		// Per-user endpoints
		user := apiV1.Group("", handler.RequireUser())
		user.POST("/predict", predictionHandler.Predict)
		user.GET("/predict/history", predictionHandler.History)
		user.POST("/predict/actual", predictionHandler.RecordActual)
		user.DELETE("/predict/:id", predictionHandler.Delete)
		user.GET("/heatmap/latest", predictionHandler.Heatmap)
	}

	// Serve static files (frontend)
	setupStaticFiles(router, cfg.Server.StaticDir)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
