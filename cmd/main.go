package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/internal/database"
	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/middleware"
	"github.com/OussamaHaimour/chatbot-HCP/routes"
	"github.com/OussamaHaimour/chatbot-HCP/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to Postgres and make sure the schema exists
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.InitSchema(ctx, db, cfg.VectorDimensions); err != nil {
			log.Fatal("Failed to initialize schema:", err)
		}
	}
	store := database.NewStore(db)

	// Wire the domain services
	embeddings := services.NewEmbeddingsClient(cfg)
	generation, err := services.NewGenerationService(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize generation client:", err)
	}
	defer generation.Close()

	layout := services.NewLayoutAnalyzer(cfg.LineTolerance, cfg.HeadingMinFontSize)
	chunker := services.NewChunker(cfg.ChunkMinTokens, cfg.ChunkMaxTokens)
	ingest := services.NewIngestionService(store, embeddings, embeddings, layout, chunker)
	retriever := services.NewRetriever(store, cfg.SimilarityThreshold, cfg.SearchLimit)
	intent := services.NewIntentRouter()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg)

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, store)
	routes.SetupUploadRoutes(router, cfg, ingest, authMiddleware)
	routes.SetupChatRoutes(router, cfg, store, embeddings, retriever, intent, generation, authMiddleware)
	routes.SetupFileRoutes(router, store, authMiddleware)
	routes.SetupToolRoutes(router, embeddings, authMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
