package main

import (
	"context"
	"log"
	"net/http"
	"time"

	config "review-insight-api/configs"
	"review-insight-api/pkg/handlers"
	"review-insight-api/pkg/huggingface"
	"review-insight-api/pkg/scrapers"
	"review-insight-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	// Ginルーターの初期化
	r := gin.Default()

	// サービスの初期化
	monitoringService := services.NewMonitoringService()

	var capability services.MLCapability
	if cfg.HFAPIKey != "" {
		capability = huggingface.NewClient(cfg.HFAPIURL, cfg.HFAPIKey, cfg.HFZeroShotModel, cfg.HFRatingModel, cfg.HFTimeout)
	}
	analysisService := services.NewAnalysisService(capability, services.AnalysisConfig{
		ComplaintThreshold: cfg.ComplaintThreshold,
		Workers:            cfg.AnalysisWorkers,
		MLTimeout:          cfg.HFTimeout,
	})

	var storeService *services.ProductStoreService
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := services.NewProductStoreService(ctx, cfg.MongoURI, cfg.MongoDatabase)
		cancel()
		if err != nil {
			log.Printf("FATAL: Failed to initialize ProductStoreService: %v", err)
		} else {
			storeService = store
		}
	} else {
		log.Println("⚠️ MONGO_URIが設定されていないため、分析結果は永続化されません")
	}

	exportService := services.NewExportService()
	registry := scrapers.NewRegistry(
		scrapers.NewTargetScraper(0),
		scrapers.NewTrendyolScraper(0),
	)

	// ハンドラーの初期化
	analysisHandler := handlers.NewAnalysisHandler(analysisService, storeService)
	productHandler := handlers.NewProductHandler(storeService)
	complaintHandler := handlers.NewComplaintHandler(analysisService, storeService)
	scrapeHandler := handlers.NewScrapeHandler(registry, analysisService, storeService)
	exportHandler := handlers.NewExportHandler(exportService, storeService)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware()) // ロギングミドルウェアをグローバルに適用
	r.Use(cors.Default())

	// 認証ミドルウェア
	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	// ヘルスチェックエンドポイント
	r.GET("/health", handlers.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
			monitoring.GET("/logs/recent", monitoringHandler.GetRecentLogs)
		}

		// レビュー分析API
		analysis := v1.Group("/analysis")
		{
			analysis.POST("/reviews", analysisHandler.AnalyzeReviews)
			analysis.GET("/:retailer/:productID", analysisHandler.GetAnalysis)
		}

		// 商品API
		products := v1.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:retailer/:productID", productHandler.GetProduct)
		}

		// 苦情分類API
		complaints := v1.Group("/complaints")
		{
			complaints.GET("/categories", complaintHandler.GetCategories)
			complaints.POST("/analyze-text", complaintHandler.AnalyzeText)
			complaints.GET("/:retailer/:productID", complaintHandler.GetProductComplaints)
		}

		// スクレイピングAPI
		scrape := v1.Group("/scrape")
		{
			scrape.POST("", scrapeHandler.ScrapeAndAnalyze)
			scrape.POST("/preview", scrapeHandler.Preview)
		}

		// エクスポートAPI
		export := v1.Group("/export")
		{
			export.GET("/:retailer/:productID", exportHandler.ExportProduct)
		}
	}

	log.Printf("Starting Review Insight API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
