package handler

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	config "review-insight-api/configs"
	"review-insight-api/pkg/handlers"
	"review-insight-api/pkg/huggingface"
	"review-insight-api/pkg/scrapers"
	"review-insight-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		log.Printf("🟢 [setupApp] Initializing Gin application")

		// .envファイルはホスティング環境の環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

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
				log.Printf("FATAL: Failed to initialize ProductStoreService in serverless function: %v", err)
			} else {
				storeService = store
			}
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
		r.Use(monitoringService.LoggingMiddleware())
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		r.Use(cors.New(corsConfig))

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

		// APIルートの定義
		v1 := r.Group("/api/v1")
		v1.Use(authMiddleware(cfg.APIKey))
		{
			admin := v1.Group("/admin")
			{
				admin.GET("/health-status", adminHandler.GetHealthStatus)
				admin.POST("/maintenance/start", adminHandler.StartMaintenance)
				admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
			}

			monitoring := v1.Group("/monitoring")
			{
				monitoring.GET("/logs", monitoringHandler.GetLogs)
				monitoring.GET("/logs/recent", monitoringHandler.GetRecentLogs)
			}

			analysis := v1.Group("/analysis")
			{
				analysis.POST("/reviews", analysisHandler.AnalyzeReviews)
				analysis.GET("/:retailer/:productID", analysisHandler.GetAnalysis)
			}

			products := v1.Group("/products")
			{
				products.GET("", productHandler.ListProducts)
				products.GET("/:retailer/:productID", productHandler.GetProduct)
			}

			complaints := v1.Group("/complaints")
			{
				complaints.GET("/categories", complaintHandler.GetCategories)
				complaints.POST("/analyze-text", complaintHandler.AnalyzeText)
				complaints.GET("/:retailer/:productID", complaintHandler.GetProductComplaints)
			}

			scrape := v1.Group("/scrape")
			{
				scrape.POST("", scrapeHandler.ScrapeAndAnalyze)
				scrape.POST("/preview", scrapeHandler.Preview)
			}

			export := v1.Group("/export")
			{
				export.GET("/:retailer/:productID", exportHandler.ExportProduct)
			}
		}

		app = r
	})

	return app
}

// Handler はサーバーレス環境のエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
