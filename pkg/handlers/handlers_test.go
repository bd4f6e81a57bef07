package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "review-insight-api/configs"
	"review-insight-api/pkg/scrapers"
	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// newTestRouter MLモデルもDBもない構成でルーターを組み立てる
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	analysisService := services.NewAnalysisService(nil, services.AnalysisConfig{})
	registry := scrapers.NewRegistry(scrapers.NewTargetScraper(0), scrapers.NewTrendyolScraper(0))

	analysisHandler := NewAnalysisHandler(analysisService, nil)
	productHandler := NewProductHandler(nil)
	complaintHandler := NewComplaintHandler(analysisService, nil)
	scrapeHandler := NewScrapeHandler(registry, analysisService, nil)
	exportHandler := NewExportHandler(services.NewExportService(), nil)
	monitoringHandler := NewMonitoringHandler(services.NewMonitoringService())

	router := gin.New()
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analysis/reviews", analysisHandler.AnalyzeReviews)
		v1.GET("/analysis/:retailer/:productID", analysisHandler.GetAnalysis)
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/complaints/categories", complaintHandler.GetCategories)
		v1.POST("/complaints/analyze-text", complaintHandler.AnalyzeText)
		v1.POST("/scrape", scrapeHandler.ScrapeAndAnalyze)
		v1.GET("/export/:retailer/:productID", exportHandler.ExportProduct)
		v1.GET("/monitoring/logs/recent", monitoringHandler.GetRecentLogs)
	}

	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestGetCategories(t *testing.T) {
	router := newTestRouter()

	req, _ := http.NewRequest("GET", "/api/v1/complaints/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success    bool `json:"success"`
		Count      int  `json:"count"`
		Categories []struct {
			Category    string `json:"category"`
			Description string `json:"description"`
			DisplayName string `json:"display_name"`
		} `json:"categories"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, 8, response.Count)
	// 宣言順で返ることを確認
	assert.Equal(t, "material_quality", response.Categories[0].Category)
	assert.Equal(t, "customer_service", response.Categories[7].Category)
	assert.Equal(t, "Battery Life", response.Categories[2].DisplayName)
}

func TestAnalyzeText(t *testing.T) {
	router := newTestRouter()

	w := performJSON(router, "POST", "/api/v1/complaints/analyze-text", map[string]interface{}{
		"text": "The battery dies so quickly and the sound is muffled",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "battery_life")
	assert.Contains(t, w.Body.String(), "sound_quality")
}

func TestAnalyzeTextValidation(t *testing.T) {
	router := newTestRouter()

	// textは必須
	w := performJSON(router, "POST", "/api/v1/complaints/analyze-text", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 閾値の範囲チェック
	w = performJSON(router, "POST", "/api/v1/complaints/analyze-text", map[string]interface{}{
		"text":      "broken",
		"threshold": 1.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeReviews(t *testing.T) {
	router := newTestRouter()

	w := performJSON(router, "POST", "/api/v1/analysis/reviews", map[string]interface{}{
		"reviews": []string{
			"Absolutely love them, great product",
			"The battery dies so quickly, disappointed",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success  bool `json:"success"`
		Analysis struct {
			TotalReviews         int            `json:"total_reviews"`
			TotalComplaints      int            `json:"total_complaints"`
			MLRatingDistribution map[string]int `json:"ml_rating_distribution"`
			AnalysisMethod       string         `json:"analysis_method"`
		} `json:"analysis"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.Analysis.TotalReviews)
	assert.Equal(t, 1, response.Analysis.TotalComplaints)
	assert.Equal(t, "Keyword Analysis", response.Analysis.AnalysisMethod)
}

func TestAnalyzeReviewsValidation(t *testing.T) {
	router := newTestRouter()

	// reviewsは必須
	w := performJSON(router, "POST", "/api/v1/analysis/reviews", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreUnavailable(t *testing.T) {
	router := newTestRouter()

	// ストア未設定時は503を返す
	for _, path := range []string{
		"/api/v1/products",
		"/api/v1/analysis/target/123",
		"/api/v1/export/target/123",
	} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "path: %s", path)
	}
}

func TestScrapeUnknownSource(t *testing.T) {
	router := newTestRouter()

	w := performJSON(router, "POST", "/api/v1/scrape", map[string]interface{}{
		"source":     "amazon",
		"product_id": "123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecentLogsValidation(t *testing.T) {
	router := newTestRouter()

	req, _ := http.NewRequest("GET", "/api/v1/monitoring/logs/recent?limit=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)

	adminHandler := NewAdminHandler(&config.Config{AdminUsername: "admin", AdminPassword: "secret"})

	router := gin.New()
	router.POST("/admin/maintenance/start", adminHandler.StartMaintenance)
	router.POST("/admin/maintenance/stop", adminHandler.StopMaintenance)
	router.GET("/admin/health-status", adminHandler.GetHealthStatus)
	router.GET("/health", HealthCheck)

	// 誤った認証情報は401
	w := performJSON(router, "POST", "/admin/maintenance/start", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 正しい認証情報でメンテナンスモード開始
	w = performJSON(router, "POST", "/admin/maintenance/start", map[string]string{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// メンテナンス中はヘルスチェックが503
	req, _ := http.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// 停止後は200に戻る
	w = performJSON(router, "POST", "/admin/maintenance/stop", map[string]string{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
