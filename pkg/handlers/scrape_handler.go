package handlers

import (
	"log"
	"net/http"

	"review-insight-api/pkg/models"
	"review-insight-api/pkg/scrapers"
	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ScrapeHandler はレビュー収集と分析を組み合わせたハンドラです。
type ScrapeHandler struct {
	registry        *scrapers.Registry
	analysisService *services.AnalysisService
	storeService    *services.ProductStoreService
}

// NewScrapeHandler は新しいScrapeHandlerを生成します。
func NewScrapeHandler(registry *scrapers.Registry, analysisService *services.AnalysisService, storeService *services.ProductStoreService) *ScrapeHandler {
	return &ScrapeHandler{
		registry:        registry,
		analysisService: analysisService,
		storeService:    storeService,
	}
}

// resolve リクエストからスクレイパーと商品IDを決定する共通処理
func (h *ScrapeHandler) resolve(c *gin.Context) (scrapers.Scraper, string, bool) {
	var request models.ScrapeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの形式が不正です: " + err.Error(),
		})
		return nil, "", false
	}

	scraper, err := h.registry.Get(request.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return nil, "", false
	}

	productID, err := scrapers.ResolveProductID(scraper, request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return nil, "", false
	}

	return scraper, productID, true
}

// ScrapeAndAnalyze はレビューを収集して分析し、結果を永続化して返します。
func (h *ScrapeHandler) ScrapeAndAnalyze(c *gin.Context) {
	scraper, productID, ok := h.resolve(c)
	if !ok {
		return
	}

	scraped, err := scraper.Scrape(c.Request.Context(), productID)
	if err != nil {
		log.Printf("レビューの収集に失敗しました (source: %s, product: %s): %v", scraper.Source(), productID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "レビューの収集に失敗しました",
		})
		return
	}

	result := h.analysisService.AnalyzeReviews(c.Request.Context(), scraped.Reviews)

	if h.storeService != nil {
		document := h.analysisService.BuildDocument(scraper.Source(), productID, scraped.ProductInfo, result)
		if err := h.storeService.SaveDocument(c.Request.Context(), document); err != nil {
			log.Printf("分析結果の保存に失敗しました: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"source":       scraper.Source(),
		"product_id":   productID,
		"product_info": scraped.ProductInfo,
		"review_count": len(scraped.Reviews),
		"analysis":     result,
	})
}

// Preview はレビューを収集して分析し、永続化せずに生レビューごと返します。
func (h *ScrapeHandler) Preview(c *gin.Context) {
	scraper, productID, ok := h.resolve(c)
	if !ok {
		return
	}

	scraped, err := scraper.Scrape(c.Request.Context(), productID)
	if err != nil {
		log.Printf("レビューの収集に失敗しました (source: %s, product: %s): %v", scraper.Source(), productID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "レビューの収集に失敗しました",
		})
		return
	}

	result := h.analysisService.AnalyzeReviews(c.Request.Context(), scraped.Reviews)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"source":       scraper.Source(),
		"product_id":   productID,
		"product_info": scraped.ProductInfo,
		"review_count": len(scraped.Reviews),
		"reviews":      scraped.Reviews,
		"analysis":     result,
	})
}
