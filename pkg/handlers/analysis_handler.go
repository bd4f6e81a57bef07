package handlers

import (
	"errors"
	"log"
	"net/http"

	"review-insight-api/pkg/models"
	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler はレビュー分析関連のハンドラです。
type AnalysisHandler struct {
	analysisService *services.AnalysisService
	storeService    *services.ProductStoreService
}

// NewAnalysisHandler は新しいAnalysisHandlerを生成します。
// storeServiceはnil可（その場合、分析結果は永続化されません）。
func NewAnalysisHandler(analysisService *services.AnalysisService, storeService *services.ProductStoreService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		storeService:    storeService,
	}
}

// AnalyzeReviews はレビュー群を分析して統計サマリーを返します。
// product_idとretailerが指定されていれば結果を永続化します。
func (h *AnalysisHandler) AnalyzeReviews(c *gin.Context) {
	var request models.AnalyzeReviewsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの形式が不正です: " + err.Error(),
		})
		return
	}

	result := h.analysisService.AnalyzeReviews(c.Request.Context(), request.Reviews)

	// 商品IDと小売元が揃っている場合のみ保存する
	if request.ProductID != "" && request.Retailer != "" {
		if h.storeService == nil {
			log.Println("⚠️ ストアが設定されていないため、分析結果は保存されません")
		} else {
			document := h.analysisService.BuildDocument(request.Retailer, request.ProductID, request.ProductInfo, result)
			if err := h.storeService.SaveDocument(c.Request.Context(), document); err != nil {
				// 保存失敗は分析結果の返却を妨げない
				log.Printf("分析結果の保存に失敗しました: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": result,
	})
}

// GetAnalysis は保存済みの分析結果を取得します。
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	if h.storeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "データベースサービスが利用できません。設定を確認してください。",
		})
		return
	}

	retailer := c.Param("retailer")
	productID := c.Param("productID")

	document, err := h.storeService.GetDocument(c.Request.Context(), retailer, productID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "指定された商品の分析結果が見つかりません",
			})
			return
		}
		log.Printf("分析結果の取得に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "分析結果の取得に失敗しました",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": document,
	})
}
