package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"review-insight-api/pkg/models"
	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ComplaintHandler は苦情分類関連のハンドラです。
type ComplaintHandler struct {
	analysisService *services.AnalysisService
	storeService    *services.ProductStoreService
}

// NewComplaintHandler は新しいComplaintHandlerを生成します。
func NewComplaintHandler(analysisService *services.AnalysisService, storeService *services.ProductStoreService) *ComplaintHandler {
	return &ComplaintHandler{
		analysisService: analysisService,
		storeService:    storeService,
	}
}

// GetCategories は苦情カテゴリの一覧を定義順で返します。
func (h *ComplaintHandler) GetCategories(c *gin.Context) {
	categories := services.ComplaintCategories()
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(categories),
		"categories": categories,
	})
}

// AnalyzeText は単一テキストの苦情分類を実行します。
func (h *ComplaintHandler) AnalyzeText(c *gin.Context) {
	var request models.TextAnalysisRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの形式が不正です: " + err.Error(),
		})
		return
	}

	threshold := h.analysisService.ComplaintThreshold()
	if request.Threshold != nil {
		if *request.Threshold <= 0 || *request.Threshold > 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "thresholdは0より大きく1以下で指定してください",
			})
			return
		}
		threshold = *request.Threshold
	}

	complaints := h.analysisService.AnalyzeText(c.Request.Context(), request.Text, threshold)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": models.TextAnalysisResponse{
			Text:              request.Text,
			Threshold:         threshold,
			ComplaintsFound:   complaints,
			TotalComplaints:   len(complaints),
			AnalysisTimestamp: time.Now().Unix(),
		},
	})
}

// GetProductComplaints は保存済み分析から苦情ビューを返します。
func (h *ComplaintHandler) GetProductComplaints(c *gin.Context) {
	if h.storeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "データベースサービスが利用できません。設定を確認してください。",
		})
		return
	}

	retailer := c.Param("retailer")
	productID := c.Param("productID")

	complaints, err := h.storeService.GetComplaintAnalysis(c.Request.Context(), retailer, productID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "指定された商品の分析結果が見つかりません",
			})
			return
		}
		log.Printf("苦情分析の取得に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "苦情分析の取得に失敗しました",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"complaints": complaints,
	})
}
