package handlers

import (
	"errors"
	"log"
	"net/http"

	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ProductHandler は保存済み商品の参照ハンドラです。
type ProductHandler struct {
	storeService *services.ProductStoreService
}

// NewProductHandler は新しいProductHandlerを生成します。
func NewProductHandler(storeService *services.ProductStoreService) *ProductHandler {
	return &ProductHandler{
		storeService: storeService,
	}
}

// ListProducts は分析済み商品の一覧を新しい順に返します。
func (h *ProductHandler) ListProducts(c *gin.Context) {
	if h.storeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "データベースサービスが利用できません。設定を確認してください。",
		})
		return
	}

	products, err := h.storeService.ListProducts(c.Request.Context())
	if err != nil {
		log.Printf("商品一覧の取得に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "商品一覧の取得に失敗しました",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

// GetProduct は保存済み商品ドキュメントを取得します。
func (h *ProductHandler) GetProduct(c *gin.Context) {
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
				"error":   "指定された商品が見つかりません",
			})
			return
		}
		log.Printf("商品ドキュメントの取得に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "商品ドキュメントの取得に失敗しました",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": document,
	})
}
