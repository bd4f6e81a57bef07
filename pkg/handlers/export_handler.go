package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler は分析結果のExcelエクスポートハンドラです。
type ExportHandler struct {
	exportService *services.ExportService
	storeService  *services.ProductStoreService
}

// NewExportHandler は新しいExportHandlerを生成します。
func NewExportHandler(exportService *services.ExportService, storeService *services.ProductStoreService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		storeService:  storeService,
	}
}

// ExportProduct は保存済み分析をxlsxファイルとしてダウンロードさせます。
func (h *ExportHandler) ExportProduct(c *gin.Context) {
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
		log.Printf("商品ドキュメントの取得に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "商品ドキュメントの取得に失敗しました",
		})
		return
	}

	workbook, err := h.exportService.ExportDocument(document)
	if err != nil {
		log.Printf("Excelエクスポートに失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Excelファイルの生成に失敗しました",
		})
		return
	}

	filename := h.exportService.ExportFilename(retailer, productID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
