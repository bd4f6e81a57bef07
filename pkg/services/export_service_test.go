package services

import (
	"bytes"
	"testing"

	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestExportDocument(t *testing.T) {
	exportService := NewExportService()
	statistics := NewStatisticsService()

	reviews := []models.Review{
		{NormalizedText: "great sound quality", PredictedRating: 5},
		{NormalizedText: "battery died fast", PredictedRating: 2, Complaints: complaint("battery_life")},
	}
	analysis := statistics.Aggregate(reviews, false)

	document := models.ProductDocument{
		DocumentKey: "target_123_product",
		ProductID:   "123",
		Retailer:    "target",
		ProductInfo: models.ProductInfo{Name: "Wireless Headphones", Rating: 4.2},
		Analysis:    &analysis,
		Timestamp:   1700000000,
	}

	data, err := exportService.ExportDocument(&document)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	// 書き出したワークブックを読み戻して検証する
	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Rating Distribution")
	assert.Contains(t, sheets, "Complaint Categories")
	assert.Contains(t, sheets, "Positive Themes")

	// サマリーシートの先頭行は商品名
	name, err := f.GetCellValue("Summary", "B1")
	assert.NoError(t, err)
	assert.Equal(t, "Wireless Headphones", name)

	// 評価分布シートはヘッダー+5行
	rows, err := f.GetRows("Rating Distribution")
	assert.NoError(t, err)
	assert.Len(t, rows, 6)
	assert.Equal(t, []string{"Rating", "Review Count"}, rows[0])
}

func TestExportDocumentWithoutAnalysis(t *testing.T) {
	exportService := NewExportService()

	_, err := exportService.ExportDocument(&models.ProductDocument{DocumentKey: "x"})
	assert.Error(t, err)

	_, err = exportService.ExportDocument(nil)
	assert.Error(t, err)
}

func TestExportFilename(t *testing.T) {
	exportService := NewExportService()
	assert.Equal(t, "target_123_analysis.xlsx", exportService.ExportFilename("target", "123"))
}
