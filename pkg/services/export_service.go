package services

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"review-insight-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// ExportService 保存済みの商品分析をExcelワークブックに書き出す
type ExportService struct{}

// NewExportService 新しいエクスポートサービスを作成
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportDocument 商品ドキュメントを4シート構成のxlsxに書き出します。
// サマリー / 評価分布 / 苦情カテゴリ / ポジティブテーマ
func (s *ExportService) ExportDocument(document *models.ProductDocument) ([]byte, error) {
	if document == nil || document.Analysis == nil {
		return nil, fmt.Errorf("エクスポート対象の分析結果がありません")
	}
	analysis := document.Analysis

	f := excelize.NewFile()
	defer f.Close()

	// --- サマリーシート ---
	const summarySheet = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("シート名の設定に失敗: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Product Name", document.ProductInfo.Name},
		{"Retailer", document.Retailer},
		{"Product ID", document.ProductID},
		{"Average Rating (Predicted)", analysis.AverageRating},
		{"Official Rating", document.ProductInfo.Rating},
		{"Total Reviews Analyzed", analysis.TotalReviews},
		{"Reviews With Complaints", analysis.TotalComplaints},
		{"Complaint Percentage", analysis.ComplaintPercentage},
		{"Positive Sentiment (%)", analysis.SentimentBreakdown.Positive},
		{"Negative Sentiment (%)", analysis.SentimentBreakdown.Negative},
		{"Analysis Method", analysis.AnalysisMethod},
		{"Analysis ID", analysis.AnalysisID},
		{"Analyzed At", analysis.AnalysisTimestamp},
		{"Exported At", time.Now().UTC().Format(time.RFC3339)},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("セル座標の計算に失敗: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("サマリーシートの書き込みに失敗: %w", err)
		}
	}

	// --- 評価分布シート ---
	const ratingSheet = "Rating Distribution"
	if _, err := f.NewSheet(ratingSheet); err != nil {
		return nil, fmt.Errorf("シートの作成に失敗: %w", err)
	}
	header := []interface{}{"Rating", "Review Count"}
	if err := f.SetSheetRow(ratingSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("評価分布シートの書き込みに失敗: %w", err)
	}
	for r := 1; r <= 5; r++ {
		row := []interface{}{fmt.Sprintf("%d star(s)", r), analysis.MLRatingDistribution[strconv.Itoa(r)]}
		if err := f.SetSheetRow(ratingSheet, fmt.Sprintf("A%d", r+1), &row); err != nil {
			return nil, fmt.Errorf("評価分布シートの書き込みに失敗: %w", err)
		}
	}

	// --- 苦情カテゴリシート ---
	const complaintSheet = "Complaint Categories"
	if _, err := f.NewSheet(complaintSheet); err != nil {
		return nil, fmt.Errorf("シートの作成に失敗: %w", err)
	}
	header = []interface{}{"Category", "Count", "Description"}
	if err := f.SetSheetRow(complaintSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("苦情カテゴリシートの書き込みに失敗: %w", err)
	}
	categories := make([]string, 0, len(analysis.ComplaintCategories))
	for category := range analysis.ComplaintCategories {
		categories = append(categories, category)
	}
	// 件数降順、同数はカテゴリ定義順
	sort.SliceStable(categories, func(i, j int) bool {
		ci, cj := analysis.ComplaintCategories[categories[i]], analysis.ComplaintCategories[categories[j]]
		if ci != cj {
			return ci > cj
		}
		return categoryRank(categories[i]) < categoryRank(categories[j])
	})
	for i, category := range categories {
		row := []interface{}{category, analysis.ComplaintCategories[category], categoryDescriptions[category]}
		if err := f.SetSheetRow(complaintSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("苦情カテゴリシートの書き込みに失敗: %w", err)
		}
	}

	// --- ポジティブテーマシート ---
	const themeSheet = "Positive Themes"
	if _, err := f.NewSheet(themeSheet); err != nil {
		return nil, fmt.Errorf("シートの作成に失敗: %w", err)
	}
	header = []interface{}{"Theme"}
	if err := f.SetSheetRow(themeSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("ポジティブテーマシートの書き込みに失敗: %w", err)
	}
	for i, theme := range analysis.PositiveThemes {
		row := []interface{}{theme}
		if err := f.SetSheetRow(themeSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("ポジティブテーマシートの書き込みに失敗: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ワークブックの書き出しに失敗: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename エクスポートファイル名を生成します。
func (s *ExportService) ExportFilename(retailer, productID string) string {
	return fmt.Sprintf("%s_%s_analysis.xlsx", retailer, productID)
}
