package models

// Review 1件のレビューに対する分析途中の結果。
// 分析実行ごとに生成される一時データで、永続化はされない。
type Review struct {
	RawText         string                    // 元のレビュー本文
	NormalizedText  string                    // 正規化済み本文
	PredictedRating int                       // 予測評価 (1-5)、0は未予測
	Complaints      map[string]ComplaintScore // カテゴリ -> スコア（閾値以上のみ）
}

// HasRating 評価予測が得られているかどうか
func (r *Review) HasRating() bool {
	return r.PredictedRating >= 1 && r.PredictedRating <= 5
}

// ComplaintScore 苦情カテゴリの信頼度スコア
type ComplaintScore struct {
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// SentimentBreakdown ポジティブ/ネガティブの割合（合計100%）
type SentimentBreakdown struct {
	Positive float64 `json:"positive" bson:"positive"`
	Negative float64 `json:"negative" bson:"negative"`
}

// TopComplaint 上位苦情カテゴリのエントリ
type TopComplaint struct {
	Category    string `json:"category" bson:"category"`
	Count       int    `json:"count" bson:"count"`
	Description string `json:"description" bson:"description"`
}

// AnalysisResult レビュー分析の最終結果。一度返却された後は不変。
type AnalysisResult struct {
	AverageRating             float64            `json:"average_rating" bson:"average_rating"`
	TotalReviews              int                `json:"total_reviews" bson:"total_reviews"`
	TotalComplaints           int                `json:"total_complaints" bson:"total_complaints"`
	ComplaintPercentage       float64            `json:"complaint_percentage" bson:"complaint_percentage"`
	MLRatingDistribution      map[string]int     `json:"ml_rating_distribution" bson:"ml_rating_distribution"`
	SentimentBreakdown        SentimentBreakdown `json:"sentiment_breakdown" bson:"sentiment_breakdown"`
	TopComplaints             []TopComplaint     `json:"top_complaints" bson:"top_complaints"`
	ComplaintCategories       map[string]int     `json:"complaint_categories" bson:"complaint_categories"`
	PositiveThemes            []string           `json:"positive_themes" bson:"positive_themes"`
	AnalysisMethod            string             `json:"analysis_method" bson:"analysis_method"`
	AdvancedAnalysisAvailable bool               `json:"advanced_analysis_available" bson:"advanced_analysis_available"`
	AnalysisID                string             `json:"analysis_id" bson:"analysis_id"`
	AnalysisTimestamp         string             `json:"analysis_timestamp" bson:"analysis_timestamp"`
}

// ProductInfo 小売サイトから取得した公式の商品情報
type ProductInfo struct {
	Name                       string         `json:"name" bson:"name"`
	Rating                     float64        `json:"rating" bson:"rating"`
	ReviewCount                int            `json:"review_count" bson:"review_count"`
	OriginalRatingDistribution map[string]int `json:"original_rating_distribution,omitempty" bson:"original_rating_distribution,omitempty"`
	RecommendedPercentage      *float64       `json:"recommended_percentage,omitempty" bson:"recommended_percentage,omitempty"`
	ReviewsWithImagesCount     *int           `json:"reviews_with_images_count,omitempty" bson:"reviews_with_images_count,omitempty"`
	ProductLink                string         `json:"product_link,omitempty" bson:"product_link,omitempty"`
	ProductImage               string         `json:"product_image,omitempty" bson:"product_image,omitempty"`
}

// ProductDocument 永続化される商品ドキュメント。
// キーは "{retailer}_{product_id}_product" 形式で、上書き保存（last-write-wins）。
type ProductDocument struct {
	DocumentKey string          `json:"document_key" bson:"_id"`
	ProductID   string          `json:"product_id" bson:"product_id"`
	Retailer    string          `json:"retailer" bson:"retailer"`
	ProductInfo ProductInfo     `json:"product_info" bson:"product_info"`
	Analysis    *AnalysisResult `json:"analysis" bson:"analysis"`
	Timestamp   int64           `json:"timestamp" bson:"timestamp"`
}

// AnalysisSummary 商品一覧用の分析サマリー
type AnalysisSummary struct {
	AverageRating       float64 `json:"average_rating"`
	TotalReviews        int     `json:"total_reviews"`
	TotalComplaints     int     `json:"total_complaints"`
	ComplaintPercentage float64 `json:"complaint_percentage"`
	AnalysisMethod      string  `json:"analysis_method"`
}

// ProductSummary 商品一覧の1エントリ
type ProductSummary struct {
	ProductID       string          `json:"product_id"`
	Retailer        string          `json:"retailer"`
	ProductInfo     ProductInfo     `json:"product_info"`
	AnalysisSummary AnalysisSummary `json:"analysis_summary"`
	Timestamp       int64           `json:"timestamp"`
}

// ComplaintAnalysis 苦情に絞った分析ビュー
type ComplaintAnalysis struct {
	ProductInfo          ProductInfo    `json:"product_info"`
	TotalReviews         int            `json:"total_reviews"`
	TotalComplaints      int            `json:"total_complaints"`
	ComplaintPercentage  float64        `json:"complaint_percentage"`
	TopComplaints        []TopComplaint `json:"top_complaints"`
	ComplaintCategories  map[string]int `json:"complaint_categories"`
	MLRatingDistribution map[string]int `json:"ml_rating_distribution"`
	AnalysisMethod       string         `json:"analysis_method"`
	Timestamp            int64          `json:"timestamp"`
}

// CategoryInfo 苦情カテゴリのメタ情報
type CategoryInfo struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	DisplayName string `json:"display_name"`
}

// AnalyzeReviewsRequest レビュー分析リクエスト。
// ProductIDとRetailerが指定された場合は分析結果を永続化する。
type AnalyzeReviewsRequest struct {
	Reviews     []string    `json:"reviews" binding:"required"`
	ProductInfo ProductInfo `json:"product_info,omitempty"`
	ProductID   string      `json:"product_id,omitempty"`
	Retailer    string      `json:"retailer,omitempty"`
}

// TextAnalysisRequest 単一テキストの苦情分析リクエスト
type TextAnalysisRequest struct {
	Text      string   `json:"text" binding:"required"`
	Threshold *float64 `json:"threshold,omitempty"` // 省略時は0.5
}

// TextAnalysisResponse 単一テキストの苦情分析レスポンス
type TextAnalysisResponse struct {
	Text              string                    `json:"text"`
	Threshold         float64                   `json:"threshold"`
	ComplaintsFound   map[string]ComplaintScore `json:"complaints_found"`
	TotalComplaints   int                       `json:"total_complaints"`
	AnalysisTimestamp int64                     `json:"analysis_timestamp"`
}

// ScrapeRequest スクレイピングリクエスト
type ScrapeRequest struct {
	Source     string `json:"source" binding:"required"` // "target" or "trendyol"
	ProductID  string `json:"product_id,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
}

// ScrapeResult スクレイパーが返す生データ
type ScrapeResult struct {
	Reviews     []string    `json:"reviews"`
	ProductInfo ProductInfo `json:"product_info"`
}
