package services

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"review-insight-api/pkg/models"

	"github.com/google/uuid"
)

// 分析手法のタグ。MLモデルが利用できたかどうかを実行単位で示す。
const (
	AnalysisMethodML      = "ML+Complaint Analysis"
	AnalysisMethodKeyword = "Keyword Analysis"
)

const topComplaintLimit = 3

// StatisticsService レビューごとの分析結果を集計して最終サマリーを作る
type StatisticsService struct{}

// NewStatisticsService 新しい統計集計サービスを作成
func NewStatisticsService() *StatisticsService {
	return &StatisticsService{}
}

// Aggregate 全レビューの予測・分類結果からAnalysisResultを構築します。
// レビュー0件でも失敗せず、ゼロ値の結果を返します。
// 同じ入力に対して常に同じ統計値を返します（決定的）。
func (s *StatisticsService) Aggregate(reviews []models.Review, advancedAvailable bool) models.AnalysisResult {
	result := s.emptyResult(advancedAvailable)
	totalReviews := len(reviews)
	if totalReviews == 0 {
		return result
	}

	result.TotalReviews = totalReviews

	// 評価分布と平均。予測が得られなかったレビューは偏りを避けるため
	// 中立の3として分布と平均の両方に同じ値で算入する。
	ratingSum := 0
	for _, review := range reviews {
		rating := review.PredictedRating
		if !review.HasRating() {
			rating = 3
		}
		result.MLRatingDistribution[strconv.Itoa(rating)]++
		ratingSum += rating
	}
	result.AverageRating = round1(float64(ratingSum) / float64(totalReviews))

	// カテゴリ別の苦情件数。1レビューが複数カテゴリに該当する場合、
	// total_complaintsには1回だけ、カテゴリ件数には各カテゴリに計上する。
	for _, review := range reviews {
		if len(review.Complaints) > 0 {
			result.TotalComplaints++
		}
		for category := range review.Complaints {
			result.ComplaintCategories[category]++
		}
	}

	result.ComplaintPercentage = round1(100 * float64(result.TotalComplaints) / float64(totalReviews))

	// センチメントは苦情の有無から導出する（独立した分類器ではない）
	result.SentimentBreakdown = models.SentimentBreakdown{
		Negative: result.ComplaintPercentage,
		Positive: round1(100 - result.ComplaintPercentage),
	}

	result.TopComplaints = s.topComplaints(result.ComplaintCategories)
	result.PositiveThemes = s.extractPositiveThemes(reviews)

	return result
}

// emptyResult ゼロ値のAnalysisResultを作成します。
// 分布は"1"〜"5"の全キーを0で持ち、各コレクションは非nilで返します。
func (s *StatisticsService) emptyResult(advancedAvailable bool) models.AnalysisResult {
	distribution := make(map[string]int, 5)
	for r := 1; r <= 5; r++ {
		distribution[strconv.Itoa(r)] = 0
	}

	categories := make(map[string]int, len(categoryOrder))
	for _, category := range categoryOrder {
		categories[category] = 0
	}

	method := AnalysisMethodKeyword
	if advancedAvailable {
		method = AnalysisMethodML
	}

	return models.AnalysisResult{
		MLRatingDistribution:      distribution,
		SentimentBreakdown:        models.SentimentBreakdown{},
		TopComplaints:             []models.TopComplaint{},
		ComplaintCategories:       categories,
		PositiveThemes:            []string{},
		AnalysisMethod:            method,
		AdvancedAnalysisAvailable: advancedAvailable,
		AnalysisID:                uuid.NewString(),
		AnalysisTimestamp:         time.Now().Format(time.RFC3339),
	}
}

// topComplaints 件数降順、同数はカテゴリ宣言順で上位3件を返します。
func (s *StatisticsService) topComplaints(categories map[string]int) []models.TopComplaint {
	entries := make([]models.TopComplaint, 0, len(categories))
	for category, count := range categories {
		if count == 0 {
			continue
		}
		entries = append(entries, models.TopComplaint{
			Category:    category,
			Count:       count,
			Description: categoryDescriptions[category],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return categoryRank(entries[i].Category) < categoryRank(entries[j].Category)
	})

	if len(entries) > topComplaintLimit {
		entries = entries[:topComplaintLimit]
	}
	return entries
}

// extractPositiveThemes テーマ語彙のうち、いずれかのレビュー本文に
// キーワードが部分一致したものを語彙の宣言順で最大4件返します。
func (s *StatisticsService) extractPositiveThemes(reviews []models.Review) []string {
	themes := make([]string, 0, maxPositiveThemes)

	for _, entry := range positiveThemeVocabulary {
		if len(themes) >= maxPositiveThemes {
			break
		}
		if s.themeMentioned(entry.Keywords, reviews) {
			themes = append(themes, entry.Theme)
		}
	}

	return themes
}

func (s *StatisticsService) themeMentioned(keywords []string, reviews []models.Review) bool {
	for _, review := range reviews {
		text := review.NormalizedText
		if text == "" {
			text = review.RawText
		}
		lower := strings.ToLower(text)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

// round1 小数第1位に丸める
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
