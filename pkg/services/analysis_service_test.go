package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"review-insight-api/pkg/huggingface"
	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

// stubMLCapability テスト用のMLモデルスタブ
type stubMLCapability struct {
	probeErr  error
	rating    int
	ratingErr error
	zeroShot  *huggingface.ZeroShotResponse
	shotErr   error
}

func (s *stubMLCapability) Probe(_ context.Context) error {
	return s.probeErr
}

func (s *stubMLCapability) PredictRating(_ context.Context, _ string) (int, error) {
	return s.rating, s.ratingErr
}

func (s *stubMLCapability) ZeroShotClassify(_ context.Context, _ string, _ []string) (*huggingface.ZeroShotResponse, error) {
	return s.zeroShot, s.shotErr
}

func TestNewAnalysisServiceWithoutCapability(t *testing.T) {
	service := NewAnalysisService(nil, AnalysisConfig{})

	assert.False(t, service.AdvancedAnalysisAvailable())
	assert.Equal(t, DefaultComplaintThreshold, service.ComplaintThreshold())
}

func TestNewAnalysisServiceProbeFailure(t *testing.T) {
	capability := &stubMLCapability{probeErr: errors.New("model loading failed")}
	service := NewAnalysisService(capability, AnalysisConfig{ProbeTimeout: time.Second})

	// 疎通確認に失敗した場合はキーワード分析に縮退する
	assert.False(t, service.AdvancedAnalysisAvailable())

	result := service.AnalyzeReviews(context.Background(), []string{"good product"})
	assert.Equal(t, AnalysisMethodKeyword, result.AnalysisMethod)
	assert.False(t, result.AdvancedAnalysisAvailable)
}

func TestNewAnalysisServiceProbeSuccess(t *testing.T) {
	capability := &stubMLCapability{
		rating: 4,
		zeroShot: &huggingface.ZeroShotResponse{
			Labels: []string{categoryDescriptions["battery_life"]},
			Scores: []float64{0.9},
		},
	}
	service := NewAnalysisService(capability, AnalysisConfig{ProbeTimeout: time.Second, MLTimeout: time.Second})

	assert.True(t, service.AdvancedAnalysisAvailable())

	result := service.AnalyzeReviews(context.Background(), []string{"battery dies fast"})
	assert.Equal(t, AnalysisMethodML, result.AnalysisMethod)
	assert.True(t, result.AdvancedAnalysisAvailable)
	assert.Equal(t, 1, result.MLRatingDistribution["4"])
	assert.Equal(t, 1, result.ComplaintCategories["battery_life"])
}

func TestAnalyzeReviewsEmpty(t *testing.T) {
	service := NewAnalysisService(nil, AnalysisConfig{})

	result := service.AnalyzeReviews(context.Background(), nil)

	assert.Equal(t, 0, result.TotalReviews)
	assert.Equal(t, AnalysisMethodKeyword, result.AnalysisMethod)
}

func TestAnalyzeReviewsKeywordScenario(t *testing.T) {
	service := NewAnalysisService(nil, AnalysisConfig{Workers: 2})

	reviews := []string{
		"Absolutely love them, they sound amazing",
		"The battery dies so quickly, disappointed",
		"Terrible product, the connection drops constantly, returned them",
	}

	result := service.AnalyzeReviews(context.Background(), reviews)

	assert.Equal(t, 3, result.TotalReviews)
	assert.Equal(t, 1, result.MLRatingDistribution["5"]) // love + amazing
	assert.Equal(t, 1, result.MLRatingDistribution["2"]) // disappointed
	assert.Equal(t, 1, result.MLRatingDistribution["1"]) // terrible + returned

	assert.GreaterOrEqual(t, result.ComplaintCategories["battery_life"], 1)
	assert.GreaterOrEqual(t, result.ComplaintCategories["connectivity"], 1)

	total := 0
	for _, count := range result.MLRatingDistribution {
		total += count
	}
	assert.Equal(t, result.TotalReviews, total)
}

func TestAnalyzeReviewsDegradesPerReview(t *testing.T) {
	// 疎通確認は成功するが、以降の呼び出しが全て失敗するモデル。
	// 実行は失敗せず、評価はキーワード縮退、苦情は「なし」として集計される。
	capability := &stubMLCapability{
		ratingErr: errors.New("rate limited"),
		shotErr:   errors.New("rate limited"),
	}
	service := NewAnalysisService(capability, AnalysisConfig{ProbeTimeout: time.Second, MLTimeout: time.Second})

	assert.True(t, service.AdvancedAnalysisAvailable())

	result := service.AnalyzeReviews(context.Background(), []string{"terrible awful broken"})

	// analysis_methodは実行単位のフラグなのでMLのまま
	assert.Equal(t, AnalysisMethodML, result.AnalysisMethod)
	// 評価はキーワード縮退で1になる
	assert.Equal(t, 1, result.MLRatingDistribution["1"])
	// 苦情分類の失敗は「苦情なし」
	assert.Equal(t, 0, result.TotalComplaints)
}

func TestAnalyzeText(t *testing.T) {
	service := NewAnalysisService(nil, AnalysisConfig{})

	complaints := service.AnalyzeText(context.Background(), "the battery dies quickly", 0)
	assert.Contains(t, complaints, "battery_life")

	complaints = service.AnalyzeText(context.Background(), "works perfectly fine", 0)
	assert.Empty(t, complaints)
}

func TestBuildDocument(t *testing.T) {
	service := NewAnalysisService(nil, AnalysisConfig{})

	info := models.ProductInfo{Name: "Wireless Headphones"}
	analysis := service.AnalyzeReviews(context.Background(), []string{"good product"})

	document := service.BuildDocument("target", "89799762", info, analysis)

	assert.Equal(t, "target_89799762_product", document.DocumentKey)
	assert.Equal(t, "89799762", document.ProductID)
	assert.Equal(t, "target", document.Retailer)
	assert.Equal(t, "Wireless Headphones", document.ProductInfo.Name)
	assert.NotNil(t, document.Analysis)
	assert.NotZero(t, document.Timestamp)
}

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "trendyol_782213857_product", DocumentKey("trendyol", "782213857"))
}
