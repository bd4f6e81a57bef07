package services

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"review-insight-api/pkg/models"
)

// MLCapability 評価予測とゼロショット分類の両方を提供する外部モデル群。
// プロセス起動時に一度だけ読み込まれ、以降は読み取り専用で共有される。
type MLCapability interface {
	Probe(ctx context.Context) error
	RatingCapability
	ZeroShotCapability
}

// AnalysisConfig 分析オーケストレーターの設定
type AnalysisConfig struct {
	ComplaintThreshold float64       // 苦情判定の信頼度閾値（既定0.5）
	Workers            int           // レビュー並列処理数（既定はCPU数）
	MLTimeout          time.Duration // MLモデル1呼び出しあたりのタイムアウト
	ProbeTimeout       time.Duration // 起動時の疎通確認タイムアウト
}

// AnalysisService レビュー分析のオーケストレーター。
// NORMALIZE -> PREDICT_AND_CLASSIFY -> AGGREGATE の3段階を順に実行する。
// 内部のcapability障害は縮退で吸収され、呼び出し元に失敗として見えるのは
// analysis_method / advanced_analysis_available のみ。
type AnalysisService struct {
	ratingPredictor     RatingPredictor
	complaintClassifier ComplaintClassifier
	statistics          *StatisticsService
	threshold           float64
	workers             int
	advancedAvailable   bool
}

// NewAnalysisService オーケストレーターを作成します。
// capabilityの可用性はここで一度だけ確認され、結果に応じてML戦略か
// キーワード戦略のどちらかがプロセス存続中固定で選択されます。
// capabilityがnilまたは疎通確認に失敗した場合はキーワード戦略に縮退します。
func NewAnalysisService(capability MLCapability, cfg AnalysisConfig) *AnalysisService {
	if cfg.ComplaintThreshold <= 0 {
		cfg.ComplaintThreshold = DefaultComplaintThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MLTimeout <= 0 {
		cfg.MLTimeout = 15 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 30 * time.Second
	}

	s := &AnalysisService{
		statistics: NewStatisticsService(),
		threshold:  cfg.ComplaintThreshold,
		workers:    cfg.Workers,
	}

	if capability != nil {
		probeCtx, cancel := context.WithTimeout(context.Background(), cfg.ProbeTimeout)
		defer cancel()
		if err := capability.Probe(probeCtx); err != nil {
			log.Printf("⚠️ MLモデルが利用できないため、キーワード分析に縮退します: %v", err)
		} else {
			log.Println("✅ MLモデルの疎通を確認しました")
			s.advancedAvailable = true
		}
	} else {
		log.Println("⚠️ MLモデルが設定されていないため、キーワード分析を使用します")
	}

	if s.advancedAvailable {
		s.ratingPredictor = NewMLRatingPredictor(capability, cfg.MLTimeout)
		s.complaintClassifier = NewMLComplaintClassifier(capability, cfg.MLTimeout)
	} else {
		s.ratingPredictor = NewKeywordRatingPredictor()
		s.complaintClassifier = NewKeywordComplaintClassifier()
	}

	return s
}

// AdvancedAnalysisAvailable この実行プロセスでMLモデルが利用可能かどうか
func (s *AnalysisService) AdvancedAnalysisAvailable() bool {
	return s.advancedAvailable
}

// ComplaintThreshold 既定の苦情判定閾値
func (s *AnalysisService) ComplaintThreshold() float64 {
	return s.threshold
}

// AnalyzeReviews レビュー群を分析してAnalysisResultを返します。
// レビュー0件の場合はゼロ値の結果に短絡します。この呼び出しが
// エラーを返すことはありません（縮退は結果のフラグで観測できます）。
func (s *AnalysisService) AnalyzeReviews(ctx context.Context, rawReviews []string) models.AnalysisResult {
	if len(rawReviews) == 0 {
		return s.statistics.Aggregate(nil, s.advancedAvailable)
	}

	// NORMALIZE
	reviews := make([]models.Review, len(rawReviews))
	for i, raw := range rawReviews {
		reviews[i] = models.Review{
			RawText:        raw,
			NormalizedText: NormalizeText(raw),
		}
	}

	// PREDICT_AND_CLASSIFY
	// レビューごとの予測と分類は独立なので、ワーカープールで並列実行する。
	// 各ゴルーチンは自分のインデックスにしか書き込まない。
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i := range reviews {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			text := reviews[i].NormalizedText
			reviews[i].PredictedRating = s.ratingPredictor.Predict(ctx, text)
			reviews[i].Complaints = s.complaintClassifier.Classify(ctx, text, s.threshold)
		}(i)
	}
	// 集計は全レビューの完了を待ってから行う
	wg.Wait()

	// AGGREGATE
	return s.statistics.Aggregate(reviews, s.advancedAvailable)
}

// AnalyzeText 単一テキストの苦情分類を直接実行します。
// thresholdに0以下を渡した場合は既定の閾値を使います。
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string, threshold float64) map[string]models.ComplaintScore {
	if threshold <= 0 {
		threshold = s.threshold
	}
	return s.complaintClassifier.Classify(ctx, NormalizeText(text), threshold)
}

// BuildDocument 分析結果と商品情報から永続化用ドキュメントを組み立てます。
func (s *AnalysisService) BuildDocument(retailer, productID string, info models.ProductInfo, analysis models.AnalysisResult) models.ProductDocument {
	return models.ProductDocument{
		DocumentKey: DocumentKey(retailer, productID),
		ProductID:   productID,
		Retailer:    retailer,
		ProductInfo: info,
		Analysis:    &analysis,
		Timestamp:   time.Now().Unix(),
	}
}

// DocumentKey 商品ドキュメントのキーを生成します（"{retailer}_{product_id}_product"）。
func DocumentKey(retailer, productID string) string {
	return fmt.Sprintf("%s_%s_product", retailer, productID)
}
