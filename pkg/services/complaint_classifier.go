package services

import (
	"context"
	"log"
	"strings"
	"time"

	"review-insight-api/pkg/huggingface"
	"review-insight-api/pkg/models"
)

// DefaultComplaintThreshold 苦情判定の既定の信頼度閾値
const DefaultComplaintThreshold = 0.5

// ZeroShotCapability 外部のゼロショット分類モデルへの抽象インターフェース。
// ベストエフォートであり、エラーを返すことがある。
type ZeroShotCapability interface {
	ZeroShotClassify(ctx context.Context, text string, labels []string) (*huggingface.ZeroShotResponse, error)
}

// ComplaintClassifier レビュー本文を苦情カテゴリに多ラベル分類する戦略。
// 閾値以上のカテゴリのみを返し、失敗しても空のマップを返す（エラーを伝播しない）。
type ComplaintClassifier interface {
	Classify(ctx context.Context, text string, threshold float64) map[string]models.ComplaintScore
}

// --- キーワード戦略 ---

// KeywordComplaintClassifier カテゴリ別フレーズ辞書によるフォールバック分類。
// いずれかのフレーズが本文に含まれればそのカテゴリを信頼度1.0で返す。
// 決定的でMLモデルなしでテスト可能。
type KeywordComplaintClassifier struct{}

// NewKeywordComplaintClassifier キーワード戦略を作成
func NewKeywordComplaintClassifier() *KeywordComplaintClassifier {
	return &KeywordComplaintClassifier{}
}

// Classify フレーズ一致でカテゴリを判定します。
func (c *KeywordComplaintClassifier) Classify(_ context.Context, text string, threshold float64) map[string]models.ComplaintScore {
	lower := normalizeForMatching(text)
	complaints := make(map[string]models.ComplaintScore)

	for _, category := range categoryOrder {
		for _, phrase := range categoryLexicon[category] {
			if strings.Contains(lower, phrase) {
				if 1.0 >= threshold {
					complaints[category] = models.ComplaintScore{
						Score:       1.0,
						Description: categoryDescriptions[category],
					}
				}
				break
			}
		}
	}

	return complaints
}

// --- ML戦略 ---

// MLComplaintClassifier ゼロショット分類モデルに委譲する苦情分類。
// 8カテゴリ全てのラベル文を候補としてモデルに問い合わせ、較正済みの
// 信頼度が閾値以上のカテゴリを返す。呼び出しはタイムアウトで制限され、
// 失敗したレビューは「苦情なし」として扱われる（実行は中断しない）。
type MLComplaintClassifier struct {
	capability ZeroShotCapability
	timeout    time.Duration
}

// NewMLComplaintClassifier ML戦略を作成
func NewMLComplaintClassifier(capability ZeroShotCapability, timeout time.Duration) *MLComplaintClassifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MLComplaintClassifier{
		capability: capability,
		timeout:    timeout,
	}
}

// Classify ゼロショット分類でカテゴリを判定します。
func (c *MLComplaintClassifier) Classify(ctx context.Context, text string, threshold float64) map[string]models.ComplaintScore {
	labels := make([]string, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		labels = append(labels, categoryDescriptions[category])
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.capability.ZeroShotClassify(callCtx, text, labels)
	if err != nil {
		// 1件の失敗は「苦情なし」として継続する
		log.Printf("ゼロショット分類の呼び出しに失敗しました（苦情なしとして継続）: %v", err)
		return map[string]models.ComplaintScore{}
	}

	complaints := make(map[string]models.ComplaintScore)
	for i, label := range response.Labels {
		score := response.Scores[i]
		if score < threshold {
			continue
		}
		category, ok := categoryByDescription(label)
		if !ok {
			log.Printf("未知のゼロショットラベルを無視します: %q", label)
			continue
		}
		complaints[category] = models.ComplaintScore{
			Score:       score,
			Description: label,
		}
	}

	return complaints
}
