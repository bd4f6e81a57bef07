package services

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode"
)

// RatingCapability 外部の評価予測モデルへの抽象インターフェース。
// ベストエフォートであり、エラーを返すことがある。
type RatingCapability interface {
	PredictRating(ctx context.Context, text string) (int, error)
}

// RatingPredictor レビュー本文から1〜5の評価を予測する戦略。
// どの実装も失敗せず、必ず有効な評価を返す。
type RatingPredictor interface {
	Predict(ctx context.Context, text string) int
}

// --- キーワード戦略 ---

// positiveLexicon 評価を押し上げる語彙
var positiveLexicon = map[string]bool{
	"amazing": true, "awesome": true, "beautiful": true, "best": true,
	"brilliant": true, "comfortable": true, "comfy": true, "convenient": true,
	"durable": true, "excellent": true, "exceptional": true, "fantastic": true,
	"fast": true, "flawless": true, "good": true, "great": true, "happy": true,
	"impressed": true, "impressive": true, "love": true, "loved": true,
	"nice": true, "outstanding": true, "perfect": true, "pleased": true,
	"premium": true, "quick": true, "recommend": true, "recommended": true,
	"reliable": true, "satisfied": true, "smooth": true, "sturdy": true,
	"wonderful": true, "worth": true,
}

// negativeLexicon 評価を押し下げる語彙
var negativeLexicon = map[string]bool{
	"annoying": true, "avoid": true, "awful": true, "bad": true, "broke": true,
	"broken": true, "cheap": true, "crap": true, "damaged": true, "defective": true,
	"disappointed": true, "disappointing": true, "disappointment": true,
	"faulty": true, "flimsy": true, "garbage": true, "hate": true, "hated": true,
	"horrible": true, "junk": true, "overpriced": true, "poor": true,
	"problem": true, "refund": true, "regret": true, "returned": true,
	"slow": true, "terrible": true, "uncomfortable": true, "unreliable": true,
	"useless": true, "waste": true, "worst": true, "wrong": true,
}

// KeywordRatingPredictor 語彙スコアによる決定的な評価予測。
// ポジティブ語で+1、ネガティブ語で-1し、符号付き合計を固定の閾値で
// 1〜5にマッピングする。MLモデルなしでテスト可能。
type KeywordRatingPredictor struct{}

// NewKeywordRatingPredictor キーワード戦略を作成
func NewKeywordRatingPredictor() *KeywordRatingPredictor {
	return &KeywordRatingPredictor{}
}

// Predict 語彙スコアから評価を算出します。純粋関数で副作用なし。
func (p *KeywordRatingPredictor) Predict(_ context.Context, text string) int {
	score := 0
	for _, word := range tokenizeWords(text) {
		if positiveLexicon[word] {
			score++
		}
		if negativeLexicon[word] {
			score--
		}
	}

	switch {
	case score <= -2:
		return 1
	case score == -1:
		return 2
	case score == 0:
		return 3
	case score == 1:
		return 4
	default:
		return 5
	}
}

// tokenizeWords 小文字化して英数字以外で分割
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// --- ML戦略 ---

// MLRatingPredictor 外部アンサンブルモデルに委譲する評価予測。
// capabilityの呼び出しはタイムアウトで制限され、失敗してもこの
// レビュー1件に限りキーワード戦略へ縮退する（実行全体は失敗しない）。
type MLRatingPredictor struct {
	capability RatingCapability
	fallback   *KeywordRatingPredictor
	timeout    time.Duration
}

// NewMLRatingPredictor ML戦略を作成
func NewMLRatingPredictor(capability RatingCapability, timeout time.Duration) *MLRatingPredictor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MLRatingPredictor{
		capability: capability,
		fallback:   NewKeywordRatingPredictor(),
		timeout:    timeout,
	}
}

// Predict 外部モデルで評価を予測し、失敗時はキーワード戦略に縮退します。
func (p *MLRatingPredictor) Predict(ctx context.Context, text string) int {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rating, err := p.capability.PredictRating(callCtx, text)
	if err != nil {
		log.Printf("評価予測モデルの呼び出しに失敗したためキーワード予測に縮退します: %v", err)
		return p.fallback.Predict(ctx, text)
	}
	if rating < 1 || rating > 5 {
		log.Printf("評価予測モデルが範囲外の値を返しました (%d)、キーワード予測に縮退します", rating)
		return p.fallback.Predict(ctx, text)
	}
	return rating
}
