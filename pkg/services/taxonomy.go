package services

import (
	"strings"

	"review-insight-api/pkg/models"
)

// 苦情カテゴリのタクソノミー定義。
// カテゴリは8種類で固定、プロセス起動時に一度だけ定義される。
// categoryOrder の並び順はtop_complaintsのタイブレークにも使われるため変更しないこと。

// categoryOrder カテゴリの宣言順（タイブレーク順）
var categoryOrder = []string{
	"material_quality",
	"sound_quality",
	"battery_life",
	"comfort_fit",
	"connectivity",
	"shipping_delivery",
	"price_value",
	"customer_service",
}

// categoryDescriptions ゼロショット分類のラベル文。
// 各カテゴリを自然言語で記述したものをそのまま候補ラベルとしてモデルに渡す。
var categoryDescriptions = map[string]string{
	"material_quality":  "Bad material quality, cheap, flimsy, broke, damaged",
	"sound_quality":     "Poor sound, muffled, distortion, static, bad audio",
	"battery_life":      "Short battery life, battery dies quickly, charging issues",
	"comfort_fit":       "Uncomfortable, too tight, too loose, painful to wear",
	"connectivity":      "Connection issues, disconnects, lag, pairing problems",
	"shipping_delivery": "Late delivery, damaged packaging, lost item",
	"price_value":       "Too expensive, overpriced, not worth the money",
	"customer_service":  "Bad customer service, unhelpful, rude, no response",
}

// categoryLexicon キーワードフォールバック用のカテゴリ別フレーズ辞書
var categoryLexicon = map[string][]string{
	"material_quality": {
		"cheap", "flimsy", "plastic", "fragile", "poor quality", "build quality",
		"broke", "broken", "fell apart", "defective", "damaged", "crack",
	},
	"sound_quality": {
		"sound", "audio", "bass", "treble", "volume", "distortion",
		"muffled", "tinny", "static", "muddy", "speaker",
	},
	"battery_life": {
		"battery", "charge", "charging", "power", "died", "dies", "drain",
	},
	"comfort_fit": {
		"uncomfortable", "comfort", "fit", "too tight", "too loose",
		"painful", "hurt", "pressure", "heavy", "padding",
	},
	"connectivity": {
		"bluetooth", "connection", "connect", "pair", "pairing", "wireless",
		"signal", "disconnect", "drops", "lag",
	},
	"shipping_delivery": {
		"shipping", "delivery", "package", "packaging", "arrived", "late", "lost",
	},
	"price_value": {
		"expensive", "overpriced", "not worth", "waste of money", "rip off", "pricey",
	},
	"customer_service": {
		"customer service", "support", "refund", "return", "no response",
		"rude", "unhelpful", "warranty",
	},
}

// positiveThemeVocabulary ポジティブテーマの語彙。
// 宣言順がそのまま出力順になる。いずれかのキーワードがレビュー本文に
// 部分一致したテーマのみが採用される（最大4件）。
var positiveThemeVocabulary = []struct {
	Theme    string
	Keywords []string
}{
	{"Great sound quality", []string{"great sound", "amazing sound", "sound quality", "love the sound", "crisp"}},
	{"Comfortable to wear", []string{"comfortable", "comfy"}},
	{"Long battery life", []string{"long battery", "battery lasts", "all day battery"}},
	{"Easy to pair", []string{"easy to pair", "easy setup", "paired instantly", "pairs quickly"}},
	{"Good value", []string{"good value", "worth the money", "great price", "affordable"}},
	{"Fast shipping", []string{"fast shipping", "quick delivery", "arrived early", "arrived quickly"}},
}

const maxPositiveThemes = 4

// ComplaintCategories 全カテゴリを宣言順で返す
func ComplaintCategories() []models.CategoryInfo {
	categories := make([]models.CategoryInfo, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		categories = append(categories, models.CategoryInfo{
			Category:    category,
			Description: categoryDescriptions[category],
			DisplayName: categoryDisplayName(category),
		})
	}
	return categories
}

// CategoryDescription カテゴリのラベル文を返す（未知カテゴリは空文字）
func CategoryDescription(category string) string {
	return categoryDescriptions[category]
}

// categoryByDescription ラベル文からカテゴリ名を逆引きする。
// ゼロショットAPIのレスポンスはラベル文で返るため、結果の取り込みに使う。
func categoryByDescription(description string) (string, bool) {
	for _, category := range categoryOrder {
		if categoryDescriptions[category] == description {
			return category, true
		}
	}
	return "", false
}

// categoryRank タイブレーク用の宣言順インデックス
func categoryRank(category string) int {
	for i, c := range categoryOrder {
		if c == category {
			return i
		}
	}
	return len(categoryOrder)
}

// categoryDisplayName "battery_life" -> "Battery Life"
func categoryDisplayName(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
