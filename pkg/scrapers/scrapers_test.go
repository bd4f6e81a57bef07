package scrapers

import (
	"testing"

	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestTargetExtractProductID(t *testing.T) {
	scraper := NewTargetScraper(0)

	id, err := scraper.ExtractProductID("https://www.target.com/p/wireless-headphones/-/A-89799762")
	assert.NoError(t, err)
	assert.Equal(t, "89799762", id)

	_, err = scraper.ExtractProductID("https://www.target.com/c/electronics")
	assert.Error(t, err)
}

func TestTrendyolExtractProductID(t *testing.T) {
	scraper := NewTrendyolScraper(0)

	id, err := scraper.ExtractProductID("https://www.trendyol.com/en/brand/black-woven-vest-p-782213857/reviews")
	assert.NoError(t, err)
	assert.Equal(t, "782213857", id)

	_, err = scraper.ExtractProductID("https://www.trendyol.com/en/some-category")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(NewTargetScraper(0), NewTrendyolScraper(0))

	scraper, err := registry.Get("target")
	assert.NoError(t, err)
	assert.Equal(t, "target", scraper.Source())

	// ソース名は大文字小文字を区別しない
	scraper, err = registry.Get("Trendyol")
	assert.NoError(t, err)
	assert.Equal(t, "trendyol", scraper.Source())

	_, err = registry.Get("amazon")
	assert.Error(t, err)

	assert.Len(t, registry.Sources(), 2)
}

func TestResolveProductID(t *testing.T) {
	scraper := NewTargetScraper(0)

	// product_idが指定されていればそのまま使う
	id, err := ResolveProductID(scraper, models.ScrapeRequest{Source: "target", ProductID: "12345"})
	assert.NoError(t, err)
	assert.Equal(t, "12345", id)

	// なければURLから抽出する
	id, err = ResolveProductID(scraper, models.ScrapeRequest{
		Source:     "target",
		ProductURL: "https://www.target.com/p/-/A-89799762",
	})
	assert.NoError(t, err)
	assert.Equal(t, "89799762", id)

	// どちらもない場合はエラー
	_, err = ResolveProductID(scraper, models.ScrapeRequest{Source: "target"})
	assert.Error(t, err)
}

func TestFormatReview(t *testing.T) {
	// タイトルありは "[r/5] title: text" 形式
	assert.Equal(t, "[4/5] Great buy: Works as expected", formatReview(4, "Great buy", "Works as expected"))

	// タイトルなしは "[r/5] text" 形式
	assert.Equal(t, "[2/5] Broke after a week", formatReview(2, "", "Broke after a week"))
}
