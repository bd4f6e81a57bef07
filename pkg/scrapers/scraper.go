package scrapers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"review-insight-api/pkg/models"
)

// Scraper 小売サイトからレビューと商品情報を収集する抽象インターフェース。
// 返されるレビューは "[{rating}/5] {title}: {text}" 形式に整形済み。
type Scraper interface {
	Source() string
	Scrape(ctx context.Context, productID string) (*models.ScrapeResult, error)
	ExtractProductID(productURL string) (string, error)
}

// Registry ソース名からスクレイパーを引くレジストリ
type Registry struct {
	scrapers map[string]Scraper
}

// NewRegistry 利用可能な全スクレイパーを登録したレジストリを作成します。
func NewRegistry(scrapers ...Scraper) *Registry {
	registry := &Registry{scrapers: make(map[string]Scraper, len(scrapers))}
	for _, scraper := range scrapers {
		registry.scrapers[scraper.Source()] = scraper
	}
	return registry
}

// Get ソース名に対応するスクレイパーを返します。
func (r *Registry) Get(source string) (Scraper, error) {
	scraper, ok := r.scrapers[strings.ToLower(source)]
	if !ok {
		return nil, fmt.Errorf("未対応のソースです: %s (対応: %s)", source, strings.Join(r.Sources(), ", "))
	}
	return scraper, nil
}

// Sources 登録済みソース名の一覧
func (r *Registry) Sources() []string {
	sources := make([]string, 0, len(r.scrapers))
	for source := range r.scrapers {
		sources = append(sources, source)
	}
	return sources
}

// ResolveProductID リクエストから商品IDを決定します。
// product_idが指定されていればそのまま、なければproduct_urlから抽出します。
func ResolveProductID(scraper Scraper, request models.ScrapeRequest) (string, error) {
	if request.ProductID != "" {
		return request.ProductID, nil
	}
	if request.ProductURL == "" {
		return "", fmt.Errorf("product_idまたはproduct_urlのどちらかが必要です")
	}
	return scraper.ExtractProductID(request.ProductURL)
}

// extractByPattern URLから正規表現でIDを取り出す共通ヘルパー
func extractByPattern(pattern *regexp.Regexp, productURL, source string) (string, error) {
	match := pattern.FindStringSubmatch(productURL)
	if len(match) < 2 {
		return "", fmt.Errorf("%sのURLから商品IDを抽出できません: %s", source, productURL)
	}
	return match[1], nil
}
