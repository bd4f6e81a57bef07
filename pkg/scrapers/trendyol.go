package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"review-insight-api/pkg/models"
)

const (
	trendyolReviewEndpoint = "https://apigw.trendyol.com/discovery-sfint-social-service/api/review/reviews"
	trendyolDetailEndpoint = "https://apigw.trendyol.com/discovery-web-productgw-service/api/productDetail"
	trendyolImageCDN       = "https://cdn.dsmcdn.com/"

	trendyolPageSize = 20
	trendyolMaxPages = 3
)

// Trendyol商品ページURLの "p-{id}" 形式
var trendyolURLPattern = regexp.MustCompile(`p-(\d+)`)

// TrendyolScraper TrendyolのレビューAPIクライアント。
// 英語レビューのみを収集対象とする。
type TrendyolScraper struct {
	httpClient *http.Client
	userAgent  string
}

// NewTrendyolScraper 新しいTrendyolスクレイパーを作成
func NewTrendyolScraper(timeout time.Duration) *TrendyolScraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TrendyolScraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
	}
}

// Source ソース名
func (s *TrendyolScraper) Source() string {
	return "trendyol"
}

// ExtractProductID 商品URLから商品IDを抽出します。
func (s *TrendyolScraper) ExtractProductID(productURL string) (string, error) {
	return extractByPattern(trendyolURLPattern, productURL, "Trendyol")
}

// --- レビューAPIレスポンス ---

type trendyolReviewResponse struct {
	ContentSummary struct {
		AverageRating     float64 `json:"averageRating"`
		TotalRatingCount  int     `json:"totalRatingCount"`
		TotalCommentCount int     `json:"totalCommentCount"`
	} `json:"contentSummary"`
	ProductReviews struct {
		TotalPages int              `json:"totalPages"`
		Content    []trendyolReview `json:"content"`
	} `json:"productReviews"`
}

type trendyolReview struct {
	Rate        int    `json:"rate"`
	Comment     string `json:"comment"`
	Language    string `json:"language"`
	ProductSize string `json:"productSize"`
}

type trendyolDetailResponse struct {
	Result struct {
		Name   string   `json:"name"`
		Images []string `json:"images"`
	} `json:"result"`
}

// Scrape 英語レビューと商品情報を取得します。
func (s *TrendyolScraper) Scrape(ctx context.Context, productID string) (*models.ScrapeResult, error) {
	result := &models.ScrapeResult{
		Reviews: []string{},
		ProductInfo: models.ProductInfo{
			Name:        fmt.Sprintf("Trendyol Product %s", productID),
			ProductLink: fmt.Sprintf("https://www.trendyol.com/en/product-p-%s", productID),
		},
	}

	for page := 0; page < trendyolMaxPages; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(trendyolPageSize))
		params.Set("storefrontId", "9")
		params.Set("language", "en")
		params.Set("countryCode", "BE")
		params.Set("culture", "en-BE")

		endpoint := fmt.Sprintf("%s/%s", trendyolReviewEndpoint, productID)
		var response trendyolReviewResponse
		if err := s.doGet(ctx, endpoint, params, productID, &response); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("Trendyolレビューの取得に失敗: %w", err)
			}
			log.Printf("Trendyolレビューの%dページ目の取得に失敗しました: %v", page, err)
			break
		}

		if page == 0 {
			result.ProductInfo.Rating = response.ContentSummary.AverageRating
			result.ProductInfo.ReviewCount = response.ContentSummary.TotalCommentCount
		}

		for _, review := range response.ProductReviews.Content {
			if !strings.EqualFold(review.Language, "en") {
				continue
			}
			comment := strings.TrimSpace(review.Comment)
			if comment == "" {
				continue
			}
			formatted := fmt.Sprintf("[%d/5] %s", review.Rate, comment)
			if review.ProductSize != "" {
				formatted += fmt.Sprintf(" (Size: %s)", review.ProductSize)
			}
			result.Reviews = append(result.Reviews, formatted)
		}

		if page >= response.ProductReviews.TotalPages-1 {
			break
		}
	}

	// 商品名と画像は商品詳細APIから補完する（失敗しても致命的ではない）
	if err := s.fetchProductDetail(ctx, productID, result); err != nil {
		log.Printf("Trendyol商品詳細の取得に失敗しました (product: %s): %v", productID, err)
	}

	log.Printf("📦 Trendyolから%d件の英語レビューを取得しました (product: %s)", len(result.Reviews), productID)
	return result, nil
}

// fetchProductDetail 商品詳細APIから商品名と画像URLを取得する
func (s *TrendyolScraper) fetchProductDetail(ctx context.Context, productID string, result *models.ScrapeResult) error {
	params := url.Values{}
	params.Set("storefrontId", "9")
	params.Set("culture", "en-BE")
	params.Set("countryCode", "BE")

	endpoint := fmt.Sprintf("%s/%s", trendyolDetailEndpoint, productID)
	var response trendyolDetailResponse
	if err := s.doGet(ctx, endpoint, params, productID, &response); err != nil {
		return err
	}

	if response.Result.Name != "" {
		result.ProductInfo.Name = response.Result.Name
	}
	if len(response.Result.Images) > 0 {
		result.ProductInfo.ProductImage = trendyolImageCDN + response.Result.Images[0]
	}
	return nil
}

func (s *TrendyolScraper) doGet(ctx context.Context, endpoint string, params url.Values, productID string, responseData interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://www.trendyol.com/en/product-p-%s/reviews", productID))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Trendyol API エラー (status: %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}
	return nil
}
