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
	"time"

	"review-insight-api/pkg/models"
)

const (
	targetPDPEndpoint    = "https://redsky.target.com/redsky_aggregations/v1/web/pdp_client_v1"
	targetReviewEndpoint = "https://r2d2.target.com/ggc/v2/summary"

	// 公開Webクライアントが使うAPIキー（シークレットではない）
	targetPDPKey    = "9f36aeafbe60771e321a7cc95a78140772ab3e96"
	targetReviewKey = "c6b68aaef0eac4df4931aae70500b7056531cb37"

	targetReviewPageSize = 50
	targetMaxPages       = 2
)

// Target商品ページURLの "/p/-/A-{tcin}" 形式
var targetURLPattern = regexp.MustCompile(`/A-(\d+)`)

// TargetScraper TargetのRedSky（商品情報）とr2d2（レビュー）APIクライアント
type TargetScraper struct {
	httpClient *http.Client
	userAgent  string
}

// NewTargetScraper 新しいTargetスクレイパーを作成
func NewTargetScraper(timeout time.Duration) *TargetScraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TargetScraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

// Source ソース名
func (s *TargetScraper) Source() string {
	return "target"
}

// ExtractProductID 商品URLからTCINを抽出します。
func (s *TargetScraper) ExtractProductID(productURL string) (string, error) {
	return extractByPattern(targetURLPattern, productURL, "Target")
}

// --- RedSky PDP レスポンス ---

type targetPDPResponse struct {
	Data struct {
		Product struct {
			Item struct {
				ProductDescription struct {
					Title                 string `json:"title"`
					DownstreamDescription string `json:"downstream_description"`
				} `json:"product_description"`
				PrimaryBrand struct {
					Name string `json:"name"`
				} `json:"primary_brand"`
				Enrichment struct {
					Images struct {
						PrimaryImageURL    string   `json:"primary_image_url"`
						AlternateImageURLs []string `json:"alternate_image_urls"`
					} `json:"images"`
				} `json:"enrichment"`
				RatingsAndReviews struct {
					Statistics targetReviewStatistics `json:"statistics"`
				} `json:"ratings_and_reviews"`
			} `json:"item"`
		} `json:"product"`
	} `json:"data"`
}

type targetReviewStatistics struct {
	Rating struct {
		Average      float64        `json:"average"`
		Distribution map[string]int `json:"distribution"`
	} `json:"rating"`
	ReviewCount            int      `json:"review_count"`
	RecommendedPercentage  *float64 `json:"recommended_percentage"`
	ReviewsWithImagesCount *int     `json:"reviews_with_images_count"`
}

// --- r2d2 レビューレスポンス ---

type targetReviewResponse struct {
	Statistics *targetReviewStatistics `json:"statistics"`
	Reviews    struct {
		Results []targetReview `json:"results"`
	} `json:"reviews"`
}

type targetReview struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Scrape 商品情報とレビューを取得します。
// レビューが1件も取れなくても商品情報だけで成功として返します。
func (s *TargetScraper) Scrape(ctx context.Context, productID string) (*models.ScrapeResult, error) {
	result := &models.ScrapeResult{
		Reviews: []string{},
		ProductInfo: models.ProductInfo{
			Name:         fmt.Sprintf("Target Product %s", productID),
			ProductLink:  fmt.Sprintf("https://www.target.com/p/-/A-%s", productID),
			ProductImage: fmt.Sprintf("https://target.scene7.com/is/image/Target/GUEST_%s?wid=800&hei=800&qlt=80", productID),
		},
	}

	if err := s.fetchProductInfo(ctx, productID, result); err != nil {
		// 商品情報が取れなくてもレビュー取得は続行する
		log.Printf("Target商品情報の取得に失敗しました (product: %s): %v", productID, err)
	}

	if err := s.fetchReviews(ctx, productID, result); err != nil {
		return nil, fmt.Errorf("Targetレビューの取得に失敗: %w", err)
	}

	log.Printf("📦 Targetから%d件のレビューを取得しました (product: %s)", len(result.Reviews), productID)
	return result, nil
}

// fetchProductInfo RedSky APIから商品名・画像・公式評価を取得する
func (s *TargetScraper) fetchProductInfo(ctx context.Context, productID string, result *models.ScrapeResult) error {
	params := url.Values{}
	params.Set("key", targetPDPKey)
	params.Set("tcin", productID)
	params.Set("pricing_store_id", "3991")
	params.Set("has_pricing_store_id", "true")
	params.Set("channel", "WEB")
	params.Set("page", "/p/-/A-"+productID)

	var response targetPDPResponse
	if err := s.doGet(ctx, targetPDPEndpoint, params, &response); err != nil {
		return err
	}

	item := response.Data.Product.Item
	if title := item.ProductDescription.Title; title != "" {
		result.ProductInfo.Name = title
	} else if desc := item.ProductDescription.DownstreamDescription; desc != "" {
		result.ProductInfo.Name = desc
	}
	if brand := item.PrimaryBrand.Name; brand != "" {
		result.ProductInfo.Name = fmt.Sprintf("%s - %s", brand, result.ProductInfo.Name)
	}
	if image := item.Enrichment.Images.PrimaryImageURL; image != "" {
		result.ProductInfo.ProductImage = image
	} else if alternates := item.Enrichment.Images.AlternateImageURLs; len(alternates) > 0 {
		result.ProductInfo.ProductImage = alternates[0]
	}

	applyTargetStatistics(&result.ProductInfo, item.RatingsAndReviews.Statistics)
	return nil
}

// fetchReviews r2d2 APIからレビューをページングで取得する
func (s *TargetScraper) fetchReviews(ctx context.Context, productID string, result *models.ScrapeResult) error {
	seen := make(map[string]bool)

	for page := 1; page <= targetMaxPages; page++ {
		params := url.Values{}
		params.Set("key", targetReviewKey)
		params.Set("hasOnlyPhotos", "false")
		params.Set("includes", "reviews,reviewsWithPhotos,entities,metadata,statistics")
		params.Set("page", strconv.Itoa(page))
		params.Set("reviewedId", productID)
		params.Set("reviewType", "PRODUCT")
		params.Set("size", strconv.Itoa(targetReviewPageSize))
		params.Set("sortBy", "most_recent")
		params.Set("verifiedOnly", "false")

		var response targetReviewResponse
		if err := s.doGet(ctx, targetReviewEndpoint, params, &response); err != nil {
			if page == 1 {
				return err
			}
			// 2ページ目以降の失敗は取得済み分で打ち切る
			log.Printf("Targetレビューの%dページ目の取得に失敗しました: %v", page, err)
			break
		}

		if page == 1 && response.Statistics != nil {
			applyTargetStatistics(&result.ProductInfo, *response.Statistics)
		}

		if len(response.Reviews.Results) == 0 {
			break
		}

		for _, review := range response.Reviews.Results {
			comment := formatReview(review.Rating, review.Title, review.Text)
			if len(comment) <= 10 || seen[comment] {
				continue
			}
			seen[comment] = true
			result.Reviews = append(result.Reviews, comment)
		}
	}

	return nil
}

// doGet GETリクエストを実行してJSONをデコードする共通ヘルパー
func (s *TargetScraper) doGet(ctx context.Context, endpoint string, params url.Values, responseData interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

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
		return fmt.Errorf("Target API エラー (status: %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}
	return nil
}

// applyTargetStatistics 統計情報をProductInfoに反映する
func applyTargetStatistics(info *models.ProductInfo, statistics targetReviewStatistics) {
	if statistics.Rating.Average > 0 {
		info.Rating = statistics.Rating.Average
	}
	if len(statistics.Rating.Distribution) > 0 {
		info.OriginalRatingDistribution = statistics.Rating.Distribution
	}
	if statistics.ReviewCount > 0 {
		info.ReviewCount = statistics.ReviewCount
	}
	if statistics.RecommendedPercentage != nil {
		info.RecommendedPercentage = statistics.RecommendedPercentage
	}
	if statistics.ReviewsWithImagesCount != nil {
		info.ReviewsWithImagesCount = statistics.ReviewsWithImagesCount
	}
}

// formatReview レビューを "[{rating}/5] {title}: {text}" 形式に整形する
func formatReview(rating int, title, text string) string {
	if title != "" {
		return fmt.Sprintf("[%d/5] %s: %s", rating, title, text)
	}
	return fmt.Sprintf("[%d/5] %s", rating, text)
}
