package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client はHuggingFace Inference APIへのリクエストを管理します。
// ゼロショット分類モデルと評価予測モデルの2つのデプロイを扱います。
// どちらのモデルもプロセス起動後は読み取り専用で、複数の分析実行から
// 同時に呼び出されても安全です。
type Client struct {
	endpoint      string
	apiKey        string
	zeroShotModel string
	ratingModel   string
	httpClient    *http.Client
}

// NewClient は新しいHuggingFaceクライアントを作成します。
// endpointにはInference APIのベースURL（通常 https://api-inference.huggingface.co）を指定します。
func NewClient(endpoint, apiKey, zeroShotModel, ratingModel string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:      strings.TrimSuffix(endpoint, "/"),
		apiKey:        apiKey,
		zeroShotModel: zeroShotModel,
		ratingModel:   ratingModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- データ構造定義 ---

// zeroShotRequest ゼロショット分類リクエスト
type zeroShotRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters zeroShotParams  `json:"parameters"`
	Options    map[string]bool `json:"options,omitempty"`
}

type zeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// ZeroShotResponse ゼロショット分類レスポンス。
// LabelsとScoresは同じ長さで、スコア降順に並ぶ。
type ZeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// classificationRequest テキスト分類リクエスト
type classificationRequest struct {
	Inputs  string          `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// classificationLabel テキスト分類の1ラベル分の結果
type classificationLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// errorResponse Inference APIのエラーレスポンス
type errorResponse struct {
	Error string `json:"error"`
}

// --- メソッド定義 ---

// ZeroShotClassify テキストを候補ラベルに対してゼロショット分類します。
func (c *Client) ZeroShotClassify(ctx context.Context, text string, labels []string) (*ZeroShotResponse, error) {
	request := zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParams{
			CandidateLabels: labels,
			MultiLabel:      true,
		},
		// モデルのコールドスタート中は503を返さずロード完了を待つ
		Options: map[string]bool{"wait_for_model": true},
	}

	var response ZeroShotResponse
	if err := c.doRequest(ctx, c.zeroShotModel, request, &response); err != nil {
		return nil, fmt.Errorf("ゼロショット分類に失敗: %w", err)
	}
	if len(response.Labels) != len(response.Scores) {
		return nil, fmt.Errorf("ゼロショット分類のレスポンスが不正です (labels=%d, scores=%d)", len(response.Labels), len(response.Scores))
	}
	return &response, nil
}

// PredictRating テキストから1〜5の評価を予測します。
// 評価モデルは "1 star" 〜 "5 stars" のラベルを返すため、
// 最高スコアのラベルから数値を取り出します。
func (c *Client) PredictRating(ctx context.Context, text string) (int, error) {
	request := classificationRequest{
		Inputs:  text,
		Options: map[string]bool{"wait_for_model": true},
	}

	// レスポンスは [[{label, score}, ...]] の入れ子配列
	var response [][]classificationLabel
	if err := c.doRequest(ctx, c.ratingModel, request, &response); err != nil {
		return 0, fmt.Errorf("評価予測に失敗: %w", err)
	}
	if len(response) == 0 || len(response[0]) == 0 {
		return 0, fmt.Errorf("評価予測のレスポンスが空です")
	}

	best := response[0][0]
	for _, label := range response[0][1:] {
		if label.Score > best.Score {
			best = label
		}
	}

	rating, err := parseStarLabel(best.Label)
	if err != nil {
		return 0, err
	}
	return rating, nil
}

// Probe 両モデルが利用可能かを軽量なリクエストで確認します。
// 起動時に一度だけ呼ばれ、結果はプロセス存続中キャッシュされます。
func (c *Client) Probe(ctx context.Context) error {
	if _, err := c.ZeroShotClassify(ctx, "ok", []string{"positive", "negative"}); err != nil {
		return fmt.Errorf("ゼロショットモデルの疎通確認に失敗: %w", err)
	}
	if _, err := c.PredictRating(ctx, "ok"); err != nil {
		return fmt.Errorf("評価モデルの疎通確認に失敗: %w", err)
	}
	return nil
}

// doRequest はHTTPリクエストの実行と基本的なレスポンス処理を行う共通メソッドです。
func (c *Client) doRequest(ctx context.Context, model string, requestData interface{}, responseData interface{}) error {
	if c.endpoint == "" {
		return fmt.Errorf("HuggingFace endpoint が設定されていません")
	}
	if model == "" {
		return fmt.Errorf("モデル名が設定されていません")
	}

	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("リクエストのJSON化に失敗: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.endpoint, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp errorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("HuggingFace API エラー (status: %d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("HuggingFace API エラー (status: %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}

	return nil
}

// parseStarLabel "4 stars" や "1 star" 形式のラベルから評価値を取り出します。
func parseStarLabel(label string) (int, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, fmt.Errorf("評価ラベルが空です")
	}
	rating, err := strconv.Atoi(fields[0])
	if err != nil || rating < 1 || rating > 5 {
		return 0, fmt.Errorf("評価ラベルの解析に失敗: %q", label)
	}
	return rating, nil
}
