package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"review-insight-api/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrProductNotFound 指定された商品ドキュメントが存在しない
var ErrProductNotFound = errors.New("商品ドキュメントが見つかりません")

const (
	productCollection = "products"
	recentListLimit   = 50
)

// ProductStoreService 商品分析ドキュメントのMongoDB永続化層。
// ドキュメントは "{retailer}_{product_id}_product" を_idとして保存され、
// 同一キーへの再保存は全体置換となる（last-write-wins）。
type ProductStoreService struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewProductStoreService MongoDBに接続してストアを作成します。
// 接続確認まで行い、失敗した場合はエラーを返します。
func NewProductStoreService(ctx context.Context, uri, database string) (*ProductStoreService, error) {
	if uri == "" {
		return nil, fmt.Errorf("MongoDB URIが設定されていません")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDBへの疎通確認に失敗: %w", err)
	}

	log.Printf("✅ MongoDBに接続しました (database: %s)", database)
	return &ProductStoreService{
		client:     client,
		collection: client.Database(database).Collection(productCollection),
	}, nil
}

// Close MongoDB接続を切断します。
func (s *ProductStoreService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SaveDocument 商品ドキュメントをupsertします。
// 既存ドキュメントはマージせず全体を置き換えます。
func (s *ProductStoreService) SaveDocument(ctx context.Context, document models.ProductDocument) error {
	filter := bson.M{"_id": document.DocumentKey}
	opts := options.Replace().SetUpsert(true)

	if _, err := s.collection.ReplaceOne(ctx, filter, document, opts); err != nil {
		return fmt.Errorf("商品ドキュメントの保存に失敗 (key: %s): %w", document.DocumentKey, err)
	}
	return nil
}

// GetDocument 商品ドキュメントをキーで取得します。
// 存在しない場合はErrProductNotFoundを返します。
func (s *ProductStoreService) GetDocument(ctx context.Context, retailer, productID string) (*models.ProductDocument, error) {
	key := DocumentKey(retailer, productID)

	var document models.ProductDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("商品ドキュメントの取得に失敗 (key: %s): %w", key, err)
	}
	return &document, nil
}

// ListProducts 保存済み商品のサマリーを新しい順に返します（最大50件）。
func (s *ProductStoreService) ListProducts(ctx context.Context) ([]models.ProductSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(recentListLimit)

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := make([]models.ProductSummary, 0, recentListLimit)
	for cursor.Next(ctx) {
		var document models.ProductDocument
		if err := cursor.Decode(&document); err != nil {
			return nil, fmt.Errorf("商品ドキュメントのデコードに失敗: %w", err)
		}
		summaries = append(summaries, summarize(document))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("商品一覧の読み取りに失敗: %w", err)
	}
	return summaries, nil
}

// GetComplaintAnalysis 保存済み分析から苦情ビューだけを抽出して返します。
func (s *ProductStoreService) GetComplaintAnalysis(ctx context.Context, retailer, productID string) (*models.ComplaintAnalysis, error) {
	document, err := s.GetDocument(ctx, retailer, productID)
	if err != nil {
		return nil, err
	}
	if document.Analysis == nil {
		return nil, ErrProductNotFound
	}

	analysis := document.Analysis
	return &models.ComplaintAnalysis{
		ProductInfo:          document.ProductInfo,
		TotalReviews:         analysis.TotalReviews,
		TotalComplaints:      analysis.TotalComplaints,
		ComplaintPercentage:  analysis.ComplaintPercentage,
		TopComplaints:        analysis.TopComplaints,
		ComplaintCategories:  analysis.ComplaintCategories,
		MLRatingDistribution: analysis.MLRatingDistribution,
		AnalysisMethod:       analysis.AnalysisMethod,
		Timestamp:            document.Timestamp,
	}, nil
}

// summarize ドキュメントから一覧表示用のサマリーを作る
func summarize(document models.ProductDocument) models.ProductSummary {
	summary := models.ProductSummary{
		ProductID:   document.ProductID,
		Retailer:    document.Retailer,
		ProductInfo: document.ProductInfo,
		Timestamp:   document.Timestamp,
	}
	if document.Analysis != nil {
		summary.AnalysisSummary = models.AnalysisSummary{
			AverageRating:       document.Analysis.AverageRating,
			TotalReviews:        document.Analysis.TotalReviews,
			TotalComplaints:     document.Analysis.TotalComplaints,
			ComplaintPercentage: document.Analysis.ComplaintPercentage,
			AnalysisMethod:      document.Analysis.AnalysisMethod,
		}
	}
	return summary
}
