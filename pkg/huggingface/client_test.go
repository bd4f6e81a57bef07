package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZeroShotClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/facebook/bart-large-mnli", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var request map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		params := request["parameters"].(map[string]interface{})
		assert.Equal(t, true, params["multi_label"])

		json.NewEncoder(w).Encode(ZeroShotResponse{
			Sequence: "battery dies quickly",
			Labels:   []string{"Short battery life, battery dies quickly, charging issues"},
			Scores:   []float64{0.93},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "facebook/bart-large-mnli", "nlptown/rating", 5*time.Second)

	response, err := client.ZeroShotClassify(context.Background(), "battery dies quickly", []string{"label"})
	assert.NoError(t, err)
	assert.Len(t, response.Labels, 1)
	assert.InDelta(t, 0.93, response.Scores[0], 1e-9)
}

func TestZeroShotClassifyMismatchedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ZeroShotResponse{
			Labels: []string{"a", "b"},
			Scores: []float64{0.5},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "model", "rating", 5*time.Second)

	_, err := client.ZeroShotClassify(context.Background(), "text", []string{"a", "b"})
	assert.Error(t, err)
}

func TestPredictRating(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/nlptown/rating", r.URL.Path)

		// レスポンスは入れ子配列で、最高スコアのラベルが採用される
		json.NewEncoder(w).Encode([][]classificationLabel{{
			{Label: "1 star", Score: 0.05},
			{Label: "4 stars", Score: 0.72},
			{Label: "5 stars", Score: 0.18},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "zeroshot", "nlptown/rating", 5*time.Second)

	rating, err := client.PredictRating(context.Background(), "pretty good headphones")
	assert.NoError(t, err)
	assert.Equal(t, 4, rating)
}

func TestPredictRatingEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]classificationLabel{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "zeroshot", "rating", 5*time.Second)

	_, err := client.PredictRating(context.Background(), "text")
	assert.Error(t, err)
}

func TestDoRequestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Model is currently loading"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "zeroshot", "rating", 5*time.Second)

	_, err := client.ZeroShotClassify(context.Background(), "text", []string{"a"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Model is currently loading")
}

func TestDoRequestMissingEndpoint(t *testing.T) {
	client := NewClient("", "", "zeroshot", "rating", 5*time.Second)

	_, err := client.ZeroShotClassify(context.Background(), "text", []string{"a"})
	assert.Error(t, err)
}

func TestParseStarLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected int
		wantErr  bool
	}{
		{"1 star", 1, false},
		{"5 stars", 5, false},
		{"3 stars", 3, false},
		{"6 stars", 0, true},
		{"stars", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		rating, err := parseStarLabel(tt.label)
		if tt.wantErr {
			assert.Error(t, err, "label: %q", tt.label)
		} else {
			assert.NoError(t, err, "label: %q", tt.label)
			assert.Equal(t, tt.expected, rating)
		}
	}
}
