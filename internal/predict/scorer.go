package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Score is the scoring backend's verdict for one query context.
type Score struct {
	RouteScore          float64 `json:"route_score"`
	EstimatedDurationMs int64   `json:"estimated_duration_ms"`
	Congestion          float64 `json:"congestion_level"`
}

// Scorer abstracts the model backend so tests run against a deterministic
// stub and production against a real inference service.
type Scorer interface {
	Score(ctx context.Context, features []float64) (Score, error)
}

// HTTPScorer posts the feature vector to an external inference service.
type HTTPScorer struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPScorer(baseURL string) *HTTPScorer {
	return &HTTPScorer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type scoreRequest struct {
	Features []float64 `json:"features"`
}

func (s *HTTPScorer) Score(ctx context.Context, features []float64) (Score, error) {
	body, err := json.Marshal(scoreRequest{Features: features})
	if err != nil {
		return Score{}, fmt.Errorf("predict: failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return Score{}, fmt.Errorf("predict: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Score{}, fmt.Errorf("predict: scorer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Score{}, fmt.Errorf("predict: scorer returned status %d", resp.StatusCode)
	}

	var score Score
	if err := json.NewDecoder(resp.Body).Decode(&score); err != nil {
		return Score{}, fmt.Errorf("predict: failed to decode score: %w", err)
	}
	return score, nil
}

// StubScorer folds the feature vector into a stable pseudo-score. It stands
// in for the model backend when no scorer service is configured.
type StubScorer struct{}

func (StubScorer) Score(_ context.Context, features []float64) (Score, error) {
	var acc float64
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		acc += math.Abs(f) * float64(i+1)
	}
	score := 0.5 + 0.5*math.Abs(math.Sin(acc))
	if score > 1 {
		score = 1
	}
	return Score{RouteScore: score, Congestion: math.Abs(math.Cos(acc))}, nil
}
