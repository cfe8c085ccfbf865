package predict

import (
	"context"
	"strconv"
	"strings"

	"github.com/ghadirb/PersianAINavigation/internal/history"
	"github.com/ghadirb/PersianAINavigation/internal/shared/geo"
)

// FeatureCount is the fixed length of the scoring input.
const FeatureCount = 12

const (
	weightFastest        = 0.90
	weightLeastCongested = 0.85
	weightMostSelected   = 0.95

	structuralPointToleranceM = 100.0
	structuralMatchFraction   = 0.8
)

const (
	RationaleFastest        = "fastest"
	RationaleLeastCongested = "least_congested"
	RationaleMostSelected   = "most_user_selected"
)

// CandidateRoute is one ranked prediction output.
type CandidateRoute struct {
	RoutePoints         []history.RoutePoint `json:"route_points"`
	EstimatedDurationMs int64                `json:"estimated_duration_ms"`
	Score               float64              `json:"score"`
	Rationale           string               `json:"rationale"`
}

// PredictionResult carries the ranked candidates. Candidates is always
// non-nil; empty means no usable history or a failed scorer.
type PredictionResult struct {
	Candidates []CandidateRoute `json:"candidates"`
	Confidence float64          `json:"confidence"`
}

// Predictor ranks historical routes for a new query context. It only reads
// the history store and may run concurrently with live tracking.
type Predictor struct {
	store  *history.Store
	scorer Scorer
}

func NewPredictor(store *history.Store, scorer Scorer) *Predictor {
	return &Predictor{store: store, scorer: scorer}
}

// Predict filters history for similar trips, scores the query context and
// ranks candidates. Scorer failure degrades to an empty result.
func (p *Predictor) Predict(ctx context.Context, originLat, originLon, destLat, destLon float64, hour, dayOfWeek int) PredictionResult {
	empty := PredictionResult{Candidates: []CandidateRoute{}}

	window := &history.TimeWindow{Hour: hour, DayOfWeek: dayOfWeek}
	similar := p.store.Query(originLat, originLon, destLat, destLon, window)
	if len(similar) == 0 {
		return empty
	}
	area := p.store.QueryArea(originLat, originLon, destLat, destLon)

	features := buildFeatures(originLat, originLon, destLat, destLon, hour, dayOfWeek, area)

	score, err := p.scorer.Score(ctx, features)
	if err != nil {
		return empty
	}

	candidates := dedupe([]CandidateRoute{
		fastest(similar, score.RouteScore),
		leastCongested(similar, score.RouteScore),
		mostSelected(similar, score.RouteScore),
	})

	return PredictionResult{Candidates: candidates, Confidence: score.RouteScore}
}

// buildFeatures encodes the query context. History-derived components are 0
// when no trips cover the area.
func buildFeatures(originLat, originLon, destLat, destLon float64, hour, dayOfWeek int, area []history.CompletedTrip) []float64 {
	features := make([]float64, FeatureCount)
	features[0] = originLat
	features[1] = originLon
	features[2] = destLat
	features[3] = destLon
	features[4] = geo.HaversineKm(originLat, originLon, destLat, destLon)
	features[5] = geo.BearingDegrees(originLat, originLon, destLat, destLon)
	features[6] = float64(hour) / 24
	features[7] = float64(dayOfWeek) / 7

	if len(area) == 0 {
		return features
	}

	var speedSum, durationSum float64
	var congested, selected int
	for _, trip := range area {
		speedSum += trip.Traffic.AverageSpeedKph
		durationSum += float64(trip.TimeTakenMs)
		if trip.Traffic.Congestion == history.CongestionHeavy || trip.Traffic.Congestion == history.CongestionSevere {
			congested++
		}
		if trip.UserSelected {
			selected++
		}
	}
	n := float64(len(area))
	features[8] = speedSum / n
	features[9] = durationSum / n / 60000 // minutes
	features[10] = float64(congested) / n
	features[11] = float64(selected) / n
	return features
}

func fastest(similar []history.CompletedTrip, routeScore float64) CandidateRoute {
	best := similar[0]
	for _, trip := range similar[1:] {
		if trip.TimeTakenMs < best.TimeTakenMs {
			best = trip
		}
	}
	return CandidateRoute{
		RoutePoints:         best.RoutePoints,
		EstimatedDurationMs: best.TimeTakenMs,
		Score:               weightFastest * routeScore,
		Rationale:           RationaleFastest,
	}
}

// leastCongested picks the freest-flowing trip among those classified Light
// or FreeFlow. No eligible trip means no candidate.
func leastCongested(similar []history.CompletedTrip, routeScore float64) CandidateRoute {
	var best *history.CompletedTrip
	for i := range similar {
		trip := &similar[i]
		level := trip.Traffic.Congestion
		if level != history.CongestionFreeFlow && level != history.CongestionLight {
			continue
		}
		if best == nil || trip.Traffic.AverageSpeedKph > best.Traffic.AverageSpeedKph {
			best = trip
		}
	}
	if best == nil {
		return CandidateRoute{}
	}
	return CandidateRoute{
		RoutePoints:         best.RoutePoints,
		EstimatedDurationMs: best.TimeTakenMs,
		Score:               weightLeastCongested * routeScore,
		Rationale:           RationaleLeastCongested,
	}
}

// mostSelected favours the route drivers chose most often. Popularity of a
// trip is the number of user-selected trips structurally similar to it; ties
// fall to the trip with more structural matches overall.
func mostSelected(similar []history.CompletedTrip, routeScore float64) CandidateRoute {
	var best *history.CompletedTrip
	bestPopularity, bestStructural := -1, -1
	for i := range similar {
		trip := &similar[i]
		popularity, structural := 0, 0
		for j := range similar {
			if !structurallySimilar(trip.RoutePoints, similar[j].RoutePoints) {
				continue
			}
			structural++
			if similar[j].UserSelected {
				popularity++
			}
		}
		if popularity > bestPopularity || (popularity == bestPopularity && structural > bestStructural) {
			best = trip
			bestPopularity = popularity
			bestStructural = structural
		}
	}
	if best == nil || bestPopularity == 0 {
		return CandidateRoute{}
	}
	return CandidateRoute{
		RoutePoints:         best.RoutePoints,
		EstimatedDurationMs: best.TimeTakenMs,
		Score:               weightMostSelected * routeScore,
		Rationale:           RationaleMostSelected,
	}
}

// structurallySimilar holds when both traces have the same length and at
// least 80% of corresponding points lie within 100 m of each other.
func structurallySimilar(a, b []history.RoutePoint) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	matches := 0
	for i := range a {
		if geo.DistanceMeters(a[i].Lat, a[i].Lon, b[i].Lat, b[i].Lon) <= structuralPointToleranceM {
			matches++
		}
	}
	return float64(matches) >= structuralMatchFraction*float64(len(a))
}

// dedupe drops empty candidates and collapses identical route-point
// sequences, keeping the highest score. Output is ordered by score.
func dedupe(candidates []CandidateRoute) []CandidateRoute {
	kept := make([]CandidateRoute, 0, len(candidates))
	seen := map[string]int{}
	for _, cand := range candidates {
		if len(cand.RoutePoints) == 0 {
			continue
		}
		key := routeKey(cand.RoutePoints)
		if i, ok := seen[key]; ok {
			if cand.Score > kept[i].Score {
				kept[i] = cand
			}
			continue
		}
		seen[key] = len(kept)
		kept = append(kept, cand)
	}
	for i := 0; i < len(kept); i++ {
		for j := i + 1; j < len(kept); j++ {
			if kept[j].Score > kept[i].Score {
				kept[i], kept[j] = kept[j], kept[i]
			}
		}
	}
	return kept
}

func routeKey(points []history.RoutePoint) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lon, 'f', 6, 64))
		b.WriteByte(';')
	}
	return b.String()
}
