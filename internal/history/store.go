package history

import (
	"sort"
	"sync"

	"github.com/ghadirb/PersianAINavigation/internal/shared/geo"
)

const (
	// DefaultMaxHistory bounds the retained trip history.
	DefaultMaxHistory = 1000

	similarRadiusKm = 1.0
	maxQueryResults = 10
	maxHourDiff     = 2
)

// TimeWindow narrows a similarity query to trips near the same time of week.
type TimeWindow struct {
	Hour      int `json:"hour"`
	DayOfWeek int `json:"day_of_week"`
}

// Store is the bounded, append-only trip history. Completion writes and
// prediction reads may run concurrently, so all access goes through the
// RWMutex and query results are copied out.
type Store struct {
	mu    sync.RWMutex
	max   int
	trips []CompletedTrip
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &Store{max: max}
}

// Add appends a completed trip, evicting the oldest entry once the
// retention bound is exceeded.
func (s *Store) Add(trip CompletedTrip) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trips = append(s.trips, trip)
	if len(s.trips) > s.max {
		s.trips = s.trips[len(s.trips)-s.max:]
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trips)
}

// Query returns up to ten trips whose endpoints both lie within 1 km of the
// given origin and destination, most recent first. A non-nil window further
// requires the same weekday and an hour-of-day difference of at most two.
func (s *Store) Query(originLat, originLon, destLat, destLon float64, window *TimeWindow) []CompletedTrip {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []CompletedTrip
	for _, trip := range s.trips {
		if !endpointsMatch(trip, originLat, originLon, destLat, destLon) {
			continue
		}
		if window != nil {
			hourDiff := trip.HourOfDay - window.Hour
			if hourDiff < 0 {
				hourDiff = -hourDiff
			}
			if hourDiff > maxHourDiff || trip.DayOfWeek != window.DayOfWeek {
				continue
			}
		}
		matches = append(matches, trip)
	}

	sort.Slice(matches, func(a, b int) bool {
		return matches[a].TimestampMs > matches[b].TimestampMs
	})
	if len(matches) > maxQueryResults {
		matches = matches[:maxQueryResults]
	}
	return matches
}

// QueryArea returns every trip matching the endpoint areas, without a time
// window or result cap. Used for feature statistics.
func (s *Store) QueryArea(originLat, originLon, destLat, destLon float64) []CompletedTrip {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []CompletedTrip
	for _, trip := range s.trips {
		if endpointsMatch(trip, originLat, originLon, destLat, destLon) {
			matches = append(matches, trip)
		}
	}
	return matches
}

// ImportDeduplicated merges an external batch into the history. A re-imported
// id replaces the retained entry; the result is trimmed to the retention
// bound keeping the most recent trips.
func (s *Store) ImportDeduplicated(batch []CompletedTrip) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]CompletedTrip, 0, len(s.trips)+len(batch))
	index := make(map[string]int, len(s.trips)+len(batch))
	for _, trip := range s.trips {
		index[trip.ID] = len(merged)
		merged = append(merged, trip)
	}
	for _, trip := range batch {
		if at, ok := index[trip.ID]; ok {
			merged[at] = trip
			continue
		}
		index[trip.ID] = len(merged)
		merged = append(merged, trip)
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].TimestampMs < merged[b].TimestampMs
	})
	if len(merged) > s.max {
		merged = merged[len(merged)-s.max:]
	}
	s.trips = merged
	return len(s.trips)
}

// Export snapshots the retained history, oldest first. Never nil.
func (s *Store) Export() []CompletedTrip {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CompletedTrip, len(s.trips))
	copy(out, s.trips)
	return out
}

func endpointsMatch(trip CompletedTrip, originLat, originLon, destLat, destLon float64) bool {
	startDist := geo.HaversineKm(originLat, originLon, trip.StartLat, trip.StartLon)
	endDist := geo.HaversineKm(destLat, destLon, trip.EndLat, trip.EndLon)
	return startDist < similarRadiusKm && endDist < similarRadiusKm
}
