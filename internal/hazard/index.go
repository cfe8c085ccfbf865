package hazard

import (
	"sort"

	"github.com/ghadirb/PersianAINavigation/internal/shared/geo"
)

// Index is an immutable in-memory snapshot of the hazard catalogue for one
// tracking session. A linear scan is fine at catalogue sizes of a few hundred.
type Index struct {
	records []Record
}

// Match pairs a record with its distance from the queried position.
type Match struct {
	Record    Record  `json:"record"`
	DistanceM float64 `json:"distance_m"`
}

func NewIndex(records []Record) *Index {
	copied := make([]Record, len(records))
	copy(copied, records)
	return &Index{records: copied}
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.records)
}

// Near returns all hazards within radiusM of the position, closest first.
func (i *Index) Near(lat, lon, radiusM float64) []Match {
	if i == nil {
		return nil
	}
	var matches []Match
	for _, r := range i.records {
		d := geo.DistanceMeters(lat, lon, r.Lat, r.Lon)
		if d <= radiusM {
			matches = append(matches, Match{Record: r, DistanceM: d})
		}
	}
	sort.Slice(matches, func(a, b int) bool {
		return matches[a].DistanceM < matches[b].DistanceM
	})
	return matches
}
