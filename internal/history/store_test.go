package history

import (
	"fmt"
	"testing"
)

func tripAt(id string, ts int64) CompletedTrip {
	return CompletedTrip{
		ID:          id,
		StartLat:    35.6892,
		StartLon:    51.3890,
		EndLat:      35.6997,
		EndLon:      51.3380,
		TimestampMs: ts,
		DayOfWeek:   3,
		HourOfDay:   8,
		Traffic:     TrafficSummary{AverageSpeedKph: 45, Congestion: CongestionLight},
	}
}

func TestStoreBoundedFIFO(t *testing.T) {
	store := NewStore(5)
	for i := 0; i < 8; i++ {
		store.Add(tripAt(fmt.Sprintf("t%d", i), int64(i)))
	}
	if store.Len() != 5 {
		t.Fatalf("expected history capped at 5, got %d", store.Len())
	}
	trips := store.Export()
	if trips[0].ID != "t3" {
		t.Fatalf("expected oldest evicted first, head is %s", trips[0].ID)
	}
	if trips[len(trips)-1].ID != "t7" {
		t.Fatalf("expected newest retained, tail is %s", trips[len(trips)-1].ID)
	}
}

func TestStoreQueryAreaAndWindow(t *testing.T) {
	store := NewStore(0)
	store.Add(tripAt("match", 100))

	offRoute := tripAt("elsewhere", 200)
	offRoute.StartLat = 36.5
	store.Add(offRoute)

	wrongDay := tripAt("wrong-day", 300)
	wrongDay.DayOfWeek = 5
	store.Add(wrongDay)

	lateHour := tripAt("late-hour", 400)
	lateHour.HourOfDay = 14
	store.Add(lateHour)

	area := store.Query(35.6892, 51.3890, 35.6997, 51.3380, nil)
	if len(area) != 3 {
		t.Fatalf("expected 3 area matches, got %d", len(area))
	}

	window := &TimeWindow{Hour: 9, DayOfWeek: 3}
	narrowed := store.Query(35.6892, 51.3890, 35.6997, 51.3380, window)
	if len(narrowed) != 1 || narrowed[0].ID != "match" {
		t.Fatalf("expected only the matching trip, got %+v", narrowed)
	}
}

func TestStoreQueryRecencyOrderAndCap(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < 15; i++ {
		store.Add(tripAt(fmt.Sprintf("t%d", i), int64(i)))
	}

	trips := store.Query(35.6892, 51.3890, 35.6997, 51.3380, nil)
	if len(trips) != 10 {
		t.Fatalf("expected top 10, got %d", len(trips))
	}
	if trips[0].ID != "t14" {
		t.Fatalf("expected most recent first, got %s", trips[0].ID)
	}
	for i := 1; i < len(trips); i++ {
		if trips[i].TimestampMs > trips[i-1].TimestampMs {
			t.Fatalf("results not in recency order")
		}
	}
}

func TestStoreImportDeduplicated(t *testing.T) {
	store := NewStore(0)
	original := tripAt("dup", 100)
	original.Quality = 0.2
	store.Add(original)

	replacement := tripAt("dup", 500)
	replacement.Quality = 0.9

	retained := store.ImportDeduplicated([]CompletedTrip{replacement, tripAt("new", 600)})
	if retained != 2 {
		t.Fatalf("expected 2 retained, got %d", retained)
	}

	trips := store.Export()
	seen := 0
	for _, trip := range trips {
		if trip.ID == "dup" {
			seen++
			if trip.Quality != 0.9 {
				t.Fatalf("expected most recently imported duplicate to win")
			}
		}
	}
	if seen != 1 {
		t.Fatalf("expected exactly one trip with duplicate id, got %d", seen)
	}
}

func TestStoreImportTrimsKeepingRecent(t *testing.T) {
	store := NewStore(3)
	var batch []CompletedTrip
	for i := 0; i < 6; i++ {
		batch = append(batch, tripAt(fmt.Sprintf("t%d", i), int64(i*100)))
	}
	if retained := store.ImportDeduplicated(batch); retained != 3 {
		t.Fatalf("expected trim to 3, got %d", retained)
	}
	trips := store.Export()
	if trips[0].ID != "t3" || trips[2].ID != "t5" {
		t.Fatalf("expected most recent trips kept, got %s..%s", trips[0].ID, trips[2].ID)
	}
}

func TestStoreExportImportRoundTrip(t *testing.T) {
	source := NewStore(0)
	for i := 0; i < 4; i++ {
		source.Add(tripAt(fmt.Sprintf("t%d", i), int64(i)))
	}

	dest := NewStore(0)
	dest.ImportDeduplicated(source.Export())

	if dest.Len() != source.Len() {
		t.Fatalf("round trip changed size: %d vs %d", dest.Len(), source.Len())
	}
	ids := map[string]bool{}
	for _, trip := range dest.Export() {
		ids[trip.ID] = true
	}
	for _, trip := range source.Export() {
		if !ids[trip.ID] {
			t.Fatalf("trip %s lost in round trip", trip.ID)
		}
	}
}

func TestCongestionForMonotone(t *testing.T) {
	speeds := []float64{5, 16, 26, 41, 61, 100}
	prev := CongestionFor(speeds[0])
	if prev != CongestionSevere {
		t.Fatalf("expected severe at 5 km/h, got %s", prev)
	}
	for _, v := range speeds[1:] {
		level := CongestionFor(v)
		if level.Rank() > prev.Rank() {
			t.Fatalf("congestion not monotone at %v km/h", v)
		}
		prev = level
	}
	if CongestionFor(60) != CongestionLight {
		t.Fatalf("boundary 60 should be light")
	}
	if CongestionFor(40) != CongestionModerate {
		t.Fatalf("boundary 40 should be moderate")
	}
	if CongestionFor(25) != CongestionHeavy {
		t.Fatalf("boundary 25 should be heavy")
	}
	if CongestionFor(15) != CongestionSevere {
		t.Fatalf("boundary 15 should be severe")
	}
}
