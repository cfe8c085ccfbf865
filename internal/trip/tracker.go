package trip

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/ghadirb/PersianAINavigation/internal/hazard"
	"github.com/ghadirb/PersianAINavigation/internal/history"
	"github.com/ghadirb/PersianAINavigation/internal/shared/geo"

	"github.com/google/uuid"
)

// Config carries the alerting thresholds. The speed margin and cooldown are
// deployment knobs; the rest are fixed alerting distances.
type Config struct {
	CameraAlertRadiusM float64
	BumpAlertRadiusM   float64
	SpeedMarginKph     int
	SpeedCooldown      time.Duration
	ApproachRadiusM    float64
	ArrivalRadiusM     float64
	OffRouteToleranceM float64
	OffRouteCooldown   time.Duration
}

func DefaultConfig() Config {
	return Config{
		CameraAlertRadiusM: 500,
		BumpAlertRadiusM:   200,
		SpeedMarginKph:     10,
		SpeedCooldown:      5 * time.Second,
		ApproachRadiusM:    1000,
		ArrivalRadiusM:     50,
		OffRouteToleranceM: 200,
		OffRouteCooldown:   30 * time.Second,
	}
}

var ErrNoDestination = errors.New("destination required")

// Tracker is the per-device trip state machine. Fixes arrive serially from
// one producer; the mutex only guards against snapshot reads from handler
// goroutines.
type Tracker struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	sink    func(AlertEvent)
	state   State
	trip    Trip
	fixes   []PositionFix
	hazards *hazard.Index
	alerted map[string]struct{}
	arbiter *Arbiter
	planned [][2]float64

	approachArmed bool
	completed     *history.CompletedTrip
}

func NewTracker(cfg Config, sink func(AlertEvent)) *Tracker {
	return &Tracker{
		cfg:   cfg,
		now:   time.Now,
		sink:  sink,
		state: StateIdle,
		arbiter: NewArbiter(map[Category]time.Duration{
			CategorySpeedViol: cfg.SpeedCooldown,
			CategoryOffRoute:  cfg.OffRouteCooldown,
		}),
	}
}

// Start activates a new trip. Starting without a usable destination is
// rejected; starting while already active is a no-op returning the current
// trip.
func (t *Tracker) Start(originLat, originLon, destLat, destLon float64, hazards *hazard.Index) (Trip, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateActive {
		return t.trip, nil
	}
	if !validCoordinate(destLat, destLon) || (destLat == 0 && destLon == 0) {
		return Trip{}, ErrNoDestination
	}

	t.trip = Trip{
		ID:        uuid.NewString(),
		OriginLat: originLat,
		OriginLon: originLon,
		DestLat:   destLat,
		DestLon:   destLon,
		StartedAt: t.now(),
		State:     StateActive,
	}
	t.state = StateActive
	t.fixes = nil
	t.hazards = hazards
	t.alerted = map[string]struct{}{}
	t.arbiter.Reset()
	t.planned = nil
	t.approachArmed = true
	t.completed = nil
	return t.trip, nil
}

// SetPlannedRoute installs the seeded route geometry used for off-route
// detection. Safe to call while tracking.
func (t *Tracker) SetPlannedRoute(points [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.planned = points
}

// SetSpeedLimit overrides the active speed-limit context.
func (t *Tracker) SetSpeedLimit(kph int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trip.SpeedLimitKph = kph
}

// Current returns a snapshot of the active trip.
func (t *Tracker) Current() Trip {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := t.trip
	snapshot.State = t.state
	snapshot.FixCount = len(t.fixes)
	return snapshot
}

// HandleFix processes one position sample and returns the alerts it raised.
// Malformed fixes are dropped and the trip continues. The sink runs after
// the lock is released so slow or re-entrant sinks never stall ingestion.
func (t *Tracker) HandleFix(fix PositionFix) []AlertEvent {
	t.mu.Lock()
	events := t.processFix(fix)
	t.mu.Unlock()

	for _, ev := range events {
		if t.sink != nil {
			t.sink(ev)
		}
	}
	return events
}

func (t *Tracker) processFix(fix PositionFix) []AlertEvent {
	if t.state != StateActive {
		return nil
	}
	if !validFix(fix) {
		log.Printf("discarding malformed fix: lat=%v lon=%v speed=%v", fix.Lat, fix.Lon, fix.SpeedMps)
		return nil
	}
	if fix.RecordedAt.IsZero() {
		fix.RecordedAt = t.now()
	}
	t.fixes = append(t.fixes, fix)

	now := t.now()
	speedKph := fix.SpeedMps * 3.6

	var events []AlertEvent
	events = append(events, t.hazardAlerts(fix, now)...)
	if ev, ok := t.speedViolation(speedKph, now); ok {
		events = append(events, ev)
	}
	if ev, ok := t.offRoute(fix, now); ok {
		events = append(events, ev)
	}
	events = append(events, t.destinationAlerts(fix, now)...)
	return events
}

// Stop ends the trip explicitly. The completed record is nil when fewer
// than two fixes were collected.
func (t *Tracker) Stop() (*history.CompletedTrip, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateActive {
		return nil, false
	}
	completed := t.finalize()
	t.reset()
	return completed, true
}

// TakeCompleted hands over the record of a trip that completed by arrival
// and returns the tracker to Idle.
func (t *Tracker) TakeCompleted() (*history.CompletedTrip, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateCompleted {
		return nil, false
	}
	completed := t.completed
	t.reset()
	return completed, completed != nil
}

func (t *Tracker) hazardAlerts(fix PositionFix, now time.Time) []AlertEvent {
	matches := t.hazards.Near(fix.Lat, fix.Lon, t.cfg.CameraAlertRadiusM)

	var events []AlertEvent
	var cameraDone, bumpDone bool
	for _, m := range matches {
		if _, done := t.alerted[m.Record.ID]; done {
			continue
		}
		switch {
		case m.Record.IsCamera() && !cameraDone:
			cameraDone = true
			t.alerted[m.Record.ID] = struct{}{}
			t.trip.SpeedLimitKph = m.Record.SpeedLimitKph
			events = append(events, AlertEvent{
				TripID:        t.trip.ID,
				Category:      CategoryCamera,
				HazardID:      m.Record.ID,
				HazardKind:    m.Record.Kind,
				DistanceM:     m.DistanceM,
				SpeedLimitKph: m.Record.SpeedLimitKph,
				Severity:      severityForDistance(m.DistanceM),
				At:            now,
			})
		case !m.Record.IsCamera() && !bumpDone && m.DistanceM <= t.cfg.BumpAlertRadiusM:
			bumpDone = true
			t.alerted[m.Record.ID] = struct{}{}
			t.trip.SpeedLimitKph = m.Record.SpeedLimitKph
			events = append(events, AlertEvent{
				TripID:        t.trip.ID,
				Category:      CategorySpeedBump,
				HazardID:      m.Record.ID,
				HazardKind:    m.Record.Kind,
				DistanceM:     m.DistanceM,
				SpeedLimitKph: m.Record.SpeedLimitKph,
				Severity:      severityForDistance(m.DistanceM),
				At:            now,
			})
		}
		if cameraDone && bumpDone {
			break
		}
	}
	return events
}

func (t *Tracker) speedViolation(speedKph float64, now time.Time) (AlertEvent, bool) {
	limit := t.trip.SpeedLimitKph
	if limit <= 0 || speedKph <= float64(limit+t.cfg.SpeedMarginKph) {
		return AlertEvent{}, false
	}
	if !t.arbiter.ShouldEmit(CategorySpeedViol, now) {
		return AlertEvent{}, false
	}
	return AlertEvent{
		TripID:        t.trip.ID,
		Category:      CategorySpeedViol,
		SpeedKph:      speedKph,
		SpeedLimitKph: limit,
		Severity:      severityForExcess(speedKph - float64(limit)),
		At:            now,
	}, true
}

func (t *Tracker) offRoute(fix PositionFix, now time.Time) (AlertEvent, bool) {
	if len(t.planned) == 0 {
		return AlertEvent{}, false
	}
	nearest := math.Inf(1)
	for _, p := range t.planned {
		if d := geo.DistanceMeters(fix.Lat, fix.Lon, p[0], p[1]); d < nearest {
			nearest = d
		}
	}
	if nearest <= t.cfg.OffRouteToleranceM {
		return AlertEvent{}, false
	}
	if !t.arbiter.ShouldEmit(CategoryOffRoute, now) {
		return AlertEvent{}, false
	}
	return AlertEvent{
		TripID:    t.trip.ID,
		Category:  CategoryOffRoute,
		DistanceM: nearest,
		Severity:  SeverityMedium,
		At:        now,
	}, true
}

func (t *Tracker) destinationAlerts(fix PositionFix, now time.Time) []AlertEvent {
	distance := geo.DistanceMeters(fix.Lat, fix.Lon, t.trip.DestLat, t.trip.DestLon)

	if distance <= t.cfg.ArrivalRadiusM {
		t.completed = t.finalize()
		t.state = StateCompleted
		t.trip.State = StateCompleted
		return nil
	}

	if distance <= t.cfg.ApproachRadiusM {
		if !t.approachArmed {
			return nil
		}
		t.approachArmed = false
		return []AlertEvent{{
			TripID:    t.trip.ID,
			Category:  CategoryApproaching,
			DistanceM: distance,
			Severity:  severityForDistance(distance),
			At:        now,
		}}
	}

	// re-arm once the vehicle leaves the approach band
	t.approachArmed = true
	return nil
}

// finalize builds the historical record. Trips with fewer than two fixes
// carry no usable trace and produce nothing.
func (t *Tracker) finalize() *history.CompletedTrip {
	if len(t.fixes) < 2 {
		return nil
	}

	first := t.fixes[0]
	last := t.fixes[len(t.fixes)-1]

	var totalDistance, speedSum float64
	points := make([]history.RoutePoint, len(t.fixes))
	for i, fix := range t.fixes {
		speedKph := fix.SpeedMps * 3.6
		speedSum += speedKph
		points[i] = history.RoutePoint{
			Lat:         fix.Lat,
			Lon:         fix.Lon,
			SpeedKph:    speedKph,
			TimestampMs: fix.RecordedAt.UnixMilli(),
		}
		if i > 0 {
			prev := t.fixes[i-1]
			totalDistance += geo.DistanceMeters(prev.Lat, prev.Lon, fix.Lat, fix.Lon)
		}
	}

	avgSpeed := speedSum / float64(len(t.fixes))
	congestion := history.CongestionFor(avgSpeed)

	return &history.CompletedTrip{
		ID:          t.trip.ID,
		StartLat:    first.Lat,
		StartLon:    first.Lon,
		EndLat:      last.Lat,
		EndLon:      last.Lon,
		RoutePoints: points,
		Traffic: history.TrafficSummary{
			AverageSpeedKph: avgSpeed,
			Congestion:      congestion,
		},
		TimeTakenMs:  last.RecordedAt.UnixMilli() - first.RecordedAt.UnixMilli(),
		DistanceM:    totalDistance,
		TimestampMs:  t.now().UnixMilli(),
		DayOfWeek:    int(t.trip.StartedAt.Weekday()) + 1,
		HourOfDay:    t.trip.StartedAt.Hour(),
		UserSelected: true,
		Quality:      float64(4-congestion.Rank()) / 4,
	}
}

func (t *Tracker) reset() {
	t.state = StateIdle
	t.trip = Trip{State: StateIdle}
	t.fixes = nil
	t.hazards = nil
	t.alerted = nil
	t.planned = nil
	t.completed = nil
}

func validFix(fix PositionFix) bool {
	if !validCoordinate(fix.Lat, fix.Lon) {
		return false
	}
	if math.IsNaN(fix.SpeedMps) || fix.SpeedMps < 0 {
		return false
	}
	return true
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
