package trip

import (
	"time"

	"github.com/ghadirb/PersianAINavigation/internal/hazard"
)

type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

// PositionFix is one sample from the location provider. Timestamps are
// advisory; duplicates and out-of-order arrival are tolerated.
type PositionFix struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	SpeedMps   float64   `json:"speed_mps"`
	BearingDeg float64   `json:"bearing_deg,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// Trip is the externally visible snapshot of the active session.
type Trip struct {
	ID            string    `json:"id"`
	OriginLat     float64   `json:"origin_lat"`
	OriginLon     float64   `json:"origin_lon"`
	DestLat       float64   `json:"dest_lat"`
	DestLon       float64   `json:"dest_lon"`
	StartedAt     time.Time `json:"started_at"`
	State         State     `json:"state"`
	SpeedLimitKph int       `json:"speed_limit_kph"`
	FixCount      int       `json:"fix_count"`
}

type Category string

const (
	CategoryCamera      Category = "camera"
	CategorySpeedBump   Category = "speed_bump"
	CategorySpeedViol   Category = "speed_violation"
	CategoryApproaching Category = "approaching_destination"
	CategoryOffRoute    Category = "off_route"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertEvent carries only category, numeric payload and tier. Wording is
// owned by the presentation sink.
type AlertEvent struct {
	TripID        string      `json:"trip_id"`
	Category      Category    `json:"category"`
	HazardID      string      `json:"hazard_id,omitempty"`
	HazardKind    hazard.Kind `json:"hazard_kind,omitempty"`
	DistanceM     float64     `json:"distance_m,omitempty"`
	SpeedKph      float64     `json:"speed_kph,omitempty"`
	SpeedLimitKph int         `json:"speed_limit_kph,omitempty"`
	Severity      Severity    `json:"severity"`
	At            time.Time   `json:"at"`
}

// severityForDistance is the four-tier step function used for proximity
// alerts.
func severityForDistance(distanceM float64) Severity {
	switch {
	case distanceM > 1000:
		return SeverityLow
	case distanceM > 500:
		return SeverityMedium
	case distanceM > 200:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// severityForExcess grades a speed violation by how far over the limit the
// vehicle is.
func severityForExcess(excessKph float64) Severity {
	switch {
	case excessKph > 30:
		return SeverityCritical
	case excessKph > 20:
		return SeverityHigh
	case excessKph > 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
