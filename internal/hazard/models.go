package hazard

import "time"

// Kind mirrors the wire values used by the hazard feed.
type Kind string

const (
	KindFixedCamera  Kind = "fixed"
	KindMobileCamera Kind = "mobile"
	KindSpeedBump    Kind = "speed_bump"
	KindTrafficLight Kind = "traffic_light"
	KindAverageSpeed Kind = "average_speed"
)

// Record is one fixed-location hazard. Read-only during a trip.
type Record struct {
	ID            string    `json:"id"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	Kind          Kind      `json:"type"`
	SpeedLimitKph int       `json:"speed_limit"`
	DirectionDeg  *float64  `json:"direction,omitempty"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// IsCamera reports whether the record participates in the camera alert
// radius rather than the speed-bump radius.
func (r Record) IsCamera() bool {
	return r.Kind != KindSpeedBump
}

func deg(v float64) *float64 { return &v }

// DefaultTehranRecords is the embedded seed catalogue so a fresh deployment
// alerts without any external feed configured.
func DefaultTehranRecords() []Record {
	return []Record{
		{ID: "c1", Lat: 35.7580, Lon: 51.4089, Kind: KindFixedCamera, SpeedLimitKph: 110, DirectionDeg: deg(90), Verified: true},
		{ID: "c2", Lat: 35.7520, Lon: 51.4150, Kind: KindAverageSpeed, SpeedLimitKph: 110, DirectionDeg: deg(90), Verified: true},
		{ID: "c3", Lat: 35.6892, Lon: 51.3890, Kind: KindFixedCamera, SpeedLimitKph: 100, DirectionDeg: deg(180), Verified: true},
		{ID: "c4", Lat: 35.6850, Lon: 51.3950, Kind: KindFixedCamera, SpeedLimitKph: 100, DirectionDeg: deg(0), Verified: true},
		{ID: "c5", Lat: 35.7100, Lon: 51.3500, Kind: KindFixedCamera, SpeedLimitKph: 90, DirectionDeg: deg(270), Verified: true},
		{ID: "c6", Lat: 35.6500, Lon: 51.4200, Kind: KindAverageSpeed, SpeedLimitKph: 110, DirectionDeg: deg(45), Verified: true},
		{ID: "c7", Lat: 35.7300, Lon: 51.4800, Kind: KindFixedCamera, SpeedLimitKph: 100, DirectionDeg: deg(90), Verified: true},
		{ID: "b1", Lat: 35.7000, Lon: 51.4000, Kind: KindSpeedBump, SpeedLimitKph: 40, Verified: true},
		{ID: "b2", Lat: 35.6800, Lon: 51.3800, Kind: KindSpeedBump, SpeedLimitKph: 40, Verified: true},
		{ID: "b3", Lat: 35.7200, Lon: 51.4200, Kind: KindSpeedBump, SpeedLimitKph: 40, Verified: true},
		{ID: "c8", Lat: 35.6997, Lon: 51.3380, Kind: KindTrafficLight, SpeedLimitKph: 50, Verified: true},
		{ID: "c9", Lat: 35.7800, Lon: 51.0500, Kind: KindAverageSpeed, SpeedLimitKph: 120, DirectionDeg: deg(270), Verified: true},
		{ID: "c10", Lat: 35.7600, Lon: 51.4200, Kind: KindFixedCamera, SpeedLimitKph: 90, DirectionDeg: deg(0), Verified: true},
	}
}
