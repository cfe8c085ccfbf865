package history

// Wire field names follow the trip-history sync format and must round-trip
// losslessly through export/import.

type RoutePoint struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	SpeedKph    float64 `json:"speed"`
	TimestampMs int64   `json:"timestamp"`
}

type CompletedTrip struct {
	ID           string         `json:"id"`
	StartLat     float64        `json:"start_lat"`
	StartLon     float64        `json:"start_lon"`
	EndLat       float64        `json:"end_lat"`
	EndLon       float64        `json:"end_lon"`
	RoutePoints  []RoutePoint   `json:"route_points"`
	Traffic      TrafficSummary `json:"traffic_data"`
	TimeTakenMs  int64          `json:"time_taken"`
	DistanceM    float64        `json:"distance"`
	TimestampMs  int64          `json:"timestamp"`
	DayOfWeek    int            `json:"day_of_week"`
	HourOfDay    int            `json:"hour_of_day"`
	UserSelected bool           `json:"user_selected"`
	Quality      float64        `json:"quality"`
}

type TrafficSummary struct {
	AverageSpeedKph float64         `json:"avg_speed"`
	Congestion      CongestionLevel `json:"congestion_level"`
	Incidents       []Incident      `json:"incidents,omitempty"`
}

type Incident struct {
	Type     string  `json:"type"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Severity int     `json:"severity"`
}

type CongestionLevel string

const (
	CongestionFreeFlow CongestionLevel = "free_flow"
	CongestionLight    CongestionLevel = "light"
	CongestionModerate CongestionLevel = "moderate"
	CongestionHeavy    CongestionLevel = "heavy"
	CongestionSevere   CongestionLevel = "severe"
)

// CongestionFor buckets an average speed into the five ordered levels.
func CongestionFor(avgSpeedKph float64) CongestionLevel {
	switch {
	case avgSpeedKph > 60:
		return CongestionFreeFlow
	case avgSpeedKph > 40:
		return CongestionLight
	case avgSpeedKph > 25:
		return CongestionModerate
	case avgSpeedKph > 15:
		return CongestionHeavy
	default:
		return CongestionSevere
	}
}

// Rank orders the levels from free flow (0) to severe (4).
func (c CongestionLevel) Rank() int {
	switch c {
	case CongestionFreeFlow:
		return 0
	case CongestionLight:
		return 1
	case CongestionModerate:
		return 2
	case CongestionHeavy:
		return 3
	default:
		return 4
	}
}
