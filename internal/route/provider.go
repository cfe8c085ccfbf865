package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Step struct {
	Maneuver  string  `json:"maneuver"`
	DistanceM float64 `json:"distance_m"`
	DurationS float64 `json:"duration_s"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

type Route struct {
	DistanceM  float64 `json:"distance_m"`
	DurationMs int64   `json:"duration_ms"`
	Points     []Point `json:"points"`
	Steps      []Step  `json:"steps"`
}

// Provider returns candidate route geometries for an origin/destination
// pair. It only seeds a trip's planned route; the predictor never calls it.
type Provider interface {
	GetRoutes(ctx context.Context, originLat, originLon, destLat, destLon float64, alternatives int) ([]Route, error)
}

// OSRMProvider talks to an OSRM-compatible routing server.
type OSRMProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewOSRMProvider(baseURL string) *OSRMProvider {
	return &OSRMProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Maneuver struct {
					Type     string    `json:"type"`
					Location []float64 `json:"location"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

func (p *OSRMProvider) GetRoutes(ctx context.Context, originLat, originLon, destLat, destLon float64, alternatives int) ([]Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?alternatives=%d&steps=true&geometries=geojson&overview=full",
		p.baseURL, originLon, originLat, destLon, destLat, alternatives)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("route: failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("route: server returned status %d", resp.StatusCode)
	}

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("route: failed to decode response: %w", err)
	}

	routes := make([]Route, 0, len(decoded.Routes))
	for _, r := range decoded.Routes {
		route := Route{
			DistanceM:  r.Distance,
			DurationMs: int64(r.Duration * 1000),
		}
		for _, coord := range r.Geometry.Coordinates {
			if len(coord) < 2 {
				continue
			}
			route.Points = append(route.Points, Point{Lat: coord[1], Lon: coord[0]})
		}
		for _, leg := range r.Legs {
			for _, s := range leg.Steps {
				step := Step{
					Maneuver:  s.Maneuver.Type,
					DistanceM: s.Distance,
					DurationS: s.Duration,
				}
				if len(s.Maneuver.Location) >= 2 {
					step.Lat = s.Maneuver.Location[1]
					step.Lon = s.Maneuver.Location[0]
				}
				route.Steps = append(route.Steps, step)
			}
		}
		routes = append(routes, route)
	}
	return routes, nil
}
