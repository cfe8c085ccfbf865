package history

import (
	"context"
	"encoding/json"

	"github.com/ghadirb/PersianAINavigation/internal/db"
)

// Archiver mirrors completed trips into Postgres. Archiving is
// fire-and-forget: callers log failures and never roll back completion.
type Archiver struct {
	db db.Querier
}

func NewArchiver(db db.Querier) *Archiver {
	return &Archiver{db: db}
}

func (a *Archiver) Save(ctx context.Context, trip CompletedTrip) error {
	points, err := json.Marshal(trip.RoutePoints)
	if err != nil {
		return err
	}
	incidents, err := json.Marshal(trip.Traffic.Incidents)
	if err != nil {
		return err
	}

	_, err = a.db.Exec(ctx, `
		INSERT INTO trip_history
			(id, start_lat, start_lon, end_lat, end_lon, route_points,
			 avg_speed_kph, congestion, incidents, time_taken_ms, distance_m,
			 recorded_at_ms, day_of_week, hour_of_day, user_selected, quality)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO NOTHING
	`, trip.ID, trip.StartLat, trip.StartLon, trip.EndLat, trip.EndLon, points,
		trip.Traffic.AverageSpeedKph, trip.Traffic.Congestion, incidents,
		trip.TimeTakenMs, trip.DistanceM, trip.TimestampMs,
		trip.DayOfWeek, trip.HourOfDay, trip.UserSelected, trip.Quality)
	return err
}

// Recent loads the most recently archived trips, oldest first, so a restart
// can rehydrate the in-memory store.
func (a *Archiver) Recent(ctx context.Context, limit int) ([]CompletedTrip, error) {
	if limit <= 0 {
		limit = DefaultMaxHistory
	}
	rows, err := a.db.Query(ctx, `
		SELECT id, start_lat, start_lon, end_lat, end_lon, route_points,
		       avg_speed_kph, congestion, incidents, time_taken_ms, distance_m,
		       recorded_at_ms, day_of_week, hour_of_day, user_selected, quality
		FROM trip_history
		ORDER BY recorded_at_ms DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []CompletedTrip
	for rows.Next() {
		var trip CompletedTrip
		var points, incidents []byte
		if err := rows.Scan(&trip.ID, &trip.StartLat, &trip.StartLon, &trip.EndLat, &trip.EndLon, &points,
			&trip.Traffic.AverageSpeedKph, &trip.Traffic.Congestion, &incidents,
			&trip.TimeTakenMs, &trip.DistanceM, &trip.TimestampMs,
			&trip.DayOfWeek, &trip.HourOfDay, &trip.UserSelected, &trip.Quality); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(points, &trip.RoutePoints); err != nil {
			return nil, err
		}
		if len(incidents) > 0 {
			if err := json.Unmarshal(incidents, &trip.Traffic.Incidents); err != nil {
				return nil, err
			}
		}
		trips = append(trips, trip)
	}

	// reverse into chronological order
	for i, j := 0, len(trips)-1; i < j; i, j = i+1, j-1 {
		trips[i], trips[j] = trips[j], trips[i]
	}
	return trips, nil
}
