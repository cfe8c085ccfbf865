package hazard

import (
	"context"

	"github.com/ghadirb/PersianAINavigation/internal/db"

	"github.com/google/uuid"
)

// Store persists the hazard catalogue in Postgres.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, input Record) (Record, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO hazards (id, location, kind, speed_limit_kph, direction_deg, verified)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET location=EXCLUDED.location, kind=EXCLUDED.kind,
		    speed_limit_kph=EXCLUDED.speed_limit_kph,
		    direction_deg=EXCLUDED.direction_deg, verified=EXCLUDED.verified
		RETURNING created_at
	`, input.ID, input.Lon, input.Lat, input.Kind, input.SpeedLimitKph, input.DirectionDeg, input.Verified)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Record{}, err
	}
	return input, nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, ST_Y(location::geometry), ST_X(location::geometry), kind,
		       speed_limit_kph, direction_deg, verified, created_at
		FROM hazards WHERE id=$1
	`, id)
	var r Record
	if err := row.Scan(&r.ID, &r.Lat, &r.Lon, &r.Kind, &r.SpeedLimitKph, &r.DirectionDeg, &r.Verified, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ST_Y(location::geometry), ST_X(location::geometry), kind,
		       speed_limit_kph, direction_deg, verified, created_at
		FROM hazards
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Lat, &r.Lon, &r.Kind, &r.SpeedLimitKph, &r.DirectionDeg, &r.Verified, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *Store) Search(ctx context.Context, lat, lon, radiusM float64) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ST_Y(location::geometry), ST_X(location::geometry), kind,
		       speed_limit_kph, direction_deg, verified, created_at
		FROM hazards
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography
	`, lon, lat, radiusM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Lat, &r.Lon, &r.Kind, &r.SpeedLimitKph, &r.DirectionDeg, &r.Verified, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM hazards WHERE id=$1`, id)
	return err
}

// Seed inserts the given records, updating existing ids in place.
func (s *Store) Seed(ctx context.Context, records []Record) (int, error) {
	count := 0
	for _, r := range records {
		if _, err := s.Create(ctx, r); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
