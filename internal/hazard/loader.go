package hazard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"
)

// Loader produces the hazard catalogue for a session. Implementations wrap
// the configured external source (file, feed, database).
type Loader func(ctx context.Context) ([]Record, error)

// BuildIndex loads the catalogue through the given loader. A load failure
// yields an empty index, never an error; tracking proceeds without alerts.
func BuildIndex(ctx context.Context, load Loader) *Index {
	if load == nil {
		return NewIndex(nil)
	}
	records, err := load(ctx)
	if err != nil {
		log.Printf("hazard load failed, continuing with empty index: %v", err)
		return NewIndex(nil)
	}
	return NewIndex(records)
}

// FromFile reads a JSON array of records from disk.
func FromFile(path string) Loader {
	return func(_ context.Context) ([]Record, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
}

var feedClient = &http.Client{Timeout: 10 * time.Second}

// FromURL fetches a JSON array of records from a remote feed.
func FromURL(url string) Loader {
	return func(ctx context.Context) ([]Record, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := feedClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var records []Record
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}
}

// FromStore reads the catalogue from the database.
func FromStore(store *Store) Loader {
	return func(ctx context.Context) ([]Record, error) {
		return store.List(ctx)
	}
}

// Static wraps an in-memory record set, used for the embedded seed data
// and in tests.
func Static(records []Record) Loader {
	return func(_ context.Context) ([]Record, error) {
		return records, nil
	}
}
