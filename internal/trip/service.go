package trip

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ghadirb/PersianAINavigation/internal/hazard"
	"github.com/ghadirb/PersianAINavigation/internal/history"
	"github.com/ghadirb/PersianAINavigation/internal/route"
	"github.com/ghadirb/PersianAINavigation/internal/stream"
)

const routeAlternatives = 3

// Service owns the tracker and connects it to the hazard source, the trip
// history, the alert stream and the route provider.
type Service struct {
	tracker  *Tracker
	loader   hazard.Loader
	store    *history.Store
	archiver *history.Archiver
	hub      *stream.Hub
	provider route.Provider

	wg sync.WaitGroup
}

func NewService(cfg Config, loader hazard.Loader, store *history.Store, archiver *history.Archiver, hub *stream.Hub, provider route.Provider) *Service {
	s := &Service{
		loader:   loader,
		store:    store,
		archiver: archiver,
		hub:      hub,
		provider: provider,
	}
	s.tracker = NewTracker(cfg, s.publish)
	return s
}

// publish pushes one alert to stream subscribers of the trip.
func (s *Service) publish(ev AlertEvent) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("alert marshal error: %v", err)
		return
	}
	s.hub.Broadcast(ev.TripID, payload)
}

// Start activates a trip against a freshly built hazard index and seeds the
// planned route in the background. A route provider failure never blocks or
// fails the start.
func (s *Service) Start(ctx context.Context, originLat, originLon, destLat, destLon float64) (Trip, error) {
	index := hazard.BuildIndex(ctx, s.loader)
	trip, err := s.tracker.Start(originLat, originLon, destLat, destLon, index)
	if err != nil {
		return Trip{}, err
	}

	if s.provider != nil {
		go s.seedPlannedRoute(trip)
	}
	return trip, nil
}

func (s *Service) seedPlannedRoute(trip Trip) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	routes, err := s.provider.GetRoutes(ctx, trip.OriginLat, trip.OriginLon, trip.DestLat, trip.DestLon, routeAlternatives)
	if err != nil {
		log.Printf("route seed error for trip %s: %v", trip.ID, err)
		return
	}
	if len(routes) == 0 || len(routes[0].Points) == 0 {
		return
	}

	points := make([][2]float64, len(routes[0].Points))
	for i, p := range routes[0].Points {
		points[i] = [2]float64{p.Lat, p.Lon}
	}
	s.tracker.SetPlannedRoute(points)
}

// SetPlannedRoute installs route geometry supplied by the client instead of
// the route provider.
func (s *Service) SetPlannedRoute(points [][2]float64) {
	s.tracker.SetPlannedRoute(points)
}

// Ingest processes one fix. When the fix completes the trip by arrival the
// record moves to the in-memory history before the call returns; the durable
// archive write detaches so ingestion never waits on the database.
func (s *Service) Ingest(fix PositionFix) []AlertEvent {
	events := s.tracker.HandleFix(fix)
	if completed, ok := s.tracker.TakeCompleted(); ok {
		s.record(*completed)
	}
	return events
}

// Stop ends the trip explicitly and records it when a usable trace exists.
func (s *Service) Stop() (*history.CompletedTrip, bool) {
	completed, stopped := s.tracker.Stop()
	if !stopped {
		return nil, false
	}
	if completed != nil {
		s.record(*completed)
	}
	return completed, true
}

func (s *Service) record(completed history.CompletedTrip) {
	s.store.Add(completed)
	if s.archiver == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.archiver.Save(ctx, completed); err != nil {
			log.Printf("trip archive error for %s: %v", completed.ID, err)
		}
	}()
}

func (s *Service) Current() Trip {
	return s.tracker.Current()
}

func (s *Service) SetSpeedLimit(kph int) {
	s.tracker.SetSpeedLimit(kph)
}
