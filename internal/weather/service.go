package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	// ErrNoProviders is returned when the service was built without any provider.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoReadings is returned when every provider failed for a location.
	ErrNoReadings = errors.New("no successful provider readings")
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider) *Service {
	return &Service{
		store:     store,
		providers: providers,
	}
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot. When every provider fails
// the last good snapshot is left untouched and ErrNoReadings is returned.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	_, err := s.Refresh(ctx, loc)
	return err
}

// Refresh is FetchAndStore returning the snapshot it stored.
func (s *Service) Refresh(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return WeatherSnapshot{}, ErrNoProviders
	}

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return WeatherSnapshot{}, err
	}

	if len(readings) == 0 {
		log.Printf("no successful provider readings for %s; keeping last good snapshot if any", loc.Key())
		return WeatherSnapshot{}, fmt.Errorf("%w for %s", ErrNoReadings, loc.Key())
	}

	snapshot := AggregateReadings(loc, readings)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	snapshot.FetchedAt = time.Now().UTC()
	s.store.SaveSnapshot(loc, snapshot)
	return snapshot, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}
