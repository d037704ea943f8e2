package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	reading ProviderReading
	err     error
}

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) Fetch(context.Context, Location) (ProviderReading, error) {
	return p.reading, p.err
}

type mapStore struct {
	mu    sync.Mutex
	saved map[string][]WeatherSnapshot
}

func (s *mapStore) SaveSnapshot(loc Location, snap WeatherSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]WeatherSnapshot)
	}
	s.saved[loc.Key()] = append(s.saved[loc.Key()], snap)
}

func (s *mapStore) GetLatest(loc Location) (WeatherSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.saved[loc.Key()]
	if len(list) == 0 {
		return WeatherSnapshot{}, errors.New("not found")
	}
	return list[len(list)-1], nil
}

func (s *mapStore) GetRange(loc Location, _, _ time.Time) ([]WeatherSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[loc.Key()], nil
}

func TestRefreshPartialSuccess(t *testing.T) {
	st := &mapStore{}
	svc := NewService(st, []Provider{
		stubProvider{name: "ok", reading: ProviderReading{ProviderName: "ok", TemperatureC: 18, FeelsLikeC: 17, Condition: ConditionClear}},
		stubProvider{name: "broken", err: errors.New("503")},
	})
	loc := Location{City: "Lisbon", Country: "PT"}

	snap, err := svc.Refresh(context.Background(), loc)
	require.NoError(t, err)
	require.InDelta(t, 18, snap.Temperature, 1e-9)
	require.False(t, snap.FetchedAt.IsZero())

	latest, err := svc.GetLatest(loc)
	require.NoError(t, err)
	require.Equal(t, snap, latest)
}

func TestRefreshAllProvidersFail(t *testing.T) {
	st := &mapStore{}
	svc := NewService(st, []Provider{stubProvider{name: "broken", err: errors.New("boom")}})

	err := svc.FetchAndStore(context.Background(), Location{City: "Lisbon"})
	require.ErrorIs(t, err, ErrNoReadings)
	require.Empty(t, st.saved)
}

func TestRefreshWithoutProviders(t *testing.T) {
	svc := NewService(&mapStore{}, nil)
	_, err := svc.Refresh(context.Background(), Location{City: "Lisbon"})
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestRefreshCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(&mapStore{}, []Provider{stubProvider{name: "ok"}})
	_, err := svc.Refresh(ctx, Location{City: "Lisbon"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestConditionLabel(t *testing.T) {
	require.Equal(t, "clear skies", ConditionClear.Label())
	require.Equal(t, "conditions unknown", Condition("hail").Label())
}
