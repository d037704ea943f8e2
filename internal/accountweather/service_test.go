package accountweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/account-weather/internal/accounts"
	"github.com/i474232898/account-weather/internal/store"
	"github.com/i474232898/account-weather/internal/weather"
)

type fakeFetcher struct {
	latest    map[string]weather.WeatherSnapshot
	refreshed int
	snap      weather.WeatherSnapshot
	err       error
}

func (f *fakeFetcher) Refresh(_ context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	f.refreshed++
	if f.err != nil {
		return weather.WeatherSnapshot{}, f.err
	}
	s := f.snap
	s.Location = loc
	if f.latest == nil {
		f.latest = make(map[string]weather.WeatherSnapshot)
	}
	f.latest[loc.Key()] = s
	return s, nil
}

func (f *fakeFetcher) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s, ok := f.latest[loc.Key()]
	if !ok {
		return weather.WeatherSnapshot{}, store.ErrNotFound
	}
	return s, nil
}

type failingRepo struct{}

func (failingRepo) Get(context.Context, string) (accounts.Account, error) {
	return accounts.Account{}, errors.New("database is locked")
}

func (failingRepo) Upsert(_ context.Context, a accounts.Account) (accounts.Account, error) {
	return a, nil
}

func (failingRepo) List(context.Context) ([]accounts.Account, error) {
	return nil, nil
}

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, f *fakeFetcher) *Service {
	t.Helper()
	repo := accounts.NewMemoryRepo(
		accounts.Account{ID: "001", Name: "Acme", BillingCity: "Lisbon", BillingCountry: "PT"},
		accounts.Account{ID: "002", Name: "No Address"},
	)
	svc := NewService(repo, f, 10*time.Minute)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetWeatherForAccountSuccess(t *testing.T) {
	f := &fakeFetcher{snap: weather.WeatherSnapshot{Temperature: 21.4, FeelsLike: 14.6, Condition: weather.ConditionClear, FetchedAt: now}}
	svc := newTestService(t, f)

	rep, err := svc.GetWeatherForAccount(context.Background(), "001", Options{})
	require.NoError(t, err)
	require.Equal(t, Report{
		Success:     true,
		Temperature: 21.4,
		City:        "Lisbon",
		Description: "Feels like 15°C, clear skies",
		FetchedAt:   &now,
	}, rep)
	require.Equal(t, 1, f.refreshed)
}

func TestGetWeatherForAccountUsesCache(t *testing.T) {
	f := &fakeFetcher{snap: weather.WeatherSnapshot{Temperature: 10, FetchedAt: now.Add(-5 * time.Minute)}}
	svc := newTestService(t, f)

	_, err := svc.GetWeatherForAccount(context.Background(), "001", Options{})
	require.NoError(t, err)
	_, err = svc.GetWeatherForAccount(context.Background(), "001", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, f.refreshed, "second call is served from the cache")

	_, err = svc.GetWeatherForAccount(context.Background(), "001", Options{BypassCache: true})
	require.NoError(t, err)
	require.Equal(t, 2, f.refreshed, "bypass always fetches")
}

func TestGetWeatherForAccountExpiredCache(t *testing.T) {
	f := &fakeFetcher{snap: weather.WeatherSnapshot{Temperature: 10, FetchedAt: now.Add(-time.Hour)}}
	svc := newTestService(t, f)

	_, err := svc.GetWeatherForAccount(context.Background(), "001", Options{})
	require.NoError(t, err)
	_, err = svc.GetWeatherForAccount(context.Background(), "001", Options{})
	require.NoError(t, err)
	require.Equal(t, 2, f.refreshed)
}

func TestGetWeatherForAccountBusinessFailures(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		fetcher *fakeFetcher
		want    string
	}{
		{"empty id", "  ", &fakeFetcher{}, "Account id is required"},
		{"unknown account", "999", &fakeFetcher{}, "Account not found"},
		{"no billing city", "002", &fakeFetcher{}, "Account has no billing city"},
		{
			"no provider readings", "001",
			&fakeFetcher{err: fmt.Errorf("%w for lisbon:pt", weather.ErrNoReadings)},
			"Weather data is not available for Lisbon",
		},
		{"no providers", "001", &fakeFetcher{err: weather.ErrNoProviders}, "Weather data is not available for Lisbon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.fetcher)
			rep, err := svc.GetWeatherForAccount(context.Background(), tt.id, Options{})
			require.NoError(t, err)
			require.False(t, rep.Success)
			require.Equal(t, tt.want, rep.ErrorMessage)
			require.Empty(t, rep.City)
		})
	}
}

func TestGetWeatherForAccountTransportFailures(t *testing.T) {
	t.Run("fetch canceled", func(t *testing.T) {
		svc := newTestService(t, &fakeFetcher{err: context.DeadlineExceeded})
		_, err := svc.GetWeatherForAccount(context.Background(), "001", Options{BypassCache: true})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc := NewService(failingRepo{}, &fakeFetcher{}, time.Minute)
		_, err := svc.GetWeatherForAccount(context.Background(), "001", Options{})
		require.ErrorContains(t, err, "database is locked")
	})
}

func TestDescribe(t *testing.T) {
	require.Equal(t, "Feels like 15°C, rain", Describe(weather.WeatherSnapshot{FeelsLike: 14.5, Condition: weather.ConditionRain}))
	require.Equal(t, "Feels like -3°C, snow", Describe(weather.WeatherSnapshot{FeelsLike: -3.2, Condition: weather.ConditionSnow}))
	require.Equal(t, "Feels like 0°C, conditions unknown", Describe(weather.WeatherSnapshot{}))
	require.Equal(t, "Feels like 0°C, rain", Describe(weather.WeatherSnapshot{FeelsLike: 0.49999999999999994, Condition: weather.ConditionRain}))
	require.Equal(t, "Feels like 0°C, rain", Describe(weather.WeatherSnapshot{FeelsLike: -0.5, Condition: weather.ConditionRain}))
}

func TestReportJSONOmitsFetchedAtOnFailure(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{})
	rep, err := svc.GetWeatherForAccount(context.Background(), "999", Options{})
	require.NoError(t, err)

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	require.JSONEq(t, `{"success":false,"temperature":0,"city":"","description":"","errorMessage":"Account not found"}`, string(raw))
}

func TestSourceAdaptsReport(t *testing.T) {
	f := &fakeFetcher{snap: weather.WeatherSnapshot{Temperature: 20, FeelsLike: 15, Condition: weather.ConditionClear, FetchedAt: now}}
	src := Source{Service: newTestService(t, f)}

	snap, err := src.Fetch(context.Background(), "001", true)
	require.NoError(t, err)
	require.True(t, snap.Success)
	require.Equal(t, "Lisbon", snap.City)
	require.Equal(t, "Feels like 15°C, clear skies", snap.Description)

	snap, err = src.Fetch(context.Background(), "999", false)
	require.NoError(t, err)
	require.False(t, snap.Success)
	require.Equal(t, "Account not found", snap.ErrorMessage)
}
