package widget

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type call struct {
	recordID string
	bypass   bool
}

// fakeSource answers each call with the next scripted response.
type fakeSource struct {
	mu    sync.Mutex
	calls []call
	next  func(n int, bypass bool) (Snapshot, error)
}

func (f *fakeSource) Fetch(_ context.Context, recordID string, bypass bool) (Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{recordID: recordID, bypass: bypass})
	n := len(f.calls)
	f.mu.Unlock()
	return f.next(n, bypass)
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type toasts struct {
	mu   sync.Mutex
	list []Notification
}

func (t *toasts) Notify(_ context.Context, n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.list = append(t.list, n)
}

func (t *toasts) all() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Notification(nil), t.list...)
}

func TestLoadUsesCacheAndAppliesSnapshot(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) { return sunny(), nil }}
	w := New("001", src, nil)

	w.Load(context.Background())

	require.Equal(t, []call{{recordID: "001", bypass: false}}, src.calls)
	v := w.View()
	require.True(t, v.HasWeatherData)
	require.Equal(t, "20°C", v.Temperature)
	require.Equal(t, "Lisbon", v.City)
}

func TestLoadTransportErrorIsWrapped(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) { return Snapshot{}, errors.New("dial tcp: refused") }}
	w := New("001", src, nil)

	w.Load(context.Background())

	s := w.State()
	require.False(t, s.Loading)
	require.True(t, s.HasError)
	require.Equal(t, "Failed to load weather data: dial tcp: refused", s.ErrorMessage)
}

func TestLoadUnsuccessfulData(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) {
		return Snapshot{Success: false, ErrorMessage: "Account not found"}, nil
	}}
	w := New("001", src, nil)
	w.Load(context.Background())

	v := w.View()
	require.True(t, v.HasError)
	require.Equal(t, "Account not found", v.ErrorMessage)
	require.Empty(t, v.Temperature)
	require.Empty(t, v.City)
	require.Empty(t, v.Description)
}

func TestRefreshSuccess(t *testing.T) {
	src := &fakeSource{next: func(n int, _ bool) (Snapshot, error) {
		snap := sunny()
		snap.Temperature = float64(10 * n)
		return snap, nil
	}}
	sink := &toasts{}
	w := New("001", src, sink)
	w.Load(context.Background())

	require.NoError(t, w.Refresh(context.Background()))

	require.True(t, src.calls[1].bypass, "refresh must bypass the cache")
	require.Equal(t, "20°C", w.View().Temperature)
	require.Equal(t, []Notification{{Title: "Success", Message: "Weather data refreshed", Severity: SeveritySuccess}}, sink.all())
}

func TestRefreshFailure(t *testing.T) {
	src := &fakeSource{next: func(n int, _ bool) (Snapshot, error) {
		if n == 1 {
			return sunny(), nil
		}
		return Snapshot{}, errors.New("upstream timeout")
	}}
	sink := &toasts{}
	w := New("001", src, sink)
	w.Load(context.Background())

	err := w.Refresh(context.Background())
	require.EqualError(t, err, "upstream timeout")

	s := w.State()
	require.True(t, s.HasError)
	require.False(t, s.Loading)
	require.Equal(t, "Failed to refresh weather data", s.ErrorMessage)
	require.Nil(t, s.Snapshot)
	require.Equal(t, []Notification{{Title: "Error", Message: "Failed to refresh weather data", Severity: SeverityError}}, sink.all())

	for _, fahrenheit := range []bool{false, true} {
		w.SetFahrenheit(fahrenheit)
		v := w.View()
		require.True(t, v.HasError)
		require.False(t, v.HasWeatherData)
		require.Empty(t, v.Temperature)
		require.Empty(t, v.City)
		require.Empty(t, v.Description)
	}
}

func TestErroredStateShowsNoWeather(t *testing.T) {
	snap := sunny()
	s := DisplayState{HasError: true, ErrorMessage: "boom", Unit: Fahrenheit, Snapshot: &snap}
	require.False(t, s.HasWeatherData())
	require.Empty(t, FormatTemperature(s))
	require.Empty(t, FormatCity(s))
	require.Empty(t, FormatDescription(s))
}

func TestRefreshWithBusinessFailureStillReportsRefreshed(t *testing.T) {
	src := &fakeSource{next: func(n int, _ bool) (Snapshot, error) {
		if n == 1 {
			return sunny(), nil
		}
		return Snapshot{Success: false, ErrorMessage: "Weather data is not available for Lisbon"}, nil
	}}
	sink := &toasts{}
	w := New("001", src, sink)
	w.Load(context.Background())

	require.NoError(t, w.Refresh(context.Background()))
	require.Equal(t, "Weather data is not available for Lisbon", w.State().ErrorMessage)
	require.Len(t, sink.all(), 1)
	require.Equal(t, SeveritySuccess, sink.all()[0].Severity)
}

func TestRefreshClearsErrorWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	src := &fakeSource{next: func(n int, _ bool) (Snapshot, error) {
		if n == 1 {
			return Snapshot{}, errors.New("down")
		}
		close(started)
		<-release
		return sunny(), nil
	}}
	w := New("001", src, nil)
	w.Load(context.Background())
	require.True(t, w.State().HasError)

	done := make(chan error, 1)
	go func() { done <- w.Refresh(context.Background()) }()
	<-started

	s := w.State()
	require.True(t, s.Loading)
	require.False(t, s.HasError)
	require.Empty(t, s.ErrorMessage)

	close(release)
	require.NoError(t, <-done)
	require.True(t, w.View().HasWeatherData)
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	src := &fakeSource{next: func(n int, _ bool) (Snapshot, error) {
		switch n {
		case 1:
			return sunny(), nil
		case 2:
			close(started)
			<-release
			return Snapshot{}, errors.New("late failure")
		default:
			snap := sunny()
			snap.City = "Porto"
			return snap, nil
		}
	}}
	sink := &toasts{}
	w := New("001", src, sink)
	w.Load(context.Background())

	first := make(chan error, 1)
	go func() { first <- w.Refresh(context.Background()) }()
	<-started

	require.NoError(t, w.Refresh(context.Background()))
	close(release)
	require.ErrorIs(t, <-first, ErrSuperseded)

	v := w.View()
	require.False(t, v.HasError)
	require.Equal(t, "Porto", v.City)
	require.Len(t, sink.all(), 1, "stale completion must not notify")
}

func TestToggleIsLocal(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) { return sunny(), nil }}
	w := New("001", src, nil)
	w.Load(context.Background())

	w.SetFahrenheit(true)
	require.Equal(t, "68°F", w.View().Temperature)
	require.Equal(t, "Feels like 59°F", w.View().Description)

	w.SetFahrenheit(false)
	require.Equal(t, "20°C", w.View().Temperature)
	require.Equal(t, "Feels like 15°C, sunny", w.View().Description)

	require.Equal(t, 1, src.callCount(), "toggle must not fetch")
}

func TestToggleAfterErrorShowsNothing(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) { return Snapshot{}, errors.New("down") }}
	w := New("001", src, nil)
	w.Load(context.Background())

	w.SetFahrenheit(true)
	require.Empty(t, w.View().Temperature)
	w.SetFahrenheit(false)
	require.Empty(t, w.View().Temperature)
}

func TestStateReturnsCopy(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) { return sunny(), nil }}
	w := New("001", src, nil)
	w.Load(context.Background())

	s := w.State()
	s.Snapshot.City = "Changed"
	require.Equal(t, "Lisbon", w.View().City)
}

func TestRegistryMountsOnce(t *testing.T) {
	src := &fakeSource{next: func(int, bool) (Snapshot, error) { return sunny(), nil }}
	var notifiersFor []string
	reg := NewRegistry(src, func(id string) Notifier {
		notifiersFor = append(notifiersFor, id)
		return nil
	})

	a := reg.Mount(context.Background(), "001")
	b := reg.Mount(context.Background(), "001")
	require.Same(t, a, b)
	require.Equal(t, 1, src.callCount())
	require.Equal(t, []string{"001"}, notifiersFor)

	reg.Mount(context.Background(), "002")
	require.Equal(t, []string{"001", "002"}, reg.RecordIDs())

	got, ok := reg.Get("002")
	require.True(t, ok)
	require.Equal(t, "002", got.RecordID())

	require.True(t, reg.Unmount("001"))
	require.False(t, reg.Unmount("001"))
	_, ok = reg.Get("001")
	require.False(t, ok)

	// Remounting starts from a fresh state.
	reg.Mount(context.Background(), "001")
	require.Equal(t, 3, src.callCount())
}
