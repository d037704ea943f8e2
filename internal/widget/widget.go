package widget

import (
	"context"
	"errors"
	"sync"
)

const refreshFailedMessage = "Failed to refresh weather data"

// ErrSuperseded is returned by Refresh when a newer load or refresh started
// while it was in flight; its outcome was discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// DataSource fetches the snapshot for a record. A returned error is a
// transport failure; business failures come back as a Snapshot with
// Success=false.
type DataSource interface {
	Fetch(ctx context.Context, recordID string, bypassCache bool) (Snapshot, error)
}

// DataSourceFunc adapts a function to DataSource.
type DataSourceFunc func(ctx context.Context, recordID string, bypassCache bool) (Snapshot, error)

func (f DataSourceFunc) Fetch(ctx context.Context, recordID string, bypassCache bool) (Snapshot, error) {
	return f(ctx, recordID, bypassCache)
}

// Widget is one mounted weather card bound to a record id. Its methods may be
// called from several goroutines; state transitions are serialised.
type Widget struct {
	recordID string
	source   DataSource
	notifier Notifier

	mu    sync.Mutex
	state DisplayState
	// gen identifies the newest load or refresh; older completions are dropped.
	gen uint64
}

// New creates a loading widget. A nil notifier discards toasts.
func New(recordID string, source DataSource, notifier Notifier) *Widget {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Widget{
		recordID: recordID,
		source:   source,
		notifier: notifier,
		state:    NewDisplayState(),
	}
}

func (w *Widget) RecordID() string {
	return w.recordID
}

// State returns a copy of the current display state.
func (w *Widget) State() DisplayState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	if s.Snapshot != nil {
		snap := *s.Snapshot
		s.Snapshot = &snap
	}
	return s
}

// View renders the current state.
func (w *Widget) View() View {
	return Render(w.recordID, w.State())
}

// Apply folds a pushed result into the state.
func (w *Widget) Apply(r Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Apply(w.state, r)
}

// Load performs the subscription fetch (cache allowed) and applies its outcome.
// A transport error becomes the error arm of the result.
func (w *Widget) Load(ctx context.Context) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.state.Loading = true
	w.mu.Unlock()

	snap, err := w.source.Fetch(ctx, w.recordID, false)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	if err != nil {
		w.state = Apply(w.state, Failed(err.Error()))
		return
	}
	w.state = Apply(w.state, Ok(snap))
}

// Refresh re-fetches bypassing the cache. On completion the result goes through
// the subscription handler and a success toast is emitted; on failure the card
// shows a generic error and one error toast is emitted. If a newer Load or
// Refresh began in the meantime the outcome is dropped and ErrSuperseded returned.
func (w *Widget) Refresh(ctx context.Context) error {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.state.Loading = true
	w.state.HasError = false
	w.state.ErrorMessage = ""
	w.mu.Unlock()

	snap, err := w.source.Fetch(ctx, w.recordID, true)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		w.state.HasError = true
		w.state.ErrorMessage = refreshFailedMessage
		w.state.Snapshot = nil
		w.state.Loading = false
		w.mu.Unlock()
		w.notifier.Notify(ctx, Notification{Title: "Error", Message: refreshFailedMessage, Severity: SeverityError})
		return err
	}
	w.state = Apply(w.state, Ok(snap))
	w.mu.Unlock()

	w.notifier.Notify(ctx, Notification{Title: "Success", Message: "Weather data refreshed", Severity: SeveritySuccess})
	return nil
}

// SetFahrenheit is the unit toggle handler. It never triggers a fetch.
func (w *Widget) SetFahrenheit(checked bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if checked {
		w.state.Unit = Fahrenheit
	} else {
		w.state.Unit = Celsius
	}
}
