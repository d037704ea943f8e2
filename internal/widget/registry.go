package widget

import (
	"context"
	"sort"
	"sync"
)

// Registry keeps one mounted widget per record id.
type Registry struct {
	source      DataSource
	notifierFor func(recordID string) Notifier

	mu      sync.Mutex
	widgets map[string]*Widget
}

// NewRegistry creates a registry. notifierFor may be nil.
func NewRegistry(source DataSource, notifierFor func(recordID string) Notifier) *Registry {
	return &Registry{
		source:      source,
		notifierFor: notifierFor,
		widgets:     make(map[string]*Widget),
	}
}

// Mount returns the widget for recordID, creating and loading it on first use.
func (r *Registry) Mount(ctx context.Context, recordID string) *Widget {
	r.mu.Lock()
	w, ok := r.widgets[recordID]
	if !ok {
		var n Notifier
		if r.notifierFor != nil {
			n = r.notifierFor(recordID)
		}
		w = New(recordID, r.source, n)
		r.widgets[recordID] = w
	}
	r.mu.Unlock()

	if !ok {
		w.Load(ctx)
	}
	return w
}

// Get returns a mounted widget without creating one.
func (r *Registry) Get(recordID string) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[recordID]
	return w, ok
}

// Unmount drops the widget and its state. It reports whether one was mounted.
func (r *Registry) Unmount(recordID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.widgets[recordID]
	delete(r.widgets, recordID)
	return ok
}

// RecordIDs lists mounted record ids in order.
func (r *Registry) RecordIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.widgets))
	for id := range r.widgets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
