// Package notify provides sinks for the toasts emitted by weather widgets.
package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/account-weather/internal/widget"
)

// Entry is a recorded notification.
type Entry struct {
	ID       string          `json:"id"`
	RecordID string          `json:"recordId"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Severity widget.Severity `json:"severity"`
	At       time.Time       `json:"at"`
}

// Recorder keeps the most recent notifications per record id so that a client
// polling the HTTP API can show them.
type Recorder struct {
	mu      sync.Mutex
	max     int
	entries map[string][]Entry
}

// NewRecorder keeps at most limit entries per record (default 20).
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 20
	}
	return &Recorder{max: limit, entries: make(map[string][]Entry)}
}

// Sink returns a notifier that records under recordID.
func (r *Recorder) Sink(recordID string) widget.Notifier {
	return widget.NotifierFunc(func(_ context.Context, n widget.Notification) {
		r.add(recordID, n)
	})
}

func (r *Recorder) add(recordID string, n widget.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.entries[recordID], Entry{
		ID:       uuid.NewString(),
		RecordID: recordID,
		Title:    n.Title,
		Message:  n.Message,
		Severity: n.Severity,
		At:       time.Now().UTC(),
	})
	if len(list) > r.max {
		list = list[len(list)-r.max:]
	}
	r.entries[recordID] = list
}

// Recent returns the record's notifications, newest last.
func (r *Recorder) Recent(recordID string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries[recordID]))
	copy(out, r.entries[recordID])
	return out
}

// Forget drops the record's history.
func (r *Recorder) Forget(recordID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, recordID)
}

// LogSink writes notifications to the standard logger.
func LogSink(recordID string) widget.Notifier {
	return widget.NotifierFunc(func(_ context.Context, n widget.Notification) {
		if n.Severity == widget.SeverityError {
			log.Printf("ERROR: widget %s: %s: %s", recordID, n.Title, n.Message)
			return
		}
		log.Printf("INFO: widget %s: %s: %s", recordID, n.Title, n.Message)
	})
}

// Fanout delivers every notification to each sink in order.
func Fanout(sinks ...widget.Notifier) widget.Notifier {
	return widget.NotifierFunc(func(ctx context.Context, n widget.Notification) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(ctx, n)
			}
		}
	})
}
