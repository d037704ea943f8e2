// Package widget holds the presentation state of the account weather card:
// the reducer that reacts to fetched results, the display formatters and the
// refresh and unit-toggle handlers.
package widget

// Unit is the temperature unit selected by the card's toggle.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// Snapshot is one fetched weather result for a record. Temperature is Celsius.
type Snapshot struct {
	Success      bool    `json:"success"`
	Temperature  float64 `json:"temperature"`
	City         string  `json:"city"`
	Description  string  `json:"description"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// ErrorInfo is the error arm of a Result. Message is the envelope's body.message.
type ErrorInfo struct {
	Message string `json:"message"`
}

// Result is what the data source pushes: exactly one of Snapshot or Err is set.
type Result struct {
	Snapshot *Snapshot
	Err      *ErrorInfo
}

// Ok wraps a snapshot.
func Ok(s Snapshot) Result {
	return Result{Snapshot: &s}
}

// Failed wraps a transport error message.
func Failed(message string) Result {
	return Result{Err: &ErrorInfo{Message: message}}
}

// DisplayState is everything the card renders from.
type DisplayState struct {
	Loading      bool
	HasError     bool
	ErrorMessage string
	Unit         Unit
	Snapshot     *Snapshot
}

// NewDisplayState is the state of a freshly mounted card: loading, Celsius.
func NewDisplayState() DisplayState {
	return DisplayState{Loading: true, Unit: Celsius}
}

// HasWeatherData reports whether a successful snapshot is shown. A loading or
// errored card never shows data, even while a previous snapshot is still held.
func (s DisplayState) HasWeatherData() bool {
	return s.Snapshot != nil && s.Snapshot.Success && !s.Loading && !s.HasError
}

// Apply is the subscription handler: it folds a pushed result into the state.
// Failures are terminal until the next load or refresh.
func Apply(s DisplayState, r Result) DisplayState {
	s.Loading = false

	switch {
	case r.Snapshot != nil && r.Snapshot.Success:
		snap := *r.Snapshot
		s.Snapshot = &snap
		s.HasError = false
		s.ErrorMessage = ""
	case r.Snapshot != nil:
		s.HasError = true
		s.ErrorMessage = r.Snapshot.ErrorMessage
		s.Snapshot = nil
	case r.Err != nil:
		s.HasError = true
		s.ErrorMessage = "Failed to load weather data: " + r.Err.Message
		s.Snapshot = nil
	}
	return s
}
