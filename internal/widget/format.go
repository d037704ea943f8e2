package widget

import (
	"math"
	"regexp"
	"strconv"
)

var feelsLikePattern = regexp.MustCompile(`Feels like (\d+)°C`)

// CelsiusToFahrenheit converts without rounding.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Round rounds half up towards positive infinity, so -2.5 becomes -2.
func Round(v float64) int {
	return int(roundHalfUp(v))
}

func roundHalfUp(v float64) float64 {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	if f == 0 {
		return 0
	}
	return f
}

// formatWhole prints a rounded value without an exponent, however many digits.
func formatWhole(v float64) string {
	return strconv.FormatFloat(roundHalfUp(v), 'f', 0, 64)
}

// FormatTemperature renders the temperature in the selected unit, or "" when
// no weather data is shown.
func FormatTemperature(s DisplayState) string {
	if !s.HasWeatherData() {
		return ""
	}
	c := s.Snapshot.Temperature
	if s.Unit == Fahrenheit {
		return formatWhole(CelsiusToFahrenheit(c)) + "°F"
	}
	return formatWhole(c) + "°C"
}

// FormatCity returns the snapshot's city, or "" when no weather data is shown.
func FormatCity(s DisplayState) string {
	if !s.HasWeatherData() {
		return ""
	}
	return s.Snapshot.City
}

// FormatDescription returns the snapshot description. In Fahrenheit mode a
// "Feels like N°C" phrase is converted and returned on its own: the rest of the
// description is dropped. Anything without that exact phrase, including negative
// values, is returned verbatim.
func FormatDescription(s DisplayState) string {
	if !s.HasWeatherData() || s.Snapshot.Description == "" {
		return ""
	}
	desc := s.Snapshot.Description
	if s.Unit != Fahrenheit {
		return desc
	}
	m := feelsLikePattern.FindStringSubmatch(desc)
	if m == nil {
		return desc
	}
	c, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return desc
	}
	return "Feels like " + formatWhole(CelsiusToFahrenheit(c)) + "°F"
}

// View is the rendered form of a card.
type View struct {
	RecordID       string `json:"recordId"`
	Loading        bool   `json:"loading"`
	HasError       bool   `json:"hasError"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	Unit           Unit   `json:"unit"`
	Fahrenheit     bool   `json:"fahrenheit"`
	HasWeatherData bool   `json:"hasWeatherData"`
	Temperature    string `json:"temperature"`
	City           string `json:"city"`
	Description    string `json:"description"`
}

// Render derives the view of a state.
func Render(recordID string, s DisplayState) View {
	return View{
		RecordID:       recordID,
		Loading:        s.Loading,
		HasError:       s.HasError,
		ErrorMessage:   s.ErrorMessage,
		Unit:           s.Unit,
		Fahrenheit:     s.Unit == Fahrenheit,
		HasWeatherData: s.HasWeatherData(),
		Temperature:    FormatTemperature(s),
		City:           FormatCity(s),
		Description:    FormatDescription(s),
	}
}
