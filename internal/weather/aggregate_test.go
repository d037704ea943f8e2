package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateReadings(t *testing.T) {
	loc := Location{City: "Lisbon", Country: "PT"}
	t1 := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)

	snap := AggregateReadings(loc, []ProviderReading{
		{ProviderName: "a", Timestamp: t1, TemperatureC: 20, FeelsLikeC: 18, HumidityPct: 60, Condition: ConditionClear},
		{ProviderName: "b", Timestamp: t2, TemperatureC: 22, FeelsLikeC: 20, HumidityPct: 70, Condition: ConditionCloudy},
		{ProviderName: "c", Timestamp: t1, TemperatureC: 21, FeelsLikeC: 19, HumidityPct: 65, Condition: ConditionCloudy},
	})

	require.Equal(t, loc, snap.Location)
	require.Equal(t, t2, snap.Timestamp)
	require.InDelta(t, 21, snap.Temperature, 1e-9)
	require.InDelta(t, 19, snap.FeelsLike, 1e-9)
	require.InDelta(t, 65, snap.Humidity, 1e-9)
	require.Equal(t, ConditionCloudy, snap.Condition)
	require.Len(t, snap.Providers, 3)
}

func TestAggregateReadingsTieGoesToFirstReported(t *testing.T) {
	snap := AggregateReadings(Location{City: "X"}, []ProviderReading{
		{Condition: ConditionRain},
		{Condition: ConditionClear},
	})
	require.Equal(t, ConditionRain, snap.Condition)
}

func TestAggregateReadingsEmpty(t *testing.T) {
	snap := AggregateReadings(Location{City: "X"}, nil)
	require.Equal(t, ConditionUnknown, snap.Condition)
	require.False(t, snap.Timestamp.IsZero())
}

func TestLocationKeyNormalises(t *testing.T) {
	require.Equal(t, Location{City: " Lisbon", Country: "pt "}.Key(), Location{City: "lisbon", Country: "PT"}.Key())
}
