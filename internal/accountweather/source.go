package accountweather

import (
	"context"

	"github.com/i474232898/account-weather/internal/widget"
)

// Source exposes the service as a widget data source in the same process.
type Source struct {
	Service *Service
}

func (s Source) Fetch(ctx context.Context, recordID string, bypassCache bool) (widget.Snapshot, error) {
	rep, err := s.Service.GetWeatherForAccount(ctx, recordID, Options{BypassCache: bypassCache})
	if err != nil {
		return widget.Snapshot{}, err
	}
	return rep.Snapshot(), nil
}

// Snapshot converts the report to the widget's snapshot type.
func (r Report) Snapshot() widget.Snapshot {
	return widget.Snapshot{
		Success:      r.Success,
		Temperature:  r.Temperature,
		City:         r.City,
		Description:  r.Description,
		ErrorMessage: r.ErrorMessage,
	}
}

var _ widget.DataSource = Source{}
