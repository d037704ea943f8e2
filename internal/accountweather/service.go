// Package accountweather resolves an account record to its billing location and
// returns the current weather in the shape the widget consumes.
package accountweather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/account-weather/internal/accounts"
	"github.com/i474232898/account-weather/internal/store"
	"github.com/i474232898/account-weather/internal/weather"
	"github.com/i474232898/account-weather/internal/widget"
)

const (
	msgMissingID     = "Account id is required"
	msgNotFound      = "Account not found"
	msgNoBillingCity = "Account has no billing city"
)

// Report is the result of GetWeatherForAccount. A Report with Success=false is
// a business failure carrying a user-facing ErrorMessage; transport failures are
// returned as errors instead.
type Report struct {
	Success      bool       `json:"success"`
	Temperature  float64    `json:"temperature"`
	City         string     `json:"city"`
	Description  string     `json:"description"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	FetchedAt    *time.Time `json:"fetchedAt,omitempty"`
}

// Options tune a single call.
type Options struct {
	// BypassCache forces a provider round trip even when a fresh snapshot exists.
	BypassCache bool
}

// WeatherFetcher is the subset of weather.Service used here.
type WeatherFetcher interface {
	Refresh(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error)
	GetLatest(loc weather.Location) (weather.WeatherSnapshot, error)
}

// Service answers account weather lookups.
type Service struct {
	accounts accounts.Repository
	weather  WeatherFetcher
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService creates a Service. A cacheTTL <= 0 disables the cache.
func NewService(repo accounts.Repository, fetcher WeatherFetcher, cacheTTL time.Duration) *Service {
	return &Service{
		accounts: repo,
		weather:  fetcher,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// GetWeatherForAccount looks up the account's billing city and returns its weather.
func (s *Service) GetWeatherForAccount(ctx context.Context, accountID string, opts Options) (Report, error) {
	ctx, span := otel.Tracer("accountweather").Start(ctx, "accountweather: get-weather-for-account")
	defer span.End()

	accountID = strings.TrimSpace(accountID)
	span.SetAttributes(
		attribute.String("account.id", accountID),
		attribute.Bool("cache.bypass", opts.BypassCache),
	)

	if accountID == "" {
		return failure(msgMissingID), nil
	}

	acct, err := s.accounts.Get(ctx, accountID)
	if errors.Is(err, accounts.ErrNotFound) {
		span.SetStatus(codes.Error, "account not found")
		return failure(msgNotFound), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "account lookup failed")
		return Report{}, fmt.Errorf("load account %s: %w", accountID, err)
	}

	if !acct.HasBillingCity() {
		span.SetStatus(codes.Error, "no billing city")
		return failure(msgNoBillingCity), nil
	}

	loc := acct.Location()
	span.SetAttributes(attribute.String("location", loc.Key()))

	snap, cached, err := s.snapshot(ctx, loc, opts)
	span.SetAttributes(attribute.Bool("cache.hit", cached))
	switch {
	case errors.Is(err, weather.ErrNoReadings), errors.Is(err, weather.ErrNoProviders):
		log.Printf("INFO: weather unavailable for account %s (%s): %v", accountID, loc.Key(), err)
		span.SetStatus(codes.Error, "weather unavailable")
		return failure(fmt.Sprintf("Weather data is not available for %s", loc.City)), nil
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "weather fetch failed")
		return Report{}, fmt.Errorf("fetch weather for %s: %w", loc.Key(), err)
	}

	span.SetStatus(codes.Ok, "")
	fetchedAt := snap.FetchedAt
	return Report{
		Success:     true,
		Temperature: snap.Temperature,
		City:        loc.City,
		Description: Describe(snap),
		FetchedAt:   &fetchedAt,
	}, nil
}

// snapshot returns a cached snapshot when it is fresh enough, otherwise fetches.
func (s *Service) snapshot(ctx context.Context, loc weather.Location, opts Options) (weather.WeatherSnapshot, bool, error) {
	if !opts.BypassCache && s.cacheTTL > 0 {
		snap, err := s.weather.GetLatest(loc)
		switch {
		case err == nil && s.now().Sub(snap.FetchedAt) < s.cacheTTL:
			return snap, true, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return weather.WeatherSnapshot{}, false, err
		}
	}

	snap, err := s.weather.Refresh(ctx, loc)
	return snap, false, err
}

// Describe renders the free-text description: "Feels like N°C, <condition>".
func Describe(snap weather.WeatherSnapshot) string {
	feels := widget.Round(snap.FeelsLike)
	return fmt.Sprintf("Feels like %d°C, %s", feels, snap.Condition.Label())
}

func failure(msg string) Report {
	return Report{Success: false, ErrorMessage: msg}
}
