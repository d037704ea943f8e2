// Package accounts stores the business records the weather widget is bound to.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/i474232898/account-weather/internal/weather"
)

// ErrNotFound is returned when no account exists for an id.
var ErrNotFound = errors.New("account not found")

// Account is a customer record with a billing address.
type Account struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BillingCity    string    `json:"billingCity"`
	BillingCountry string    `json:"billingCountry"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Location returns the billing location used to look up weather.
func (a Account) Location() weather.Location {
	return weather.Location{
		City:    strings.TrimSpace(a.BillingCity),
		Country: strings.TrimSpace(a.BillingCountry),
		Lat:     a.Latitude,
		Lon:     a.Longitude,
	}
}

// HasBillingCity reports whether the account can be resolved to a location.
func (a Account) HasBillingCity() bool {
	return strings.TrimSpace(a.BillingCity) != ""
}

// Repository is implemented by SQLRepo and MemoryRepo.
type Repository interface {
	Get(ctx context.Context, id string) (Account, error)
	Upsert(ctx context.Context, a Account) (Account, error)
	List(ctx context.Context) ([]Account, error)
}
