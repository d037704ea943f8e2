package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/account-weather/internal/accounts"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// FetchInterval controls how often the scheduler warms the cache.
	FetchInterval time.Duration

	// CacheTTL is how long a stored snapshot answers account lookups.
	CacheTTL time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Outbound rate limit shared by each provider.
	ProviderRPS   float64
	ProviderBurst int

	// DatabasePath is the sqlite file holding accounts. Empty keeps accounts in memory.
	DatabasePath string

	// SeedAccounts are upserted at start-up, "Name|City|Country" separated by ";".
	SeedAccounts []accounts.Account

	ServiceName  string
	OTLPEndpoint string

	// ServerURL is where the terminal card reaches the API.
	ServerURL string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "10m"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getenvDefault("PROVIDER_RPS", "1"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid PROVIDER_RPS %q", os.Getenv("PROVIDER_RPS"))
	}
	cfg.ProviderRPS = rps
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 3)

	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	cfg.ServiceName = getenvDefault("SERVICE_NAME", "account-weather")
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.ServerURL = getenvDefault("WEATHER_SERVER_URL", "http://localhost:8080")
	cfg.Port = getenvDefault("PORT", "8080")

	seed, err := parseSeedAccounts(os.Getenv("SEED_ACCOUNTS"))
	if err != nil {
		return nil, err
	}
	cfg.SeedAccounts = seed

	return cfg, nil
}

// parseSeedAccounts reads "Name|City|Country;Name|City|Country". An optional
// fourth field sets the account id.
func parseSeedAccounts(raw string) ([]accounts.Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []accounts.Account
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, "|")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid SEED_ACCOUNTS entry %q: want Name|City|Country[|ID]", item)
		}
		a := accounts.Account{
			Name:           strings.TrimSpace(parts[0]),
			BillingCity:    strings.TrimSpace(parts[1]),
			BillingCountry: strings.TrimSpace(parts[2]),
		}
		if len(parts) == 4 {
			a.ID = strings.TrimSpace(parts[3])
		}
		out = append(out, a)
	}
	return out, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
