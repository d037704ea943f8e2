package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/i474232898/account-weather/internal/accounts"
	"github.com/i474232898/account-weather/internal/accountweather"
	httpapi "github.com/i474232898/account-weather/internal/api/http"
	"github.com/i474232898/account-weather/internal/config"
	"github.com/i474232898/account-weather/internal/notify"
	"github.com/i474232898/account-weather/internal/scheduler"
	"github.com/i474232898/account-weather/internal/store"
	"github.com/i474232898/account-weather/internal/telemetry"
	"github.com/i474232898/account-weather/internal/weather"
	"github.com/i474232898/account-weather/internal/weather/providers"
	"github.com/i474232898/account-weather/internal/widget"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			log.Printf("error shutting down tracer: %v", err)
		}
	}()

	// Account records: sqlite when a path is configured, memory otherwise.
	var repo accounts.Repository
	if cfg.DatabasePath != "" {
		db, err := accounts.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("failed to open accounts db: %v", err)
		}
		defer db.Close()
		repo = accounts.NewSQLRepo(db)
	} else {
		log.Println("INFO: DATABASE_PATH not set; accounts are kept in memory")
		repo = accounts.NewMemoryRepo()
	}
	for _, a := range cfg.SeedAccounts {
		saved, err := repo.Upsert(ctx, a)
		if err != nil {
			log.Fatalf("failed to seed account %q: %v", a.Name, err)
		}
		log.Printf("INFO: seeded account %s (%s)", saved.ID, saved.Name)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory store with configured retention; also the account weather cache.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Providers with resilience (backoff + circuit breaker) behind a rate limiter.
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	// Open-Meteo needs no key; it only answers accounts with coordinates.
	provs = append(provs, providers.NewOpenMeteoProvider(httpClient))
	for i, p := range provs {
		provs[i] = providers.NewRateLimitedProvider(p, cfg.ProviderRPS, cfg.ProviderBurst)
	}

	weatherSvc := weather.NewService(memStore, provs)
	accountWeather := accountweather.NewService(repo, weatherSvc, cfg.CacheTTL)

	recorder := notify.NewRecorder(20)
	widgets := widget.NewRegistry(accountweather.Source{Service: accountWeather}, func(recordID string) widget.Notifier {
		return notify.Fanout(recorder.Sink(recordID), notify.LogSink(recordID))
	})

	// Scheduler that periodically warms the cache for every account.
	sched := scheduler.New(repo, cfg.FetchInterval, weatherSvc)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(cfg.ServiceName)
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:        weatherSvc,
		Accounts:       repo,
		AccountWeather: accountWeather,
		Widgets:        widgets,
		Notifications:  recorder,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
