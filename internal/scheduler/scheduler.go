package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/account-weather/internal/accounts"
	"github.com/i474232898/account-weather/internal/weather"
)

// Fetcher stores a fresh snapshot for a location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically warms the weather cache for every account's billing
// location so that widget loads are served without a provider round trip.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	accounts  accounts.Repository
	interval  time.Duration
}

// New creates a new Scheduler.
func New(repo accounts.Repository, interval time.Duration, fetcher Fetcher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		accounts:  repo,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running cache warm-up job")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := s.RunOnce(ctx)
		if err != nil {
			log.Printf("scheduler: warm-up failed: %v", err)
			return
		}
		log.Printf("scheduler: warmed %d locations", n)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce fetches every distinct billing location once and returns how many
// locations were stored. Per-location failures are logged, not returned.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return 0, err
	}

	locs := make(map[string]weather.Location)
	for _, a := range accts {
		if !a.HasBillingCity() {
			continue
		}
		loc := a.Location()
		locs[loc.Key()] = loc
	}
	if len(locs) == 0 {
		log.Println("scheduler: no account locations; nothing to warm")
		return 0, nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stored int
	)
	for _, loc := range locs {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.fetcher.FetchAndStore(ctx, loc); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
				}
				return
			}
			mu.Lock()
			stored++
			mu.Unlock()
		}()
	}
	wg.Wait()
	return stored, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
