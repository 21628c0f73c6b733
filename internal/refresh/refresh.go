package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/riftstats/riftstats/internal/domain"
	"github.com/riftstats/riftstats/internal/storage"
)

// Fetcher retrieves new matches from the Riot API
type Fetcher interface {
	FetchNew(ctx context.Context, puuid string, since time.Time) ([]domain.Match, error)
}

// Refresher periodically pulls new matches into the store and broadcasts
// refresh events
type Refresher struct {
	store      *storage.Store
	fetcher    Fetcher
	interval   time.Duration
	events     chan domain.Event
	trigger    chan struct{}
	regenerate func(context.Context) error

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a Refresher. interval is the time between automatic refreshes.
func New(store *storage.Store, fetcher Fetcher, interval time.Duration) *Refresher {
	return &Refresher{
		store:    store,
		fetcher:  fetcher,
		interval: interval,
		events:   make(chan domain.Event, 16),
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// OnRefresh registers a hook run after each successful refresh, used to
// regenerate the static dashboard. Set before Start.
func (r *Refresher) OnRefresh(fn func(context.Context) error) {
	r.regenerate = fn
}

// Events returns the event channel for WebSocket broadcasting
func (r *Refresher) Events() <-chan domain.Event {
	return r.events
}

// Start begins the periodic refresh loop
func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop shuts down the refresh loop, waits for an in-flight refresh, and
// closes the event channel so downstream consumers exit their range loops
func (r *Refresher) Stop() {
	log.Println("Refresher: stopping...")
	close(r.done)
	r.wg.Wait()
	close(r.events)
	log.Println("Refresher: shutdown complete")
}

// RefreshNow requests an immediate refresh. Returns false when a refresh is
// already in flight.
func (r *Refresher) RefreshNow() bool {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if running {
		return false
	}
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.trigger:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.emit(domain.Event{Type: domain.EventRefreshStarted, Timestamp: time.Now()})

	result, err := r.Run(ctx)
	if err != nil {
		log.Printf("Refresh failed: %v", err)
		r.emit(domain.Event{
			Type:      domain.EventRefreshFailed,
			Timestamp: time.Now(),
			Data:      map[string]string{"error": err.Error()},
		})
		return
	}

	r.emit(domain.Event{Type: domain.EventRefreshCompleted, Timestamp: time.Now(), Data: result})
}

// Run performs one fetch-and-store pass and returns the result. It is also
// used directly by the fetch subcommand.
func (r *Refresher) Run(ctx context.Context) (*domain.RefreshResult, error) {
	summoner, err := r.store.GetSummoner(ctx)
	if err != nil {
		return nil, err
	}
	if summoner == nil {
		return nil, fmt.Errorf("no summoner stored, run fetch first")
	}

	since, err := r.store.GetLastUpdate(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := r.fetcher.FetchNew(ctx, summoner.PUUID, since)
	if err != nil {
		return nil, err
	}

	if len(matches) > 0 {
		if err := r.store.UpsertMatches(ctx, summoner.PUUID, matches); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := r.store.SetLastUpdate(ctx, now); err != nil {
		return nil, err
	}

	total, err := r.store.CountMatches(ctx, summoner.PUUID)
	if err != nil {
		return nil, err
	}

	if r.regenerate != nil {
		if err := r.regenerate(ctx); err != nil {
			// Stale dashboard is recoverable on the next pass
			log.Printf("Dashboard regeneration failed: %v", err)
		}
	}

	log.Printf("Refresh complete: %d new matches, %d total", len(matches), total)
	return &domain.RefreshResult{
		NewMatches:   len(matches),
		TotalMatches: total,
		LastUpdate:   now.UTC().Format(time.RFC3339),
	}, nil
}

func (r *Refresher) emit(event domain.Event) {
	select {
	case r.events <- event:
	default:
		// Drop events when no one is draining the channel
	}
}
