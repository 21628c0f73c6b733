package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftstats/riftstats/internal/domain"
	"github.com/riftstats/riftstats/internal/storage"
)

type fakeFetcher struct {
	matches []domain.Match
	err     error
	since   time.Time
	calls   int
}

func (f *fakeFetcher) FetchNew(ctx context.Context, puuid string, since time.Time) ([]domain.Match, error) {
	f.calls++
	f.since = since
	return f.matches, f.err
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.UpsertSummoner(context.Background(), &domain.Summoner{
		Name: "Faker", PUUID: "p1", Region: "kr",
	}))
	return store
}

func TestRunStoresMatches(t *testing.T) {
	store := newTestStore(t)
	fetcher := &fakeFetcher{matches: []domain.Match{
		{MatchID: "KR_1", GameCreation: 1000, QueueID: 420, GameVersion: "14.3.1.1", MyData: domain.PlayerData{ChampionName: "Ahri", Win: true}},
		{MatchID: "KR_2", GameCreation: 2000, QueueID: 450, GameVersion: "14.3.1.1", MyData: domain.PlayerData{ChampionName: "Lux"}},
	}}

	r := New(store, fetcher, time.Hour)
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.NewMatches)
	assert.Equal(t, 2, result.TotalMatches)
	assert.NotEmpty(t, result.LastUpdate)

	// First run fetches the full history
	assert.True(t, fetcher.since.IsZero())

	// Second run resumes from the recorded last update
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, fetcher.since.IsZero())
}

func TestRunWithoutSummoner(t *testing.T) {
	store, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	r := New(store, &fakeFetcher{}, time.Hour)
	_, err = r.Run(context.Background())
	assert.Error(t, err)
}

func TestRefreshNowEmitsEvents(t *testing.T) {
	store := newTestStore(t)
	fetcher := &fakeFetcher{matches: []domain.Match{
		{MatchID: "KR_1", GameCreation: 1000, QueueID: 420, GameVersion: "14.3.1.1", MyData: domain.PlayerData{ChampionName: "Ahri"}},
	}}

	r := New(store, fetcher, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	assert.True(t, r.RefreshNow())

	waitForEvent := func() domain.Event {
		select {
		case ev := <-r.Events():
			return ev
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
			return domain.Event{}
		}
	}

	assert.Equal(t, domain.EventRefreshStarted, waitForEvent().Type)
	completed := waitForEvent()
	assert.Equal(t, domain.EventRefreshCompleted, completed.Type)
	result, ok := completed.Data.(*domain.RefreshResult)
	require.True(t, ok)
	assert.Equal(t, 1, result.NewMatches)
}

func TestStopClosesEventChannel(t *testing.T) {
	store := newTestStore(t)
	r := New(store, &fakeFetcher{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	r.Stop()

	select {
	case _, ok := <-r.Events():
		assert.False(t, ok, "events channel should be closed after Stop")
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed after Stop")
	}
}

func TestRefreshFailureEmitsFailedEvent(t *testing.T) {
	store := newTestStore(t)
	fetcher := &fakeFetcher{err: errors.New("api down")}

	r := New(store, fetcher, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	assert.True(t, r.RefreshNow())

	var types []string
	for len(types) < 2 {
		select {
		case ev := <-r.Events():
			types = append(types, ev.Type)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, []string{domain.EventRefreshStarted, domain.EventRefreshFailed}, types)
}
