package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftstats/riftstats/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testMatch(id string, creation int64, champion string, win bool) domain.Match {
	return domain.Match{
		MatchID:      id,
		GameCreation: creation,
		QueueID:      420,
		GameDuration: 1800,
		GameVersion:  "14.3.123.4567",
		MyData: domain.PlayerData{
			ChampionName: champion,
			Kills:        5,
			Deaths:       3,
			Assists:      7,
			Win:          win,
		},
		AllPlayers: []domain.ParticipantData{
			{SummonerName: "SomeEnemy", TeamID: 200, ChampionName: "Zed"},
		},
	}
}

func TestSummonerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetSummoner(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	sum := &domain.Summoner{Name: "Faker", PUUID: "puuid-1", Region: "kr"}
	require.NoError(t, store.UpsertSummoner(ctx, sum))

	got, err = store.GetSummoner(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Faker", got.Name)

	// Re-upsert with a new name keeps a single row
	sum.Name = "Hide on bush"
	require.NoError(t, store.UpsertSummoner(ctx, sum))
	got, err = store.GetSummoner(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hide on bush", got.Name)
}

func TestUpsertMatchLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummoner(ctx, &domain.Summoner{PUUID: "p1", Name: "x", Region: "jp1"}))

	first := testMatch("JP1_1", 1000, "Ahri", false)
	require.NoError(t, store.UpsertMatch(ctx, "p1", &first))

	second := testMatch("JP1_1", 1000, "Ahri", true)
	require.NoError(t, store.UpsertMatch(ctx, "p1", &second))

	matches, err := store.GetMatches(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].MyData.Win)
}

func TestGetMatchesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummoner(ctx, &domain.Summoner{PUUID: "p1", Name: "x", Region: "jp1"}))

	batch := []domain.Match{
		testMatch("JP1_old", 1000, "Ahri", true),
		testMatch("JP1_new", 3000, "Zed", false),
		testMatch("JP1_mid", 2000, "Lux", true),
	}
	require.NoError(t, store.UpsertMatches(ctx, "p1", batch))

	matches, err := store.GetMatches(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "JP1_new", matches[0].MatchID)
	assert.Equal(t, "JP1_mid", matches[1].MatchID)
	assert.Equal(t, "JP1_old", matches[2].MatchID)

	// Nested JSON columns survive the round trip
	assert.Equal(t, "Zed", matches[2].AllPlayers[0].ChampionName)

	count, err := store.CountMatches(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLastUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetLastUpdate(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	stamp := time.Date(2024, 2, 14, 12, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetLastUpdate(ctx, stamp))

	got, err = store.GetLastUpdate(ctx)
	require.NoError(t, err)
	assert.Equal(t, stamp, got.UTC())
}

func TestImportExportCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	col := &domain.MatchCollection{
		LastUpdate: "2024-02-14T12:00:00Z",
		Summoner:   domain.Summoner{Name: "Faker", PUUID: "p1", Region: "kr"},
		Matches: []domain.Match{
			testMatch("JP1_1", 1000, "Ahri", true),
			testMatch("JP1_2", 2000, "Zed", false),
		},
	}
	require.NoError(t, store.ImportCollection(ctx, col))

	exported, err := store.ExportCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Faker", exported.Summoner.Name)
	assert.Equal(t, "2024-02-14T12:00:00Z", exported.LastUpdate)
	require.Len(t, exported.Matches, 2)
	assert.Equal(t, "JP1_2", exported.Matches[0].MatchID)
}

func TestExportWithoutSummoner(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ExportCollection(context.Background())
	assert.Error(t, err)
}
