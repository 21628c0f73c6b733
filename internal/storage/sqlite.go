package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/riftstats/riftstats/internal/domain"
	_ "modernc.org/sqlite"
)

// formatTimestamp converts time.Time to SQLite-compatible UTC ISO8601 string
// The Z suffix ensures the Go sqlite driver parses it back as UTC
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

//go:embed schema.sql
var schema string

const lastUpdateKey = "last_update"

// Store provides database access
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable foreign keys, WAL mode for better performance, and busy timeout for concurrency
	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	// Create tables
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Summoner methods ---

// UpsertSummoner creates or updates the tracked summoner
func (s *Store) UpsertSummoner(ctx context.Context, sum *domain.Summoner) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summoners (puuid, name, region)
		VALUES (?, ?, ?)
		ON CONFLICT(puuid) DO UPDATE SET
			name = excluded.name,
			region = excluded.region
	`, sum.PUUID, sum.Name, sum.Region)
	return err
}

// GetSummoner returns the tracked summoner, or nil when none is stored yet
func (s *Store) GetSummoner(ctx context.Context) (*domain.Summoner, error) {
	var sum domain.Summoner
	err := s.db.QueryRowContext(ctx, `
		SELECT puuid, name, region FROM summoners LIMIT 1
	`).Scan(&sum.PUUID, &sum.Name, &sum.Region)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// --- Match methods ---

// UpsertMatch stores a match, replacing any existing row with the same match id
func (s *Store) UpsertMatch(ctx context.Context, puuid string, m *domain.Match) error {
	myData, err := json.Marshal(m.MyData)
	if err != nil {
		return fmt.Errorf("encoding player data: %w", err)
	}
	allPlayers, err := json.Marshal(m.AllPlayers)
	if err != nil {
		return fmt.Errorf("encoding participants: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (match_id, puuid, game_creation, queue_id, game_duration, game_version, my_data, all_players)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			puuid = excluded.puuid,
			game_creation = excluded.game_creation,
			queue_id = excluded.queue_id,
			game_duration = excluded.game_duration,
			game_version = excluded.game_version,
			my_data = excluded.my_data,
			all_players = excluded.all_players
	`, m.MatchID, puuid, m.GameCreation, m.QueueID, m.GameDuration, m.GameVersion, string(myData), string(allPlayers))
	return err
}

// UpsertMatches stores a batch of matches in one transaction
func (s *Store) UpsertMatches(ctx context.Context, puuid string, matches []domain.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range matches {
		m := &matches[i]
		myData, err := json.Marshal(m.MyData)
		if err != nil {
			return fmt.Errorf("encoding player data for %s: %w", m.MatchID, err)
		}
		allPlayers, err := json.Marshal(m.AllPlayers)
		if err != nil {
			return fmt.Errorf("encoding participants for %s: %w", m.MatchID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO matches (match_id, puuid, game_creation, queue_id, game_duration, game_version, my_data, all_players)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(match_id) DO UPDATE SET
				puuid = excluded.puuid,
				game_creation = excluded.game_creation,
				queue_id = excluded.queue_id,
				game_duration = excluded.game_duration,
				game_version = excluded.game_version,
				my_data = excluded.my_data,
				all_players = excluded.all_players
		`, m.MatchID, puuid, m.GameCreation, m.QueueID, m.GameDuration, m.GameVersion, string(myData), string(allPlayers)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetMatches returns all stored matches for a player, newest first
func (s *Store) GetMatches(ctx context.Context, puuid string) ([]domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, game_creation, queue_id, game_duration, game_version, my_data, all_players
		FROM matches WHERE puuid = ? ORDER BY game_creation DESC, match_id
	`, puuid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		var myData, allPlayers string
		if err := rows.Scan(&m.MatchID, &m.GameCreation, &m.QueueID, &m.GameDuration, &m.GameVersion, &myData, &allPlayers); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(myData), &m.MyData); err != nil {
			return nil, fmt.Errorf("decoding player data for %s: %w", m.MatchID, err)
		}
		if err := json.Unmarshal([]byte(allPlayers), &m.AllPlayers); err != nil {
			return nil, fmt.Errorf("decoding participants for %s: %w", m.MatchID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountMatches returns the number of stored matches for a player
func (s *Store) CountMatches(ctx context.Context, puuid string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM matches WHERE puuid = ?", puuid).Scan(&count)
	return count, err
}

// --- Meta methods ---

// GetLastUpdate returns the time of the last successful fetch, or the zero
// time when no fetch has run yet
func (s *Store) GetLastUpdate(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", lastUpdateKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// SetLastUpdate records the time of the last successful fetch
func (s *Store) SetLastUpdate(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastUpdateKey, formatTimestamp(t))
	return err
}

// --- Import / export ---

// ExportCollection bundles the stored summoner, matches, and last-update
// stamp into a portable collection
func (s *Store) ExportCollection(ctx context.Context) (*domain.MatchCollection, error) {
	sum, err := s.GetSummoner(ctx)
	if err != nil {
		return nil, err
	}
	if sum == nil {
		return nil, fmt.Errorf("no summoner stored")
	}

	matches, err := s.GetMatches(ctx, sum.PUUID)
	if err != nil {
		return nil, err
	}

	lastUpdate, err := s.GetLastUpdate(ctx)
	if err != nil {
		return nil, err
	}

	col := &domain.MatchCollection{
		Summoner: *sum,
		Matches:  matches,
	}
	if !lastUpdate.IsZero() {
		col.LastUpdate = lastUpdate.UTC().Format(time.RFC3339)
	}
	return col, nil
}

// ImportCollection loads a collection into the database. Matches that
// already exist are overwritten.
func (s *Store) ImportCollection(ctx context.Context, col *domain.MatchCollection) error {
	if col.Summoner.PUUID == "" {
		return fmt.Errorf("collection has no summoner puuid")
	}
	if err := s.UpsertSummoner(ctx, &col.Summoner); err != nil {
		return err
	}
	if err := s.UpsertMatches(ctx, col.Summoner.PUUID, col.Matches); err != nil {
		return err
	}
	if col.LastUpdate != "" {
		t, err := time.Parse(time.RFC3339, col.LastUpdate)
		if err != nil {
			return fmt.Errorf("parsing last_update: %w", err)
		}
		return s.SetLastUpdate(ctx, t)
	}
	return nil
}
