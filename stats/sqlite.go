// Package stats persists final times, keeping only the best time per
// player, map, and role. Writes are best-effort: the room engine fires
// and forgets, and gameplay truth stays in memory.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed sink.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS best_times (
		user_id      TEXT NOT NULL,
		map_id       TEXT NOT NULL,
		role         TEXT NOT NULL,
		time_seconds REAL NOT NULL,
		updated_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, map_id, role)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create best_times table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record satisfies game.StatsSink. The upsert keeps the smaller time, so
// replaying a worse result is a no-op.
func (s *Store) Record(ctx context.Context, userID, mapID string, elapsed float64, role string) error {
	if userID == "" || mapID == "" {
		return fmt.Errorf("stats record needs user and map ids")
	}
	const query = `
	INSERT INTO best_times (user_id, map_id, role, time_seconds, updated_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, map_id, role) DO UPDATE SET
		time_seconds = MIN(best_times.time_seconds, excluded.time_seconds),
		updated_at = CURRENT_TIMESTAMP;
	`
	_, err := s.db.ExecContext(ctx, query, userID, mapID, role, elapsed)
	if err != nil {
		return fmt.Errorf("record best time: %w", err)
	}
	return nil
}

// BestTime is one persisted row.
type BestTime struct {
	UserID    string    `json:"userId"`
	MapID     string    `json:"mapId"`
	Role      string    `json:"role"`
	Seconds   float64   `json:"seconds"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BestTimes lists the recorded times for a map, fastest first.
func (s *Store) BestTimes(ctx context.Context, mapID string) ([]BestTime, error) {
	const query = `
	SELECT user_id, map_id, role, time_seconds, updated_at
	FROM best_times
	WHERE map_id = ?
	ORDER BY time_seconds ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, mapID)
	if err != nil {
		return nil, fmt.Errorf("query best times: %w", err)
	}
	defer rows.Close()

	var out []BestTime
	for rows.Next() {
		var bt BestTime
		if err := rows.Scan(&bt.UserID, &bt.MapID, &bt.Role, &bt.Seconds, &bt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan best time: %w", err)
		}
		out = append(out, bt)
	}
	return out, rows.Err()
}
