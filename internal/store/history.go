package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/schema.sql
var schema string

// QuizResult is one finished quiz.
type QuizResult struct {
	ID       int64     `json:"id"`
	Mode     string    `json:"mode"`
	Score    int       `json:"score"`
	MaxScore int       `json:"maxScore"`
	Artists  int       `json:"artists"`
	Titles   int       `json:"titles"`
	Years    int       `json:"years"`
	Skipped  int       `json:"skipped"`
	PlayedAt time.Time `json:"playedAt"`
}

// Percentage is the rounded share of the maximum score.
func (r QuizResult) Percentage() int {
	if r.MaxScore == 0 {
		return 0
	}
	return (r.Score*100 + r.MaxScore/2) / r.MaxScore
}

type History struct {
	db *sql.DB
}

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenHistory opens the history database and creates its tables.
func OpenHistory(path string) (*History, error) {
	db, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Record stores a finished quiz and returns its id.
func (h *History) Record(ctx context.Context, result QuizResult) (int64, error) {
	if result.PlayedAt.IsZero() {
		result.PlayedAt = time.Now()
	}

	res, err := h.db.ExecContext(ctx,
		`INSERT INTO quiz_results (mode, score, max_score, artists, titles, years, skipped, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Mode, result.Score, result.MaxScore, result.Artists, result.Titles, result.Years,
		result.Skipped, result.PlayedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to record quiz result: %w", err)
	}

	return res.LastInsertId()
}

// Best returns the highest scoring results of a mode, newest first on ties.
func (h *History) Best(ctx context.Context, mode string, limit int) ([]QuizResult, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, mode, score, max_score, artists, titles, years, skipped, played_at
		 FROM quiz_results
		 WHERE mode = ?
		 ORDER BY score DESC, played_at DESC, id DESC
		 LIMIT ?`,
		mode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	defer rows.Close()

	var results []QuizResult
	for rows.Next() {
		var r QuizResult
		if err := rows.Scan(&r.ID, &r.Mode, &r.Score, &r.MaxScore, &r.Artists, &r.Titles,
			&r.Years, &r.Skipped, &r.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// RecordPlays remembers which tracks a quiz handed out.
func (h *History) RecordPlays(ctx context.Context, trackIDs []string) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, trackID := range trackIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_plays (track_id, played_at) VALUES (?, ?)`, trackID, now); err != nil {
			return fmt.Errorf("failed to record play: %w", err)
		}
	}

	return tx.Commit()
}

// RecentTrackIDs returns up to limit track ids, oldest first, so they can be
// replayed into a RecentPlays store.
func (h *History) RecentTrackIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT track_id FROM (
		     SELECT id, track_id FROM quiz_plays ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var trackIDs []string
	for rows.Next() {
		var trackID string
		if err := rows.Scan(&trackID); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		trackIDs = append(trackIDs, trackID)
	}

	return trackIDs, rows.Err()
}
