package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite match statistics store
type DB struct {
	conn *sql.DB
}

// MatchRow is one relay match
type MatchRow struct {
	ID        string     `json:"id"`
	Relay     string     `json:"relay"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// DeathRow is one recorded craft death
type DeathRow struct {
	MatchID string
	Player  int
	Reason  KillReason
	At      time.Time
}

// LeaderboardEntry aggregates one player's deaths and kills
type LeaderboardEntry struct {
	Player     int `json:"player"`
	Kills      int `json:"kills"`
	ShotDeaths int `json:"shot_deaths"`
	WallDeaths int `json:"wall_deaths"`
	Score      int `json:"score"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		relay TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		ended_at TEXT
	);

	CREATE TABLE IF NOT EXISTS deaths (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL REFERENCES matches(id),
		player INTEGER NOT NULL,
		reason TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deaths_match ON deaths(match_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartMatch records a new match
func (db *DB) StartMatch(id, relay string, at time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO matches (id, relay, started_at) VALUES (?, ?, ?)",
		id, relay, at.UTC().Format(time.RFC3339),
	)
	return err
}

// EndMatch stamps the end time of a match
func (db *DB) EndMatch(id string, at time.Time) error {
	_, err := db.conn.Exec(
		"UPDATE matches SET ended_at = ? WHERE id = ?",
		at.UTC().Format(time.RFC3339), id,
	)
	return err
}

// RecordDeaths writes a batch of deaths in one transaction
func (db *DB) RecordDeaths(rows []DeathRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO deaths (match_id, player, reason, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.MatchID, r.Player, r.Reason.String(), r.At.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Leaderboard aggregates deaths for one match, or for all matches when
// matchID is empty. Both players are always present, player 1 first.
// Scores replay each match's deaths in order through a ledger with the
// given policy, so they match what the peers saw; across matches they add up.
func (db *DB) Leaderboard(matchID string, policy ScorePolicy) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(
		`SELECT match_id, player, reason FROM deaths
		WHERE (? = '' OR match_id = ?)
		ORDER BY match_id, created_at, id`, matchID, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := []LeaderboardEntry{{Player: 1}, {Player: 2}}
	var ledger *ScoreLedger
	current := ""
	settle := func() {
		if ledger == nil {
			return
		}
		for i := range board {
			board[i].Score += ledger.Score(i + 1)
		}
	}
	for rows.Next() {
		var match, reason string
		var player int
		if err := rows.Scan(&match, &player, &reason); err != nil {
			return nil, err
		}
		if player < 1 || player > 2 {
			continue
		}
		if ledger == nil || match != current {
			settle()
			ledger = NewScoreLedger(policy)
			current = match
		}
		switch reason {
		case ReasonShot.String():
			board[player-1].ShotDeaths++
			ledger.ApplyKill(player, ReasonShot)
		case ReasonWall.String():
			board[player-1].WallDeaths++
			ledger.ApplyKill(player, ReasonWall)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	settle()
	for i := range board {
		board[i].Kills = board[1-i].ShotDeaths
	}
	return board, nil
}

// RecentMatches returns the newest matches first
func (db *DB) RecentMatches(limit int) ([]MatchRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, relay, started_at, ended_at FROM matches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MatchRow
	for rows.Next() {
		var m MatchRow
		var started string
		var ended sql.NullString
		if err := rows.Scan(&m.ID, &m.Relay, &started, &ended); err != nil {
			return nil, err
		}
		m.StartedAt, _ = time.Parse(time.RFC3339, started)
		if ended.Valid {
			t, _ := time.Parse(time.RFC3339, ended.String)
			m.EndedAt = &t
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
