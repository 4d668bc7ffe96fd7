package main

import (
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database. Live match state never touches it; it holds
// accounts and the results of finished matches only.
type DB struct {
	conn *sql.DB
}

// PlayerRow is one account record
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	IsGuest   bool
	CreatedAt time.Time
}

// MatchHistoryRow is one finished match
type MatchHistoryRow struct {
	MatchID    string   `json:"mid"`
	Name       string   `json:"name"`
	Word       string   `json:"word"`
	Winner     string   `json:"winner"`
	Players    []string `json:"players"`
	Duration   float64  `json:"duration"`
	FinishedAt string   `json:"finished_at"`
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
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_results (
		match_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		word TEXT NOT NULL,
		winner TEXT NOT NULL,
		players TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		finished_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
	CREATE INDEX IF NOT EXISTS idx_results_finished ON match_results(finished_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreatePlayer creates a new account and returns its id
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPlayerByUsername returns an account, or nil when none exists
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, created_at FROM players WHERE username = ?",
		username,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.IsGuest, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// UsernameExists reports whether an account name is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&n)
	return n > 0, err
}

// GetSetting returns a settings value, "" when absent
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordMatch stores a finished match result
func (db *DB) RecordMatch(res MatchResult) error {
	_, err := db.conn.Exec(
		"INSERT INTO match_results (match_id, name, word, winner, players, duration) VALUES (?, ?, ?, ?, ?, ?)",
		res.ID, res.Name, res.Word, res.Winner, strings.Join(res.Players, ","), res.Duration,
	)
	return err
}

// RecentMatches returns the most recently finished matches
func (db *DB) RecentMatches(limit int) ([]MatchHistoryRow, error) {
	rows, err := db.conn.Query(
		"SELECT match_id, name, word, winner, players, duration, finished_at FROM match_results ORDER BY finished_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MatchHistoryRow{}
	for rows.Next() {
		var r MatchHistoryRow
		var players string
		if err := rows.Scan(&r.MatchID, &r.Name, &r.Word, &r.Winner, &players, &r.Duration, &r.FinishedAt); err != nil {
			return nil, err
		}
		if players != "" {
			r.Players = strings.Split(players, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
