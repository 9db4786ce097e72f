package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Notivest/price-fetcher/internal/market"
)

// Store persists the watchlist in SQLite. The price caches stay in memory;
// only the symbol roster survives a restart.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "data/pricefetcher.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS watchlist (
	symbol TEXT PRIMARY KEY,
	enabled INTEGER NOT NULL DEFAULT 1,
	priority INTEGER,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// WatchlistAll returns every item ordered by priority ascending (items
// without a priority last), then symbol.
func (s *Store) WatchlistAll() ([]market.WatchListItem, error) {
	rows, err := s.db.Query(`
SELECT symbol, enabled, priority FROM watchlist
ORDER BY COALESCE(priority, 2147483647) ASC, symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var out []market.WatchListItem
	for rows.Next() {
		var item market.WatchListItem
		var enabled int
		var priority sql.NullInt64
		if err := rows.Scan(&item.Symbol, &enabled, &priority); err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}
		item.Enabled = enabled != 0
		if priority.Valid {
			p := int(priority.Int64)
			item.Priority = &p
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// WatchlistAdd inserts the item, reporting false when the symbol already
// exists.
func (s *Store) WatchlistAdd(item market.WatchListItem) (bool, error) {
	var priority any
	if item.Priority != nil {
		priority = *item.Priority
	}
	res, err := s.db.Exec(`
INSERT INTO watchlist (symbol, enabled, priority) VALUES (?, ?, ?)
ON CONFLICT(symbol) DO NOTHING`,
		item.Symbol, boolToInt(item.Enabled), priority)
	if err != nil {
		return false, fmt.Errorf("insert watchlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WatchlistUpdate patches enabled and/or priority; nil fields keep their
// stored value. Reports false when the symbol is not present.
func (s *Store) WatchlistUpdate(symbol string, enabled *bool, priority *int) (bool, error) {
	var enabledArg, priorityArg any
	if enabled != nil {
		enabledArg = boolToInt(*enabled)
	}
	if priority != nil {
		priorityArg = *priority
	}
	res, err := s.db.Exec(`
UPDATE watchlist
SET enabled = COALESCE(?, enabled), priority = COALESCE(?, priority)
WHERE symbol = ?`,
		enabledArg, priorityArg, symbol)
	if err != nil {
		return false, fmt.Errorf("update watchlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WatchlistRemove deletes the symbol, reporting false when it was absent.
func (s *Store) WatchlistRemove(symbol string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return false, fmt.Errorf("delete watchlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WatchlistContains reports whether the symbol is present.
func (s *Store) WatchlistContains(symbol string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM watchlist WHERE symbol = ?`, symbol).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query watchlist: %w", err)
	}
	return true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
