package publish

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRegistry implements Registry on SQLite so builds split across
// processes still share one uniqueness domain. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
type SQLiteRegistry struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRegistry opens (and initializes) the registry database.
func NewSQLiteRegistry(dbPath string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	reg := &SQLiteRegistry{db: db}
	if err := reg.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return reg, nil
}

func (r *SQLiteRegistry) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS publish_items (
		path TEXT NOT NULL,
		url TEXT NOT NULL,
		moniker_group TEXT NOT NULL,
		item BLOB NOT NULL,
		PRIMARY KEY (path)
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_url_moniker ON publish_items(url, moniker_group);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Claim inserts the item; a uniqueness violation on either key is a
// rejection, not an error.
func (r *SQLiteRegistry) Claim(ctx context.Context, item PublishItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("marshal publish item: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO publish_items (path, url, moniker_group, item) VALUES (?, ?, ?, ?)`,
		item.Path, item.URL, item.MonikerGroup, payload)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("claim publish item: %w", err)
	}
	return true, nil
}

func (r *SQLiteRegistry) Items(ctx context.Context) ([]PublishItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT item FROM publish_items ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list publish items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []PublishItem
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan publish item: %w", err)
		}
		var item PublishItem
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("unmarshal publish item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
