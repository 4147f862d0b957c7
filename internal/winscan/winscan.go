// Package winscan persists the background app/window scan results to a
// local SQLite cache via database/sql and mattn/go-sqlite3, owned by a
// single writer with many concurrent readers.
package winscan

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nullstrike/launchkit/internal/item"
)

const schema = `
CREATE TABLE IF NOT EXISTS apps (
	path TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	icon TEXT,
	last_seen INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS windows (
	os_id TEXT PRIMARY KEY,
	app TEXT NOT NULL,
	title TEXT NOT NULL,
	pid INTEGER NOT NULL,
	x INTEGER, y INTEGER, w INTEGER, h INTEGER,
	last_seen INTEGER NOT NULL
);
`

// Cache is the launcher's single writer, many readers SQLite-backed
// snapshot of the last app/window scan.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("winscan: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("winscan: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("winscan: ensure schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// ScannedApp is one row of a background app-directory scan.
type ScannedApp struct {
	Path string
	Name string
	Icon string
}

// ScannedWindow is one row of a background window enumeration.
type ScannedWindow struct {
	OSID  string
	App   string
	Title string
	PID   int
	X, Y  int
	W, H  int
}

// ReplaceApps atomically replaces the cached app snapshot with apps,
// stamping every row with now. The background scanner is the sole
// writer; callers never interleave partial updates.
func (c *Cache) ReplaceApps(apps []ScannedApp, now time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("winscan: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM apps`); err != nil {
		return fmt.Errorf("winscan: clear apps: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO apps (path, name, icon, last_seen) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("winscan: prepare app insert: %w", err)
	}
	defer stmt.Close()
	for _, a := range apps {
		if _, err := stmt.Exec(a.Path, a.Name, a.Icon, now.Unix()); err != nil {
			return fmt.Errorf("winscan: insert app %s: %w", a.Path, err)
		}
	}
	return tx.Commit()
}

// ReplaceWindows atomically replaces the cached window snapshot.
func (c *Cache) ReplaceWindows(windows []ScannedWindow, now time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("winscan: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM windows`); err != nil {
		return fmt.Errorf("winscan: clear windows: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO windows (os_id, app, title, pid, x, y, w, h, last_seen) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("winscan: prepare window insert: %w", err)
	}
	defer stmt.Close()
	for _, w := range windows {
		if _, err := stmt.Exec(w.OSID, w.App, w.Title, w.PID, w.X, w.Y, w.W, w.H, now.Unix()); err != nil {
			return fmt.Errorf("winscan: insert window %s: %w", w.OSID, err)
		}
	}
	return tx.Commit()
}

// Items returns the cached apps and windows as item.Item values ready
// to merge into an item.Set.
func (c *Cache) Items() ([]*item.Item, error) {
	var out []*item.Item

	appRows, err := c.db.Query(`SELECT path, name, icon FROM apps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("winscan: query apps: %w", err)
	}
	defer appRows.Close()
	for appRows.Next() {
		var path, name, icon string
		if err := appRows.Scan(&path, &name, &icon); err != nil {
			return nil, fmt.Errorf("winscan: scan app row: %w", err)
		}
		out = append(out, &item.Item{
			Name: name,
			Path: path,
			Kind: item.KindApp,
			App:  &item.App{Path: path, Icon: icon},
		})
	}
	if err := appRows.Err(); err != nil {
		return nil, err
	}

	winRows, err := c.db.Query(`SELECT os_id, app, title, pid, x, y, w, h FROM windows ORDER BY app, title`)
	if err != nil {
		return nil, fmt.Errorf("winscan: query windows: %w", err)
	}
	defer winRows.Close()
	for winRows.Next() {
		var osID, app, title string
		var pid, x, y, w, h int
		if err := winRows.Scan(&osID, &app, &title, &pid, &x, &y, &w, &h); err != nil {
			return nil, fmt.Errorf("winscan: scan window row: %w", err)
		}
		out = append(out, &item.Item{
			Name: fmt.Sprintf("%s — %s", app, title),
			Path: "window:" + osID,
			Kind: item.KindWindow,
			Window: &item.Window{
				OSID: osID, App: app, Title: title, PID: pid,
				X: x, Y: y, W: w, H: h,
			},
		})
	}
	return out, winRows.Err()
}
