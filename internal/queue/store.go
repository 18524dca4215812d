package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"sleeve/internal/config"
	"sleeve/internal/worklist"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. A mismatched database
// must be deleted; there is no migration path, the registry is a cache.
const schemaVersion = 1

// Store persists run state in SQLite. A file lock next to the database
// keeps concurrent runs from interleaving writes.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open connects to the run registry under the configured log directory,
// creating it on first use.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "registry.db")
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire registry lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("registry %s is in use by another run", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the run lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("registry has schema version %d, expected %d (delete %s to reset)", version, schemaVersion, s.path)
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SyncRows upserts worklist rows keyed by row index. New rows start pending;
// existing rows keep their status but refresh the metadata columns so edits
// to the worklist take effect.
func (s *Store) SyncRows(ctx context.Context, rows []worklist.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sync tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT INTO items (row_index, genre, artist, album, year, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(row_index) DO UPDATE SET
            genre = excluded.genre,
            artist = excluded.artist,
            album = excluded.album,
            year = excluded.year,
            updated_at = excluded.updated_at`

	now := timestamp()
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, upsert,
			row.Index, row.Genre, row.Artist, row.Album, row.Year, StatusPending, now, now); err != nil {
			return fmt.Errorf("sync row %d: %w", row.Index, err)
		}
	}
	return tx.Commit()
}

const itemColumns = `id, row_index, genre, artist, album, year, status, image_url, saved_path, error_message, run_id, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (*Item, error) {
	var (
		item             Item
		status           string
		created, updated string
	)
	if err := scanner.Scan(
		&item.ID, &item.RowIndex, &item.Genre, &item.Artist, &item.Album, &item.Year,
		&status, &item.ImageURL, &item.SavedPath, &item.ErrorMessage, &item.RunID,
		&created, &updated,
	); err != nil {
		return nil, err
	}
	item.Status = Status(status)
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &item, nil
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns every item ordered by row index.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	return s.queryItems(ctx, "SELECT "+itemColumns+" FROM items ORDER BY row_index")
}

// ItemsByStatuses returns items in any of the given statuses, ordered by
// row index.
func (s *Store) ItemsByStatuses(ctx context.Context, statuses ...Status) ([]*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := ""
	args := make([]any, 0, len(statuses))
	for i, status := range statuses {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, string(status))
	}
	query := "SELECT " + itemColumns + " FROM items WHERE status IN (" + placeholders + ") ORDER BY row_index"
	return s.queryItems(ctx, query, args...)
}

// ItemsByRowIndexes returns the items with the given worklist row indexes.
func (s *Store) ItemsByRowIndexes(ctx context.Context, indexes ...int) ([]*Item, error) {
	if len(indexes) == 0 {
		return nil, nil
	}
	placeholders := ""
	args := make([]any, 0, len(indexes))
	for i, index := range indexes {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, index)
	}
	query := "SELECT " + itemColumns + " FROM items WHERE row_index IN (" + placeholders + ") ORDER BY row_index"
	return s.queryItems(ctx, query, args...)
}

// ItemByRowIndex returns one item or nil when the row is unknown.
func (s *Store) ItemByRowIndex(ctx context.Context, index int) (*Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE row_index = ?", index)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item %d: %w", index, err)
	}
	return item, nil
}

func (s *Store) update(ctx context.Context, id int64, set string, args ...any) error {
	args = append(args, timestamp(), id)
	res, err := s.db.ExecContext(ctx, "UPDATE items SET "+set+", updated_at = ? WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update item %d: no such item", id)
	}
	return nil
}

// MarkSearching moves the item into the searching state and tags it with the
// run that owns it.
func (s *Store) MarkSearching(ctx context.Context, id int64, runID string) error {
	return s.update(ctx, id, "status = ?, run_id = ?, error_message = ''", StatusSearching, runID)
}

// MarkResolved records the chosen image URL.
func (s *Store) MarkResolved(ctx context.Context, id int64, imageURL string) error {
	return s.update(ctx, id, "status = ?, image_url = ?", StatusResolved, imageURL)
}

// MarkSaved records the path the cover was written to.
func (s *Store) MarkSaved(ctx context.Context, id int64, path string) error {
	return s.update(ctx, id, "status = ?, saved_path = ?", StatusSaved, path)
}

// MarkExists records that the target file already existed and was kept.
func (s *Store) MarkExists(ctx context.Context, id int64, path string) error {
	return s.update(ctx, id, "status = ?, saved_path = ?", StatusExists, path)
}

// MarkSkipped records a deliberate skip.
func (s *Store) MarkSkipped(ctx context.Context, id int64) error {
	return s.update(ctx, id, "status = ?", StatusSkipped)
}

// MarkNotFound records that no provider produced a usable candidate.
func (s *Store) MarkNotFound(ctx context.Context, id int64) error {
	return s.update(ctx, id, "status = ?", StatusNotFound)
}

// MarkFailed records a processing failure with its message.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.update(ctx, id, "status = ?, error_message = ?", StatusFailed, message)
}

// ResetForRedo returns items to pending so the next run picks them up.
func (s *Store) ResetForRedo(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if err := s.update(ctx, id, "status = ?, image_url = '', saved_path = '', error_message = ''", StatusPending); err != nil {
			return err
		}
	}
	return nil
}

// CountByStatus returns the number of items per status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM items GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}
