// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jwulff/pinclock-go/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based SQLite store.
func NewFileStore(path string) (*Store, error) {
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

// Catalog methods

// SaveCatalog replaces the indexed animations.
func (s *Store) SaveCatalog(ctx context.Context, buildTag string, anis []storage.AnimationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM animations"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO catalog (id, build_tag, indexed_at)
		VALUES (1, ?, ?)
	`, buildTag, millis(time.Now())); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO animations (idx, name, ani_id, width, height, frames, steps, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range anis {
		if _, err := stmt.ExecContext(ctx, a.Index, a.Name, a.ID, a.Width, a.Height,
			a.Frames, a.Steps, a.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("failed to index animation %d: %w", a.Index, err)
		}
	}

	return tx.Commit()
}

// GetCatalog returns the indexed animations ordered by index.
func (s *Store) GetCatalog(ctx context.Context) (*storage.Catalog, error) {
	var c storage.Catalog
	var indexedAt int64
	err := s.db.QueryRowContext(ctx, "SELECT build_tag, indexed_at FROM catalog WHERE id = 1").
		Scan(&c.BuildTag, &indexedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "catalog", ID: "1"}
	}
	if err != nil {
		return nil, err
	}
	c.IndexedAt = fromMillis(indexedAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, name, ani_id, width, height, frames, steps, duration_ms
		FROM animations ORDER BY idx
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAnimation(rows)
		if err != nil {
			return nil, err
		}
		c.Animations = append(c.Animations, *a)
	}
	return &c, rows.Err()
}

// GetAnimation returns one indexed animation.
func (s *Store) GetAnimation(ctx context.Context, index int) (*storage.AnimationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT idx, name, ani_id, width, height, frames, steps, duration_ms
		FROM animations WHERE idx = ?
	`, index)
	a, err := scanAnimation(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "animation", ID: strconv.Itoa(index)}
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnimation(sc scanner) (*storage.AnimationRecord, error) {
	var a storage.AnimationRecord
	var durMS int64
	if err := sc.Scan(&a.Index, &a.Name, &a.ID, &a.Width, &a.Height, &a.Frames, &a.Steps, &durMS); err != nil {
		return nil, err
	}
	a.Duration = time.Duration(durMS) * time.Millisecond
	return &a, nil
}

// Playback methods

// RecordPlayback inserts or updates a playback by id.
func (s *Store) RecordPlayback(ctx context.Context, p *storage.Playback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO playbacks (id, animation_idx, name, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.AnimationIndex, p.Name, millis(p.StartedAt), p.Duration.Milliseconds())
	return err
}

// RecentPlaybacks returns up to limit playbacks, newest first.
func (s *Store) RecentPlaybacks(ctx context.Context, limit int) ([]*storage.Playback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, animation_idx, name, started_at, duration_ms
		FROM playbacks ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*storage.Playback
	for rows.Next() {
		var p storage.Playback
		var started, durMS int64
		if err := rows.Scan(&p.ID, &p.AnimationIndex, &p.Name, &started, &durMS); err != nil {
			return nil, err
		}
		p.StartedAt = fromMillis(started)
		p.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Stats methods

// RecordStats stores one sample, replacing a sample taken in the same millisecond.
func (s *Store) RecordStats(ctx context.Context, st *storage.Stats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO stats (at, fps, frames, start_timeouts, wait_timeouts, brightness)
		VALUES (?, ?, ?, ?, ?, ?)
	`, millis(st.At), st.FPS, int64(st.Frames), int64(st.StartTimeouts), int64(st.WaitTimeouts), st.Brightness)
	return err
}

// QueryStats returns the samples in [since, until] in time order.
func (s *Store) QueryStats(ctx context.Context, since, until time.Time) ([]storage.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT at, fps, frames, start_timeouts, wait_timeouts, brightness FROM stats
		WHERE at >= ? AND at <= ?
		ORDER BY at ASC
	`, millis(since), millis(until))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Stats
	for rows.Next() {
		var st storage.Stats
		var at, frames, starts, waits int64
		if err := rows.Scan(&at, &st.FPS, &frames, &starts, &waits, &st.Brightness); err != nil {
			return nil, err
		}
		st.At = fromMillis(at)
		st.Frames = uint64(frames)
		st.StartTimeouts = uint64(starts)
		st.WaitTimeouts = uint64(waits)
		out = append(out, st)
	}
	return out, rows.Err()
}

// DeleteOldStats drops samples taken before before.
func (s *Store) DeleteOldStats(ctx context.Context, before time.Time) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM stats WHERE at < ?", millis(before))
	return err
}

// Frame cache methods

func (s *Store) CacheFrame(ctx context.Context, frame *storage.CachedFrame) error {
	data, err := storage.EncodeFrame(frame.Frame)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO frame_cache (id, frame_data, generated_at)
		VALUES (1, ?, ?)
	`, data, millis(frame.GeneratedAt))
	return err
}

func (s *Store) GetCachedFrame(ctx context.Context) (*storage.CachedFrame, error) {
	var data []byte
	var generated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT frame_data, generated_at FROM frame_cache WHERE id = 1
	`).Scan(&data, &generated)

	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "frame_cache", ID: "1"}
	}
	if err != nil {
		return nil, err
	}
	f, err := storage.DecodeFrame(data)
	if err != nil {
		return nil, err
	}
	return &storage.CachedFrame{Frame: f, GeneratedAt: fromMillis(generated)}, nil
}

// Config methods

func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound{Resource: "config", ID: key}
	}
	return value, err
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO config (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, millis(time.Now()))
	return err
}

func (s *Store) DeleteConfig(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM config WHERE key = ?", key)
	return err
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
