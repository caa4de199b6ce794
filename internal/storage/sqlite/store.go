package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/platform/storage/sqlitemigrate"
	"github.com/ebriony/castlight/internal/storage"
	"github.com/ebriony/castlight/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists event entities in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.EntityStore = (*Store)(nil)

// Open opens a SQLite entity store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func scanEvent(scanner interface{ Scan(dest ...any) error }) (event.Event, error) {
	var ev event.Event
	var character, faction, questBuilder, mirror int
	err := scanner.Scan(&ev.Slug, &ev.Name, &ev.ParentSlug, &character, &faction, &questBuilder, &mirror)
	if err != nil {
		return event.Event{}, err
	}
	ev.Features = event.Features{
		Character:    character != 0,
		Faction:      faction != 0,
		QuestBuilder: questBuilder != 0,
		Mirror:       mirror != 0,
	}
	return ev, nil
}

// Event returns one event by slug.
func (s *Store) Event(ctx context.Context, slug string) (event.Event, bool, error) {
	if err := s.ready(ctx); err != nil {
		return event.Event{}, false, err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return event.Event{}, false, fmt.Errorf("event slug is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT slug, name, parent_slug,
		        feature_character, feature_faction, feature_quest_builder, feature_mirror
		   FROM events
		  WHERE slug = ?`,
		slug,
	)
	ev, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event: %w", err)
	}
	return ev, true, nil
}

// ChildEvents returns the events whose parent is parentSlug.
func (s *Store) ChildEvents(ctx context.Context, parentSlug string) ([]event.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	parentSlug = strings.TrimSpace(parentSlug)
	if parentSlug == "" {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT slug, name, parent_slug,
		        feature_character, feature_faction, feature_quest_builder, feature_mirror
		   FROM events
		  WHERE parent_slug = ?
		  ORDER BY slug ASC`,
		parentSlug,
	)
	if err != nil {
		return nil, fmt.Errorf("list child events: %w", err)
	}
	defer rows.Close()

	var children []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list child events: %w", err)
		}
		children = append(children, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list child events: %w", err)
	}
	return children, nil
}

// Runs returns every run of an event ordered by number.
func (s *Store) Runs(ctx context.Context, eventSlug string) ([]event.Run, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_slug, number FROM runs WHERE event_slug = ? ORDER BY number ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []event.Run
	for rows.Next() {
		var run event.Run
		if err := rows.Scan(&run.ID, &run.EventSlug, &run.Number); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Run returns one run by event slug and number.
func (s *Store) Run(ctx context.Context, eventSlug string, number int) (event.Run, bool, error) {
	if err := s.ready(ctx); err != nil {
		return event.Run{}, false, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, event_slug, number FROM runs WHERE event_slug = ? AND number = ?`,
		strings.TrimSpace(eventSlug),
		number,
	)
	var run event.Run
	if err := row.Scan(&run.ID, &run.EventSlug, &run.Number); err != nil {
		if err == sql.ErrNoRows {
			return event.Run{}, false, nil
		}
		return event.Run{}, false, fmt.Errorf("get run: %w", err)
	}
	return run, true, nil
}

// Config returns the per-event config value for key.
func (s *Store) Config(ctx context.Context, eventSlug, key string) (string, bool, error) {
	if err := s.ready(ctx); err != nil {
		return "", false, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT value FROM event_configs WHERE event_slug = ? AND key = ?`,
		strings.TrimSpace(eventSlug),
		strings.TrimSpace(key),
	)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get config: %w", err)
	}
	return value, true, nil
}

// PutEvent stores or replaces an event by slug.
func (s *Store) PutEvent(ctx context.Context, ev event.Event) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := ev.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO events (slug, name, parent_slug,
		                     feature_character, feature_faction, feature_quest_builder, feature_mirror)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
		    name = excluded.name,
		    parent_slug = excluded.parent_slug,
		    feature_character = excluded.feature_character,
		    feature_faction = excluded.feature_faction,
		    feature_quest_builder = excluded.feature_quest_builder,
		    feature_mirror = excluded.feature_mirror`,
		strings.TrimSpace(ev.Slug),
		ev.Name,
		strings.TrimSpace(ev.ParentSlug),
		boolToInt(ev.Features.Character),
		boolToInt(ev.Features.Faction),
		boolToInt(ev.Features.QuestBuilder),
		boolToInt(ev.Features.Mirror),
	)
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// PutRun stores or replaces a run by id.
func (s *Store) PutRun(ctx context.Context, run event.Run) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := run.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO runs (id, event_slug, number)
		 VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    number = excluded.number`,
		run.ID,
		strings.TrimSpace(run.EventSlug),
		run.Number,
	)
	if err != nil {
		return fmt.Errorf("put run: %w", err)
	}
	return nil
}

// SetConfig stores a per-event config value.
func (s *Store) SetConfig(ctx context.Context, eventSlug, key, value string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	eventSlug = strings.TrimSpace(eventSlug)
	key = strings.TrimSpace(key)
	if eventSlug == "" || key == "" {
		return fmt.Errorf("event slug and config key are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO event_configs (event_slug, key, value)
		 VALUES (?, ?, ?)
		 ON CONFLICT(event_slug, key) DO UPDATE SET value = excluded.value`,
		eventSlug,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
