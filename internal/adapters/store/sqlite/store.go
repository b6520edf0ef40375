// Package sqlite is the reference action executor: it persists validated
// entities to a SQLite database (pure Go driver) and lists them back per
// actor. The schema is managed by embedded golang-migrate migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.ActionStore   = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath keeps the database in process.
const MemoryPath = ":memory:"

// Store persists executed actions.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open connects to the database at cfg.Path, verifies the connection and
// applies pending migrations.
func Open(ctx context.Context, cfg *config.StoreConfig, logger *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if cfg.Path == MemoryPath {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "action store ready", slog.String("path", cfg.Path))
	return s, nil
}

func dsn(path string) string {
	if path == MemoryPath {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// migrate runs the embedded migrations up. The migrate instance is not
// closed because that would close s.db.
func (s *Store) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: creating migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite: creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Execute implements ports.ActionExecutor. Rejections of the entity itself
// are BUSINESS_LOGIC errors; database failures are UNKNOWN so their text is
// never shown to users.
func (s *Store) Execute(ctx context.Context, kind nutrition.EntityKind, entity nutrition.Entity, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.NewError(domain.KindBusinessLogic, "an actor is required to save an action")
	}
	if !kind.IsValid() || entity.Kind != kind || entity.IsZero() {
		return domain.NewError(domain.KindBusinessLogic,
			fmt.Sprintf("cannot save a %s action with this content", kind))
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return domain.NewError(domain.KindFormat, "encoding entity").WithCause(err)
	}

	rec := nutrition.ActionRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		ActorID:   actorID,
		Name:      entity.Name(),
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO actions (id, kind, actor_id, name, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.ActorID, rec.Name, string(rec.Payload), rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		logging.FromContextOr(ctx, s.logger).ErrorContext(ctx, "failed to save action",
			slog.String("operation", "Execute"),
			slog.String("actor_id", actorID),
			slog.String("entity_kind", kind.String()),
			slog.Any("error", err),
		)
		return domain.NewError(domain.KindUnknown, "saving action").WithCause(err)
	}

	logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "action saved",
		slog.String("action_id", rec.ID),
		slog.String("actor_id", actorID),
		slog.String("entity_kind", kind.String()),
	)
	return nil
}

// ListActions implements ports.ActionStore.
func (s *Store) ListActions(ctx context.Context, actorID string, limit int) ([]nutrition.ActionRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, actor_id, name, payload, created_at FROM actions
		 WHERE actor_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		actorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]nutrition.ActionRecord, 0)
	for rows.Next() {
		var (
			rec     nutrition.ActionRecord
			kind    string
			payload string
			created int64
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.ActorID, &rec.Name, &payload, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scanning action: %w", err)
		}
		rec.Kind = nutrition.EntityKind(kind)
		rec.Payload = json.RawMessage(payload)
		rec.CreatedAt = time.Unix(0, created).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating actions: %w", err)
	}
	return records, nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "store"
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
