// internal/adapters/db/migrations.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// MigrationConfig holds migration configuration. When SourcePath is empty
// the migrations compiled into the binary are used.
type MigrationConfig struct {
	DatabaseURL      string
	SourcePath       string
	TableName        string
	SchemaName       string
	ForceDirty       bool
	StatementTimeout time.Duration
}

// Migrator applies the analytics, reports and notifications schema.
type Migrator struct {
	migrate *migrate.Migrate
	config  *MigrationConfig
	logger  *slog.Logger
	db      *sql.DB
}

func NewMigrator(config *MigrationConfig, logger *slog.Logger) (*Migrator, error) {
	if config == nil {
		return nil, fmt.Errorf("migration config is required")
	}

	if config.TableName == "" {
		config.TableName = "schema_migrations"
	}
	if config.SchemaName == "" {
		config.SchemaName = "public"
	}
	if config.StatementTimeout == 0 {
		config.StatementTimeout = time.Minute * 10
	}

	db, err := sql.Open("pgx", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:  config.TableName,
		SchemaName:       config.SchemaName,
		StatementTimeout: config.StatementTimeout,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceName, sourceDriver, err := openSource(config.SourcePath)
	if err != nil {
		db.Close()
		return nil, err
	}

	m, err := migrate.NewWithInstance(sourceName, sourceDriver, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &Migrator{
		migrate: m,
		config:  config,
		logger:  logger.With(slog.String("component", "migrator")),
		db:      db,
	}, nil
}

func openSource(path string) (string, source.Driver, error) {
	if path == "" {
		d, err := iofs.New(embeddedMigrations, "migrations")
		if err != nil {
			return "", nil, fmt.Errorf("failed to create embedded source driver: %w", err)
		}
		return "iofs", d, nil
	}

	d, err := source.Open("file://" + path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open migration source %s: %w", path, err)
	}
	return "file", d, nil
}

// Up applies every migration newer than the recorded version. A dirty
// schema is refused unless ForceDirty is set.
func (m *Migrator) Up(ctx context.Context) error {
	status, err := StatusFromDB(ctx, m.db, m.config.SchemaName, m.config.TableName)
	if err != nil {
		return err
	}

	if status.IsDirty {
		if !m.config.ForceDirty {
			return fmt.Errorf("schema is dirty at version %d", status.CurrentVersion)
		}
		m.logger.WarnContext(ctx, "forcing dirty migration",
			slog.Uint64("version", uint64(status.CurrentVersion)))
		if err := m.migrate.Force(int(status.CurrentVersion)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if m.config.SourcePath == "" {
		pending, err := PendingVersions(status.CurrentVersion)
		if err != nil {
			return err
		}
		m.logger.InfoContext(ctx, "applying migrations",
			slog.Uint64("from_version", uint64(status.CurrentVersion)),
			slog.Any("pending", pending))
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.InfoContext(ctx, "schema up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if version, _, err := m.migrate.Version(); err == nil {
		m.logger.InfoContext(ctx, "migrations completed", slog.Uint64("version", uint64(version)))
	}
	return nil
}

// Close closes the migrator and releases resources
func (m *Migrator) Close() error {
	if m.migrate != nil {
		sourceErr, dbErr := m.migrate.Close()
		if sourceErr != nil || dbErr != nil {
			return fmt.Errorf("failed to close migrator - source: %v, db: %v", sourceErr, dbErr)
		}
	}

	// the postgres driver closes the *sql.DB it was handed
	m.logger.Info("migrator closed")
	return nil
}

// MigrationStatus represents the current status of migrations
type MigrationStatus struct {
	CurrentVersion uint               `json:"current_version"`
	IsDirty        bool               `json:"is_dirty"`
	Applied        []AppliedMigration `json:"applied"`
}

// AppliedMigration represents an applied migration
type AppliedMigration struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// StatusFromDB reads the migrations table. golang-migrate keeps a single row
// holding the current version.
func StatusFromDB(ctx context.Context, db *sql.DB, schema, table string) (*MigrationStatus, error) {
	query := fmt.Sprintf(`SELECT version, dirty FROM %s.%s ORDER BY version ASC`, schema, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	status := &MigrationStatus{Applied: make([]AppliedMigration, 0)}
	for rows.Next() {
		var applied AppliedMigration
		if err := rows.Scan(&applied.Version, &applied.Dirty); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		status.Applied = append(status.Applied, applied)
		status.CurrentVersion = applied.Version
		status.IsDirty = status.IsDirty || applied.Dirty
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migrations: %w", err)
	}

	return status, nil
}

// PendingVersions lists embedded migration versions above current.
func PendingVersions(current uint) ([]uint, error) {
	d, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	defer d.Close()

	pending := make([]uint, 0)
	v, err := d.First()
	for err == nil {
		if v > current {
			pending = append(pending, v)
		}
		v, err = d.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to walk migrations: %w", err)
	}

	return pending, nil
}

// RunMigrationsWithRetry keeps trying while the database is still coming up,
// backing off exponentially between attempts.
func RunMigrationsWithRetry(ctx context.Context, config *MigrationConfig, logger *slog.Logger, maxRetries int) error {
	attempt := 0
	apply := func() error {
		attempt++
		migrator, err := NewMigrator(config, logger)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		defer func() {
			if err := migrator.Close(); err != nil {
				logger.ErrorContext(ctx, "failed to close migrator", slog.String("error", err.Error()))
			}
		}()
		return migrator.Up(ctx)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxElapsedTime = 0

	var retries uint64
	if maxRetries > 1 {
		retries = uint64(maxRetries - 1)
	}

	err := backoff.RetryNotify(apply,
		backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx),
		func(err error, wait time.Duration) {
			logger.WarnContext(ctx, "migration attempt failed",
				slog.Int("attempt", attempt),
				slog.Duration("retry_in", wait),
				slog.String("error", err.Error()))
		})
	if err != nil {
		return fmt.Errorf("migrations failed after %d attempts: %w", attempt, err)
	}
	return nil
}
