package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/landerp/backend/migrations"
	"go.uber.org/zap"
)

// ErrDirty is returned when a previous run failed half way. The schema must
// be repaired by hand and the version forced before migrating again.
var ErrDirty = errors.New("database schema is dirty")

// Migrator applies the schema of the land sales database
type Migrator struct {
	migrate *migrate.Migrate
	source  source.Driver
	logger  *zap.Logger
}

type Option func(*postgres.Config)

// WithMigrationsTable overrides the default schema_migrations table
func WithMigrationsTable(table string) Option {
	return func(c *postgres.Config) { c.MigrationsTable = table }
}

// WithStatementTimeout bounds every migration statement
func WithStatementTimeout(d time.Duration) Option {
	return func(c *postgres.Config) { c.StatementTimeout = d }
}

// Embedded returns the migrations compiled into the binary
func Embedded() fs.FS {
	return migrations.FS
}

// Dir returns the migrations of a directory on disk
func Dir(path string) fs.FS {
	return os.DirFS(path)
}

// New creates a Migrator over an open postgres connection. fsys holds the
// *.up.sql / *.down.sql pairs, usually Embedded() or Dir(path).
func New(db *sql.DB, fsys fs.FS, logger *zap.Logger, opts ...Option) (*Migrator, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	cfg := &postgres.Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	driver, err := postgres.WithInstance(db, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, source: src, logger: logger}, nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	return m.apply("up", m.migrate.Up)
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	return m.apply("down", m.migrate.Down)
}

// Steps applies n migrations (positive = up, negative = down)
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %d", n), func() error { return m.migrate.Steps(n) })
}

// GoTo migrates to a specific version
func (m *Migrator) GoTo(version uint) error {
	return m.apply(fmt.Sprintf("goto %d", version), func() error { return m.migrate.Migrate(version) })
}

// apply refuses to touch a dirty schema, runs fn and logs the resulting
// version. ErrNoChange is not an error.
func (m *Migrator) apply(op string, fn func() error) error {
	from, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w at version %d, run 'migrate force <version>' after repairing it", ErrDirty, from)
	}

	m.logger.Info("Running migrations", zap.String("op", op), zap.Uint("from_version", from))
	err = fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	to, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migrations completed",
		zap.String("op", op),
		zap.Uint("from_version", from),
		zap.Uint("version", to),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Version returns the current migration version, 0 when none was applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Pending lists the source versions above the applied one
func (m *Migrator) Pending() ([]uint, error) {
	current, _, err := m.Version()
	if err != nil {
		return nil, err
	}
	return pendingVersions(m.source, current)
}

func pendingVersions(src source.Driver, current uint) ([]uint, error) {
	var pending []uint
	v, err := src.First()
	for err == nil {
		if v > current {
			pending = append(pending, v)
		}
		v, err = src.Next(v)
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
		return pending, nil
	}
	return nil, fmt.Errorf("failed to read migration source: %w", err)
}

// Force sets the migration version without running migrations
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Drop drops every table, sequence and the version table
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping database - all data will be lost")
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	return nil
}

func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
