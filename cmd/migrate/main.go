// Command migrate manages the land sales database schema
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/landerp/backend/internal/infrastructure/logger"
	"github.com/landerp/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// schemaCommand runs against a live postgres connection
type schemaCommand func(m *migration.Migrator, args []string, log *zap.Logger) error

var schemaCommands = map[string]schemaCommand{
	"up":      func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	"down":    func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	"step":    stepCommand,
	"goto":    gotoCommand,
	"version": versionCommand,
	"pending": pendingCommand,
	"force":   forceCommand,
	"drop":    dropCommand,
}

type options struct {
	path     string
	logLevel string
}

func main() {
	var opts options
	flag.StringVar(&opts.path, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	err = dispatch(opts, args[0], args[1:], log)
	_ = logger.Sync(log)
	if err != nil {
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func dispatch(opts options, command string, args []string, log *zap.Logger) error {
	switch command {
	case "create":
		return createCommand(opts.path, args, log)
	case "list":
		source, err := sourceFS(opts.path, log)
		if err != nil {
			return err
		}
		return listCommand(source, log)
	}

	cmd, ok := schemaCommands[command]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
	source, err := sourceFS(opts.path, log)
	if err != nil {
		return err
	}
	return withMigrator(source, log, func(m *migration.Migrator) error {
		return cmd(m, args, log)
	})
}

// withMigrator opens the configured postgres database for the duration of fn
func withMigrator(source fs.FS, log *zap.Logger, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("the sqlite driver migrates itself on startup; migrate only targets postgres")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, source, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

// sourceFS picks the on-disk directory when one is given, else the embedded set
func sourceFS(path string, log *zap.Logger) (fs.FS, error) {
	if path == "" {
		log.Debug("Using embedded migrations")
		return migration.Embedded(), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	log.Info("Using migrations directory", zap.String("path", abs))
	return migration.Dir(abs), nil
}

func createCommand(path string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("migration name required: migrate create <name> [description]")
	}
	if path == "" {
		path = defaultMigrationsPath
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listCommand(source fs.FS, log *zap.Logger) error {
	names, err := migration.ListMigrations(source)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

func stepCommand(m *migration.Migrator, args []string, _ *zap.Logger) error {
	n, err := intArg(args, "step count")
	if err != nil {
		return err
	}
	return m.Steps(n)
}

func gotoCommand(m *migration.Migrator, args []string, _ *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("version required: migrate goto <version>")
	}
	version, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	return m.GoTo(uint(version))
}

func versionCommand(m *migration.Migrator, _ []string, log *zap.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func pendingCommand(m *migration.Migrator, _ []string, log *zap.Logger) error {
	pending, err := m.Pending()
	if err != nil {
		return err
	}
	log.Info("Pending migrations", zap.Int("count", len(pending)))
	for _, v := range pending {
		fmt.Println("  -", v)
	}
	return nil
}

func forceCommand(m *migration.Migrator, args []string, _ *zap.Logger) error {
	version, err := intArg(args, "version")
	if err != nil {
		return err
	}
	return m.Force(version)
}

func dropCommand(m *migration.Migrator, args []string, _ *zap.Logger) error {
	if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
		return errors.New("drop cancelled, use 'migrate drop -confirm' to confirm")
	}
	return m.Drop()
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Println(`Land ERP database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  pending               List migration versions not yet applied
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: embedded migrations;
                        create writes to ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  LANDERP_DATABASE_HOST, LANDERP_DATABASE_PORT, LANDERP_DATABASE_USER,
  LANDERP_DATABASE_PASSWORD, LANDERP_DATABASE_DBNAME, LANDERP_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_plot_facing_index "Index plots by facing"
  migrate version`)
}
