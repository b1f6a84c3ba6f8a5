package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/config"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/db"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
)

const (
	migrationAttempts    = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second
)

var retryablePgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

var errMemoryStore = errors.New("the in-process store has no schema; set GLITCH_DATABASE_URL to a PostgreSQL database")

const schemaMigrationsDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// migrator applies the SQL files of one directory in lexical order, recording
// each applied file in schema_migrations.
type migrator struct {
	conn   *pgxpool.Conn
	dir    string
	out    io.Writer
	logger *slog.Logger
}

func runMigrations(ctx context.Context, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	switch command {
	case "up", "status":
	case "down":
		return errors.New("down migrations are not supported")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}

	return withConnection(ctx, func(ctx context.Context, cfg config.Config, conn *pgxpool.Conn) error {
		dir, err := resolveDir(cfg.MigrationDir)
		if err != nil {
			return err
		}
		m := migrator{conn: conn, dir: dir, out: os.Stdout, logger: logging.FromContext(ctx)}
		if command == "status" {
			return m.status(ctx)
		}
		return m.up(ctx)
	})
}

func runSeed(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected seed name (e.g. dev)")
	}
	seedName := args[0]
	if !strings.HasSuffix(seedName, ".sql") {
		seedName += "_seed.sql"
	}

	return withConnection(ctx, func(ctx context.Context, cfg config.Config, conn *pgxpool.Conn) error {
		dir, err := resolveDir(cfg.SeedDir)
		if err != nil {
			return err
		}
		contents, err := os.ReadFile(filepath.Join(dir, seedName))
		if err != nil {
			return fmt.Errorf("read seed %s: %w", seedName, err)
		}
		if _, err := conn.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply seed %s: %w", seedName, err)
		}
		fmt.Fprintf(os.Stdout, "applied seed %s\n", seedName)
		return nil
	})
}

// withConnection loads configuration and hands fn a dedicated PostgreSQL
// connection for the duration of the call.
func withConnection(ctx context.Context, fn func(context.Context, config.Config, *pgxpool.Conn) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return errMemoryStore
	}

	logger := logging.New(cfg.LogLevel)
	ctx = logging.WithLogger(ctx, logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(ctx, cfg, conn)
}

func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return filepath.Join(wd, dir), nil
}

// sqlFiles lists the .sql files directly inside dir, sorted by name.
func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

// pending returns the files not yet present in applied, keeping their order.
func pending(files []string, applied map[string]struct{}) []string {
	var out []string
	for _, name := range files {
		if _, ok := applied[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (m migrator) applied(ctx context.Context) (map[string]struct{}, error) {
	if _, err := m.conn.Exec(ctx, schemaMigrationsDDL); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	rows, err := m.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("fetch applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(versions))
	for _, version := range versions {
		applied[version] = struct{}{}
	}
	return applied, nil
}

func (m migrator) status(ctx context.Context) error {
	files, err := sqlFiles(m.dir)
	if err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for _, name := range files {
		mark := " "
		if _, ok := applied[name]; ok {
			mark = "x"
		}
		fmt.Fprintf(m.out, "[%s] %s\n", mark, name)
	}
	return nil
}

func (m migrator) up(ctx context.Context) error {
	files, err := sqlFiles(m.dir)
	if err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	todo := pending(files, applied)
	if len(todo) == 0 {
		fmt.Fprintln(m.out, "no migrations to apply")
		return nil
	}

	for _, name := range todo {
		contents, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := m.apply(ctx, name, string(contents)); err != nil {
			return err
		}
		fmt.Fprintf(m.out, "applied migration %s\n", name)
	}
	return nil
}

// apply runs one migration in a serializable transaction, retrying transient
// PostgreSQL failures with exponential backoff.
func (m migrator) apply(ctx context.Context, name, contents string) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := pgx.BeginTxFunc(ctx, m.conn, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, contents); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil && !shouldRetryMigration(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			m.logger.Warn("transient migration failure", "migration", name, "attempt", attempt, "error", err)
		}
		return err
	}

	return backoff.Retry(operation, migrationBackoff(ctx))
}

func migrationBackoff(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = migrationBaseBackoff
	policy.MaxInterval = migrationMaxBackoff
	return backoff.WithContext(backoff.WithMaxRetries(policy, migrationAttempts-1), ctx)
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, pgx.ErrTxClosed) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryablePgErrorCodes[pgErr.Code]
		return ok
	}
	return false
}
