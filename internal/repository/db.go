package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type Config struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is a database/sql handle together with the dialect it speaks.
type DB struct {
	sql    *sql.DB
	pool   *pgxpool.Pool
	driver string
	logger *slog.Logger
}

// Open connects to the configured driver. Postgres goes through a pgx pool
// wrapped as *sql.DB; sqlite uses the pure-Go modernc driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case common.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case common.DriverSQLite, "":
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown database driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "driver", common.DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.DatabaseError("parse dsn", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.DatabaseError("connect", err)
	}

	logger.Info("successfully connected to database")
	return &DB{
		sql:    stdlib.OpenDBFromPool(pool),
		pool:   pool,
		driver: common.DriverPostgres,
		logger: logger,
	}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "driver", common.DriverSQLite, "dsn", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, common.DatabaseError("sqlite: open", err)
	}
	// one connection: writers are serialized and :memory: databases stay shared
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, common.DatabaseError("sqlite: exec "+pragma, err)
		}
	}

	logger.Info("successfully connected to database")
	return &DB{sql: db, driver: common.DriverSQLite, logger: logger}, nil
}

// Driver reports the dialect in use.
func (db *DB) Driver() string { return db.driver }

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if err := db.sql.Close(); err != nil {
		db.logger.Error("failed to close database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.sql.PingContext(ctx); err != nil {
		db.logger.Error("database ping failed", "error", err)
		return common.DatabaseError("ping", err)
	}
	db.logger.Debug("database ping successful")
	return nil
}

// Migrate creates the tables when they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	ddl := sqliteMigration
	if db.driver == common.DriverPostgres {
		ddl = postgresMigration
	}
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return common.DatabaseError("migrate", err)
		}
	}
	db.logger.Info("database migrated", "driver", db.driver)
	return nil
}

// rebind rewrites '?' placeholders into the driver's positional form.
func (db *DB) rebind(query string) string {
	if db.driver != common.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sql.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sql.QueryRowContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sql.QueryContext(ctx, db.rebind(query), args...)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS invoice_file (
	id           TEXT PRIMARY KEY,
	source_path  TEXT NOT NULL,
	content_hash BLOB NOT NULL UNIQUE,
	filename     TEXT NOT NULL,
	file_ext     TEXT NOT NULL,
	file_size    INTEGER NOT NULL,
	uploaded_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS extract_job (
	id             TEXT PRIMARY KEY,
	file_id        TEXT NOT NULL REFERENCES invoice_file(id),
	record_id      TEXT,
	format         TEXT NOT NULL,
	status         TEXT NOT NULL,
	started_at     DATETIME NOT NULL,
	finished_at    DATETIME,
	error_message  TEXT,
	page_text      TEXT,
	method         TEXT,
	pages          INTEGER,
	extracted_json TEXT
);

CREATE TABLE IF NOT EXISTS invoice_record (
	id                 TEXT PRIMARY KEY,
	file_id            TEXT NOT NULL UNIQUE REFERENCES invoice_file(id),
	record_json        TEXT NOT NULL,
	balance_status     TEXT NOT NULL,
	balance_error      TEXT,
	calculated_balance INTEGER,
	balance_difference INTEGER,
	fee_rate           TEXT,
	processed_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extract_job_file_id ON extract_job(file_id);
CREATE INDEX IF NOT EXISTS idx_extract_job_status ON extract_job(status);
CREATE INDEX IF NOT EXISTS idx_invoice_record_processed_at ON invoice_record(processed_at);
`

const postgresMigration = `
CREATE TABLE IF NOT EXISTS invoice_file (
	id           UUID PRIMARY KEY,
	source_path  TEXT NOT NULL,
	content_hash BYTEA NOT NULL UNIQUE,
	filename     TEXT NOT NULL,
	file_ext     TEXT NOT NULL,
	file_size    INTEGER NOT NULL,
	uploaded_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS extract_job (
	id             UUID PRIMARY KEY,
	file_id        UUID NOT NULL REFERENCES invoice_file(id),
	record_id      UUID,
	format         TEXT NOT NULL,
	status         TEXT NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ,
	error_message  TEXT,
	page_text      TEXT,
	method         TEXT,
	pages          INTEGER,
	extracted_json JSONB
);

CREATE TABLE IF NOT EXISTS invoice_record (
	id                 UUID PRIMARY KEY,
	file_id            UUID NOT NULL UNIQUE REFERENCES invoice_file(id),
	record_json        JSONB NOT NULL,
	balance_status     TEXT NOT NULL,
	balance_error      TEXT,
	calculated_balance BIGINT,
	balance_difference BIGINT,
	fee_rate           NUMERIC,
	processed_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extract_job_file_id ON extract_job(file_id);
CREATE INDEX IF NOT EXISTS idx_extract_job_status ON extract_job(status);
CREATE INDEX IF NOT EXISTS idx_invoice_record_processed_at ON invoice_record(processed_at);
`
