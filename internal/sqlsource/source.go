// Package sqlsource loads a database table into the parser's grid shape.
//
// PostgreSQL goes through a pgx connection pool; MySQL and SQLite go through
// database/sql. The engine is picked from the URL scheme. The source is read
// only: it runs one bounded SELECT per import and writes nothing back.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDisabled is returned by a nil Source.
var ErrDisabled = errors.New("import source disabled")

// Engine names a supported database.
type Engine string

const (
	EnginePostgres Engine = "postgres"
	EngineMySQL    Engine = "mysql"
	EngineSQLite   Engine = "sqlite"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxConns     = 4
	DefaultQueryTimeout = 15 * time.Second
	DefaultRowLimit     = 10000
)

// Config configures a Source.
type Config struct {
	URL          string
	MaxConns     int
	QueryTimeout time.Duration
	RowLimit     int
}

// Source imports tables from one database.
type Source struct {
	engine       Engine
	pool         *pgxpool.Pool
	db           *sql.DB
	queryTimeout time.Duration
	rowLimit     int
}

// Open connects to the database named by cfg.URL and verifies the
// connection.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = DefaultRowLimit
	}

	engine, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	src := &Source{
		engine:       engine,
		queryTimeout: cfg.QueryTimeout,
		rowLimit:     cfg.RowLimit,
	}

	switch engine {
	case EnginePostgres:
		poolConfig, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse database config: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.MaxConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		src.pool = pool
	default:
		db, err := sql.Open(driverName[engine], dsn)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxConns)
		if engine == EngineSQLite {
			// Each connection to :memory: is its own database.
			db.SetMaxOpenConns(1)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		src.db = db
	}

	slog.Info("import source connected", "engine", string(engine), "dsn", SanitizeDSN(cfg.URL))
	return src, nil
}

// Engine returns the database engine, or "" for a nil Source.
func (s *Source) Engine() Engine {
	if s == nil {
		return ""
	}
	return s.engine
}

// Enabled reports whether s can import.
func (s *Source) Enabled() bool {
	return s != nil
}

// Close releases the connections.
func (s *Source) Close() {
	if s == nil {
		return
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
