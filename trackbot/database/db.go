package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"log/slog"

	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultRetryInterval = time.Second

	// SchemaVersion is bumped when the schema or migrations change.
	SchemaVersion = "1.0.0"
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Probe reachability before handing the address to the pool
	var conn net.Conn
	var err error

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	for i := 0; i < config.MaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, config.NetworkDialTimeout)
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", config.MaxRetries, err)
	}
	defer conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(pool)}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pool.Config().ConnConfig.User,
		pool.Config().ConnConfig.Password,
		pool.Config().ConnConfig.Host,
		pool.Config().ConnConfig.Port,
		pool.Config().ConnConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

// Connected reports whether the handle is usable. Repositories fail fast
// on this before touching storage.
func (db *DB) Connected() bool {
	return db != nil && db.bunDB != nil
}

// InitializeSchema creates all required tables, constraints and indexes,
// seeds the settings singleton row and records the schema version.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.Game)(nil),
		(*models.Banner)(nil),
		(*models.PullEntry)(nil),
		(*models.Session)(nil),
		(*models.SessionBreak)(nil),
		(*models.Settings)(nil),
		(*models.Meta)(nil),
		(*models.GameCurrency)(nil),
		(*models.CurrencyLog)(nil),
	}

	for _, model := range tables {
		_, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	constraints := []string{
		// Settings stays a singleton by construction
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'settings_single_row'
			) THEN
				ALTER TABLE settings ADD CONSTRAINT settings_single_row CHECK (id = 1);
			END IF;
		END $$;`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'banners_game_id_fkey'
			) THEN
				ALTER TABLE banners ADD CONSTRAINT banners_game_id_fkey
					FOREIGN KEY (game_id) REFERENCES games(id);
			END IF;
		END $$;`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'pull_history_banner_id_fkey'
			) THEN
				ALTER TABLE pull_history ADD CONSTRAINT pull_history_banner_id_fkey
					FOREIGN KEY (banner_id) REFERENCES banners(id);
				ALTER TABLE pull_history ADD CONSTRAINT pull_history_game_id_fkey
					FOREIGN KEY (game_id) REFERENCES games(id);
			END IF;
		END $$;`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'session_breaks_session_id_fkey'
			) THEN
				ALTER TABLE session_breaks ADD CONSTRAINT session_breaks_session_id_fkey
					FOREIGN KEY (session_id) REFERENCES sessions(id);
			END IF;
		END $$;`,
	}

	for _, c := range constraints {
		if _, err := db.ExecWithLog(ctx, c); err != nil {
			return fmt.Errorf("failed to apply constraint: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_banners_game_id ON banners(game_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_banners_name ON banners(name);",
		"CREATE INDEX IF NOT EXISTS idx_pull_history_banner_id ON pull_history(banner_id);",
		"CREATE INDEX IF NOT EXISTS idx_pull_history_game_id ON pull_history(game_id);",
		"CREATE INDEX IF NOT EXISTS idx_pull_history_timestamp ON pull_history(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_end_time ON sessions(end_time);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_open ON sessions(channel_id) WHERE end_time IS NULL;",
		"CREATE INDEX IF NOT EXISTS idx_session_breaks_session_id ON session_breaks(session_id);",
		"CREATE INDEX IF NOT EXISTS idx_session_breaks_open ON session_breaks(session_id) WHERE finished = false;",
		"CREATE INDEX IF NOT EXISTS idx_currency_logs_game_id ON currency_logs(game_id, created_at);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.seedSettings(ctx); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	if err := db.recordSchemaVersion(ctx); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

func (db *DB) seedSettings(ctx context.Context) error {
	_, err := db.ExecWithLog(ctx, `
		INSERT INTO settings (id, pagination_size, features_enabled)
		VALUES (1, 10, '{}')
		ON CONFLICT (id) DO NOTHING;
	`)
	return err
}

func (db *DB) recordSchemaVersion(ctx context.Context) error {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM meta WHERE version = $1`, SchemaVersion).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		_, err = db.ExecWithLog(ctx,
			`UPDATE meta SET last_modified = CURRENT_TIMESTAMP WHERE version = $1`, SchemaVersion)
		return err
	}
	_, err = db.ExecWithLog(ctx,
		`INSERT INTO meta (version, created_at) VALUES ($1, CURRENT_TIMESTAMP)`, SchemaVersion)
	return err
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return rows, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "query"),
		slog.String("query", sql),
		slog.Duration("took", duration),
	)
	return rows, nil
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}

	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}

	return nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}
