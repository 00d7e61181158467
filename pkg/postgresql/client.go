package postgresql

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client is a pgxpool backed PostgreSQLClient. Queries run inside the
// transaction carried by ctx when there is one.
type Client struct {
	pool   *pgxpool.Pool
	config Config
}

// Config is the PostgreSQL client configuration.
type Config struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	Database string `env:"DATABASE" envDefault:"tradenet"`
	Username string `env:"USERNAME" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:""`

	SSLMode     string `env:"SSL_MODE" envDefault:"prefer"`
	SSLCert     string `env:"SSL_CERT"`
	SSLKey      string `env:"SSL_KEY"`
	SSLRootCert string `env:"SSL_ROOT_CERT"`

	MaxConns        int32         `env:"MAX_CONNS" envDefault:"20"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"15m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`

	StatementCacheCapacity int    `env:"STATEMENT_CACHE_CAPACITY" envDefault:"256"`
	ApplicationName        string `env:"APPLICATION_NAME" envDefault:"tradenet"`
	SearchPath             string `env:"SEARCH_PATH" envDefault:"public"`
}

var _ PostgreSQLClient = (*Client)(nil)

// NewClient opens a pool and verifies it with a ping. Zero pool settings keep
// the pgxpool defaults.
func NewClient(ctx context.Context, config Config) (PostgreSQLClient, error) {
	pgxConfig, err := pgxpool.ParseConfig(config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgresql config: %w", err)
	}

	if config.MaxConns > 0 {
		pgxConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		pgxConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		pgxConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		pgxConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}
	if config.ConnectTimeout > 0 {
		pgxConfig.ConnConfig.ConnectTimeout = config.ConnectTimeout
	}
	if config.StatementCacheCapacity > 0 {
		pgxConfig.ConnConfig.StatementCacheCapacity = config.StatementCacheCapacity
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgresql pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgresql: %w", err)
	}

	return &Client{pool: pool, config: config}, nil
}

// DSN renders the config as a postgres:// connection URL.
func (config Config) DSN() string {
	query := url.Values{}
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	query.Set("sslmode", sslMode)
	for key, value := range map[string]string{
		"sslcert":          config.SSLCert,
		"sslkey":           config.SSLKey,
		"sslrootcert":      config.SSLRootCert,
		"application_name": config.ApplicationName,
		"search_path":      config.SearchPath,
	} {
		if value != "" {
			query.Set(key, value)
		}
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config.Username, config.Password),
		Host:     config.Host + ":" + strconv.Itoa(config.Port),
		Path:     "/" + config.Database,
		RawQuery: query.Encode(),
	}
	return dsn.String()
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (c *Client) conn(ctx context.Context) querier {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return c.pool
}

// Stats returns connection pool statistics.
func (c *Client) Stats() *pgxpool.Stat { return c.pool.Stat() }

// DatabaseName returns the configured database.
func (c *Client) DatabaseName() string { return c.config.Database }

// Host returns the configured host.
func (c *Client) Host() string { return c.config.Host }

// Port returns the configured port.
func (c *Client) Port() int { return c.config.Port }

// Close closes the pool.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// Ping checks one pooled connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Exec runs a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn(ctx).Exec(ctx, sql, args...)
}

// Query runs a statement that returns rows.
func (c *Client) Query(ctx context.Context, sql string, args ...any) (RowsInterface, error) {
	rows, err := c.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return NewRowsWrapper(rows), nil
}

// QueryRow runs a statement expected to return at most one row.
func (c *Client) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn(ctx).QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the pool.
func (c *Client) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.pool.Begin(ctx)
}
