// Package database opens the optional PostgreSQL pool through the pgx
// database/sql driver and applies the embedded migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"identrust/migrations"
)

var errNotConfigured = errors.New("database not configured")

type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// ConnectTimeout bounds the start-up ping.
	ConnectTimeout time.Duration
}

// DefaultConfig sizes the pool for a single wallet API instance.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

type Pool struct {
	db *sql.DB
}

// New opens and pings the database. It returns a nil pool when the URL is
// empty. When reg is non-nil the pool's sql.DBStats are exported.
func New(ctx context.Context, cfg Config, reg prometheus.Registerer) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if reg != nil {
		if err := reg.Register(collectors.NewDBStatsCollector(db, "identrust")); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register database metrics: %w", err)
		}
	}
	return &Pool{db: db}, nil
}

// Migrate applies the embedded schema. The statements are idempotent.
func (p *Pool) Migrate(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errNotConfigured
	}
	if err := migrations.Up(ctx, p.db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health pings the database; it is registered as a readiness check.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errNotConfigured
	}
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
