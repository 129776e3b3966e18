// Package redis builds the optional Redis client used for demo sessions.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Config configures the Redis connection. An empty URL disables Redis.
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns pool settings for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:          url,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

type poolMetrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	timeouts   prometheus.Counter
	staleConns prometheus.Counter
	totalConns prometheus.Gauge
	idleConns  prometheus.Gauge
}

func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	m := &poolMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identrust_redis_pool_hits_total",
			Help: "Number of times a connection was found in the pool",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identrust_redis_pool_misses_total",
			Help: "Number of times a connection was not found in the pool",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identrust_redis_pool_timeouts_total",
			Help: "Number of times a connection was not obtained due to timeout",
		}),
		staleConns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identrust_redis_pool_stale_conns_total",
			Help: "Number of stale connections removed from the pool",
		}),
		totalConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "identrust_redis_pool_total_conns",
			Help: "Number of total connections in the pool",
		}),
		idleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "identrust_redis_pool_idle_conns",
			Help: "Number of idle connections in the pool",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.timeouts, m.staleConns, m.totalConns, m.idleConns)
	}
	return m
}

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
	metrics   *poolMetrics
	lastStats *redis.PoolStats
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(ctx context.Context, cfg Config, reg prometheus.Registerer) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client, metrics: newPoolMetrics(reg)}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

// RecordPoolStats updates the pool metrics with current statistics.
func (c *Client) RecordPoolStats() {
	stats := c.PoolStats()

	c.metrics.totalConns.Set(float64(stats.TotalConns))
	c.metrics.idleConns.Set(float64(stats.IdleConns))

	var last redis.PoolStats
	if c.lastStats != nil {
		last = *c.lastStats
	}
	if stats.Hits > last.Hits {
		c.metrics.hits.Add(float64(stats.Hits - last.Hits))
	}
	if stats.Misses > last.Misses {
		c.metrics.misses.Add(float64(stats.Misses - last.Misses))
	}
	if stats.Timeouts > last.Timeouts {
		c.metrics.timeouts.Add(float64(stats.Timeouts - last.Timeouts))
	}
	if stats.StaleConns > last.StaleConns {
		c.metrics.staleConns.Add(float64(stats.StaleConns - last.StaleConns))
	}

	c.lastStats = stats
}

// RunPoolStats calls RecordPoolStats every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}
