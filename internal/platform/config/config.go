// Package config reads server settings from the environment, optionally
// backed by .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSigningKey is used when JWT_SIGNING_KEY is unset outside production.
const DevSigningKey = "dev-secret-key-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration

	Auth         Auth
	Database     Database
	Redis        Redis
	Kafka        Kafka
	Verification Verification
	Demo         Demo
	Audit        Audit
}

type Auth struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
	TokenTTL      time.Duration
}

// Database is disabled when URL is empty; stores are then in memory.
type Database struct {
	URL string
}

// Redis is disabled when URL is empty; demo sessions then live in memory.
type Redis struct {
	URL string
}

// Kafka is disabled when Brokers is empty; audit events stay local.
type Kafka struct {
	Brokers    string
	AuditTopic string
}

type Verification struct {
	ScanDelay   time.Duration
	ManualDelay time.Duration
}

type Demo struct {
	SessionTTL time.Duration
	// SeedOwner, when set, gets a sample wallet at start-up.
	SeedOwner string
}

type Audit struct {
	// Buffer > 0 makes audit publishing asynchronous.
	Buffer int
}

// Production reports whether the server runs in production.
func (s Server) Production() bool {
	return s.Environment == "production"
}

// Load reads the given .env files (default ".env"; missing files are
// skipped) and then the process environment, which wins over file values.
func Load(files ...string) (Server, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fileEnv := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Server{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			fileEnv[k] = v
		}
	}
	return fromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	r := reader{lookup: lookup}
	cfg := Server{
		Addr:            r.string("IDENTRUST_ADDR", ":8080"),
		Environment:     r.string("ENVIRONMENT", "development"),
		LogLevel:        r.level("LOG_LEVEL", slog.LevelInfo),
		ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		RequestTimeout:  r.duration("REQUEST_TIMEOUT", 30*time.Second),
		Auth: Auth{
			JWTSigningKey: r.string("JWT_SIGNING_KEY", ""),
			Issuer:        r.string("JWT_ISSUER", "identrust"),
			Audience:      r.string("JWT_AUDIENCE", "identrust-wallet"),
			TokenTTL:      r.duration("TOKEN_TTL", 24*time.Hour),
		},
		Database: Database{URL: r.string("DATABASE_URL", "")},
		Redis:    Redis{URL: r.string("REDIS_URL", "")},
		Kafka: Kafka{
			Brokers:    r.string("KAFKA_BROKERS", ""),
			AuditTopic: r.string("KAFKA_AUDIT_TOPIC", "identrust.verifications"),
		},
		Verification: Verification{
			ScanDelay:   r.duration("SCAN_DELAY", 2*time.Second),
			ManualDelay: r.duration("MANUAL_VERIFY_DELAY", 1500*time.Millisecond),
		},
		Demo: Demo{
			SessionTTL: r.duration("DEMO_SESSION_TTL", 30*time.Minute),
			SeedOwner:  r.string("SEED_DEMO_OWNER", ""),
		},
		Audit: Audit{Buffer: r.int("AUDIT_BUFFER", 0)},
	}
	if err := errors.Join(r.errs...); err != nil {
		return Server{}, err
	}

	if cfg.Auth.JWTSigningKey == "" {
		if cfg.Production() {
			return Server{}, errors.New("JWT_SIGNING_KEY is required in production")
		}
		cfg.Auth.JWTSigningKey = DevSigningKey
	}
	return cfg, nil
}

// reader collects parse errors so every bad variable is reported at once.
type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) string(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *reader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid non-negative integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) level(key string, def slog.Level) slog.Level {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid log level %q", key, v))
		return def
	}
	return l
}
