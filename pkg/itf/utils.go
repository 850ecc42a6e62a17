// Package itf holds helpers for integration tests that need a real
// PostgreSQL database.
package itf

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/jjwprotozoa/dmoc-sub000/migrations"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
)

// PostgreSQL rejects identifiers longer than 63 bytes.
const maxDBNameLength = 63

func NewPool(dbOpts string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dbOpts)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return pool, nil
}

// sanitizeDBName turns a test name into a valid database name. Names over
// the length limit keep a prefix plus a short hash of the original.
func sanitizeDBName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		sanitized = "test_db"
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "t_" + sanitized
	}
	if len(sanitized) <= maxDBNameLength {
		return sanitized
	}

	sum := sha256.Sum256([]byte(name))
	suffix := fmt.Sprintf("_%x", sum[:4])
	return strings.TrimRight(sanitized[:maxDBNameLength-len(suffix)], "_") + suffix
}

func adminConnString() string {
	c := configuration.Use()
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=postgres password=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
	)
}

// CreateDB drops and recreates the database derived from name.
func CreateDB(name string) error {
	dbName := sanitizeDBName(name)

	db, err := sql.Open("postgres", adminConnString())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[WARNING] Error closing CreateDB connection: %v", err)
		}
	}()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		return err
	}
	return nil
}

func DbOpts(name string) string {
	c := configuration.Use()
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, sanitizeDBName(name), c.Database.Password,
	)
}

func IsCI() bool {
	return strings.TrimSpace(os.Getenv("CI")) != "" ||
		strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true")
}

func CanDialPostgres(tb testing.TB) bool {
	tb.Helper()

	cfg := configuration.Use()
	host := strings.TrimSpace(cfg.Database.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Database.Port)
	if port == "" {
		port = "5432"
	}

	dialer := &net.Dialer{Timeout: 250 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// NewMigratedPool creates a fresh database named after the test, applies
// all migrations and returns a pool for it. The test is skipped when
// Postgres is unreachable, and fails instead on CI.
func NewMigratedPool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	if !CanDialPostgres(tb) {
		if IsCI() {
			tb.Fatalf("postgres is not reachable (DB_HOST/DB_PORT).")
		}
		tb.Skip("postgres is not reachable; skipping integration test")
	}

	if err := CreateDB(tb.Name()); err != nil {
		tb.Fatalf("create database: %v", err)
	}
	pool, err := NewPool(DbOpts(tb.Name()))
	if err != nil {
		tb.Fatalf("open pool: %v", err)
	}
	tb.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()
	if err := migrations.Up(context.Background(), db, nil); err != nil {
		tb.Fatalf("apply migrations: %v", err)
	}
	return pool
}

// CreateTestTenant inserts a tenant row and returns its id.
func CreateTestTenant(ctx context.Context, pool *pgxpool.Pool, name string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := pool.Exec(
		ctx,
		"INSERT INTO tenants (id, name, created_at, updated_at) VALUES ($1, $2, $3, $3)",
		id, name, time.Now(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create test tenant: %w", err)
	}
	return id, nil
}
