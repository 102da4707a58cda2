package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"owzars-commerce/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service is the process-wide database handle. It is acquired once at
// startup and injected into repositories; nothing else opens connections.
type Service struct {
	db *sql.DB
}

// New opens a connection pool against the configured Postgres instance.
func New(cfg config.DatabaseConfig) (*Service, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
	)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Service{db: db}, nil
}

// DB exposes the underlying pool for repositories and migrations.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Health returns a snapshot of pool health for the health endpoint.
func (s *Service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	health := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	stats := s.db.Stats()
	health["status"] = "up"
	health["open_connections"] = strconv.Itoa(stats.OpenConnections)
	health["in_use"] = strconv.Itoa(stats.InUse)
	health["idle"] = strconv.Itoa(stats.Idle)

	return health
}

// Close releases the connection pool.
func (s *Service) Close() error {
	return s.db.Close()
}
