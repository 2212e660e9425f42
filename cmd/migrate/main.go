package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/ideaforge/backend/config"
	"github.com/pageza/ideaforge/backend/internal/logging"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to database.migrations_dir)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.Driver != "postgres" {
		logger.Fatal("migrations only apply to postgres; sqlite is migrated by the server", zap.String("driver", cfg.Database.Driver))
	}

	migrationsDir := *dir
	if migrationsDir == "" {
		migrationsDir = cfg.Database.MigrationsDir
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.Database.URL()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	m := &migrator{db: db, dir: migrationsDir, logger: logger}
	if err := m.ensureTable(ctx); err != nil {
		logger.Fatal("failed to prepare migrations table", zap.Error(err))
	}

	if *rollback {
		if err := m.rollback(ctx); err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
		return
	}
	if err := m.up(ctx); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("all migrations applied successfully")
}

type migrator struct {
	db     *sql.DB
	dir    string
	logger *zap.Logger
}

// ensureTable creates the bookkeeping table shared with the server's
// startup migrations.
func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (m *migrator) files() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		out = append(out, name)
	}
	// Sort files to apply in order
	sort.Strings(out)
	return out, nil
}

func (m *migrator) up(ctx context.Context) error {
	files, err := m.files()
	if err != nil {
		return err
	}

	for _, name := range files {
		var applied bool
		err := m.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)", name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			m.logger.Info("migration already applied", zap.String("name", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if err := m.inTx(ctx, string(content), "INSERT INTO migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		m.logger.Info("applied migration", zap.String("name", name))
	}
	return nil
}

func (m *migrator) rollback(ctx context.Context) error {
	var name string
	err := m.db.QueryRowContext(ctx, "SELECT name FROM migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		m.logger.Info("no migrations to rollback")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(m.dir, strings.TrimSuffix(name, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return fmt.Errorf("failed to read rollback file: %w", err)
	}
	if err := m.inTx(ctx, string(content), "DELETE FROM migrations WHERE name = $1", name); err != nil {
		return fmt.Errorf("failed to roll back %s: %w", name, err)
	}
	m.logger.Info("rolled back migration", zap.String("name", name))
	return nil
}

// inTx runs a migration script and its bookkeeping statement atomically
func (m *migrator) inTx(ctx context.Context, script, record, name string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, record, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
