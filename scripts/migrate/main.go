// Command migrate applies the embedded PostgreSQL schema and verifies it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"sewa-attendance/internal/repository"
	"sewa-attendance/migrations"
)

var requiredTables = []string{"sewadars", "counters", "attendance_records"}

type Migrator struct {
	pool *pgxpool.Pool
}

func NewMigrator(ctx context.Context) (*Migrator, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not found in environment variables")
	}

	pool, err := repository.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Migrator{pool: pool}, nil
}

func (m *Migrator) checkConnection(ctx context.Context) error {
	log.Println("🔍 Checking PostgreSQL connection...")
	if err := m.pool.Ping(ctx); err != nil {
		return fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}
	log.Println("✅ PostgreSQL is reachable")
	return nil
}

func (m *Migrator) apply(ctx context.Context) error {
	scripts, err := migrations.PostgresScripts()
	if err != nil {
		return fmt.Errorf("error reading migration files: %w", err)
	}

	for _, s := range scripts {
		log.Printf("🔄 Applying %s\n", s.Name)
		if _, err := m.pool.Exec(ctx, s.SQL); err != nil {
			return fmt.Errorf("error executing %s: %w", s.Name, err)
		}
	}
	log.Printf("✅ Applied %d migration(s)\n", len(scripts))
	return nil
}

func (m *Migrator) verify(ctx context.Context) error {
	log.Println("🧪 Verifying schema...")
	for _, table := range requiredTables {
		var exists bool
		err := m.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("table %s is missing", table)
		}
		log.Printf("✅ Table '%s' verified\n", table)
	}
	return nil
}

func (m *Migrator) Run(ctx context.Context) error {
	log.Println("🔧 PostgreSQL Migration: Sewa Attendance Schema")
	log.Println("===============================================")

	if err := m.checkConnection(ctx); err != nil {
		return err
	}
	if err := m.apply(ctx); err != nil {
		return err
	}
	if err := m.verify(ctx); err != nil {
		return err
	}

	log.Println("🎉 Migration verified successfully!")
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	m, err := NewMigrator(ctx)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer m.pool.Close()

	if err := m.Run(ctx); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
}
