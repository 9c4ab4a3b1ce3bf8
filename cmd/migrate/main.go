package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// One-time migration runner. Applies pending migrations/*.sql in filename
// order, each in its own transaction, and records them in schema_migrations.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		log.Fatalf("Failed to create schema_migrations table: %v", err)
	}

	applied := make(map[string]bool)
	rows, err := pool.Query(ctx, "SELECT filename FROM schema_migrations ORDER BY filename")
	if err != nil {
		log.Fatalf("Failed to read applied migrations: %v", err)
	}
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			log.Fatalf("Failed to scan migration row: %v", err)
		}
		applied[filename] = true
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to read applied migrations: %v", err)
	}
	log.Printf("Applied migrations: %d", len(applied))

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		log.Fatalf("Failed to list migration files: %v", err)
	}
	sort.Strings(files)
	log.Printf("Total migration files: %d", len(files))

	for _, path := range files {
		filename := filepath.Base(path)
		if applied[filename] {
			log.Printf("Skipping %s (already applied)", filename)
			continue
		}

		sql, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", filename, err)
		}

		log.Printf("Running %s...", filename)

		tx, err := pool.Begin(ctx)
		if err != nil {
			log.Fatalf("Failed to begin transaction for %s: %v", filename, err)
		}

		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			tx.Rollback(ctx)
			log.Fatalf("Migration %s failed: %v", filename, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", filename); err != nil {
			tx.Rollback(ctx)
			log.Fatalf("Failed to record %s: %v", filename, err)
		}
		if err := tx.Commit(ctx); err != nil {
			log.Fatalf("Failed to commit %s: %v", filename, err)
		}

		log.Printf("%s applied successfully", filename)
	}

	log.Println("All migrations completed successfully")
}
