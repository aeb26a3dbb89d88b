package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
)

// Connect opens the shared connection pool. The returned handle is constructed
// once in main and passed down; callers must Close it at shutdown.
func Connect(cfg *config.Config) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseURL)))

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.DatabaseDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// InitSchema creates the pgvector extension and all tables. The embedding
// column width must match the dimension returned by the embeddings API.
func InitSchema(ctx context.Context, db *bun.DB, vectorDim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			role VARCHAR(50) NOT NULL,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			file_name VARCHAR(255) NOT NULL,
			file_type TEXT NOT NULL,
			file_data BYTEA,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id SERIAL PRIMARY KEY,
			file_id INTEGER REFERENCES files(id),
			chunk_text TEXT NOT NULL,
			source_type TEXT NOT NULL,
			page_number INTEGER,
			processing_method TEXT DEFAULT 'text',
			embedding vector(%d),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, vectorDim),
		`CREATE TABLE IF NOT EXISTS images (
			id SERIAL PRIMARY KEY,
			chunk_id INTEGER REFERENCES chunks(id),
			image_data BYTEA,
			caption TEXT,
			is_chart BOOLEAN DEFAULT FALSE,
			position_info JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			thread_id VARCHAR(36) NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			sources_used JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}

	return nil
}
