package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/OussamaHaimour/chatbot-HCP/models"
)

var ErrNotFound = errors.New("not found")

// Store wraps the shared bun handle with the queries the services need.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) CreateFile(ctx context.Context, file *models.File) error {
	_, err := s.db.NewInsert().Model(file).Exec(ctx)
	return err
}

func (s *Store) InsertChunk(ctx context.Context, chunk *models.Chunk) error {
	_, err := s.db.NewInsert().Model(chunk).Exec(ctx)
	return err
}

func (s *Store) ListFiles(ctx context.Context, userID int64) ([]models.FileInfo, error) {
	var files []models.FileInfo
	err := s.db.NewSelect().
		Model((*models.File)(nil)).
		Column("id", "file_name", "file_type", "created_at").
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC").
		Scan(ctx, &files)
	return files, err
}

// DeleteFile removes a file owned by userID together with its chunks and any
// images attached to those chunks. Deletion order follows the foreign keys;
// each statement commits on its own, matching the non-transactional ingestion
// semantics.
func (s *Store) DeleteFile(ctx context.Context, fileID, userID int64) error {
	exists, err := s.db.NewSelect().
		Model((*models.File)(nil)).
		Where("f.id = ? AND user_id = ?", fileID, userID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM images WHERE chunk_id IN (SELECT id FROM chunks WHERE file_id = ?)`, fileID); err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// TopCuratedChunks returns the best-scoring chunks from curator-owned files,
// ordered by cosine similarity descending. Thresholding is left to the caller.
func (s *Store) TopCuratedChunks(ctx context.Context, queryVec []float32, limit int) ([]models.ScoredChunk, error) {
	var results []models.ScoredChunk
	err := s.db.NewSelect().
		ColumnExpr("c.chunk_text, c.source_type, c.page_number, c.processing_method, f.file_name").
		ColumnExpr("1 - (c.embedding <=> ?) AS similarity", queryVec).
		TableExpr("chunks AS c").
		Join("JOIN files AS f ON c.file_id = f.id").
		Join("JOIN users AS u ON f.user_id = u.id").
		Where("u.role = ?", models.RoleCurator).
		OrderExpr("similarity DESC").
		Limit(limit).
		Scan(ctx, &results)
	return results, err
}

// TopOwnedChunks is the personal-tier counterpart, restricted to files owned
// by the requesting user.
func (s *Store) TopOwnedChunks(ctx context.Context, queryVec []float32, userID int64, limit int) ([]models.ScoredChunk, error) {
	var results []models.ScoredChunk
	err := s.db.NewSelect().
		ColumnExpr("c.chunk_text, c.source_type, c.page_number, c.processing_method, f.file_name").
		ColumnExpr("1 - (c.embedding <=> ?) AS similarity", queryVec).
		TableExpr("chunks AS c").
		Join("JOIN files AS f ON c.file_id = f.id").
		Where("f.user_id = ?", userID).
		OrderExpr("similarity DESC").
		Limit(limit).
		Scan(ctx, &results)
	return results, err
}

func (s *Store) AppendConversation(ctx context.Context, turn *models.Conversation) error {
	_, err := s.db.NewInsert().Model(turn).Exec(ctx)
	return err
}

func (s *Store) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	var turns []models.Conversation
	err := s.db.NewSelect().
		Model(&turns).
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC").
		Scan(ctx)
	return turns, err
}
