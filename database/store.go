package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
)

// Store handles all reads and writes against the documents and videos tables.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on top of an already connected gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InsertDocument inserts a single document embedding row. A duplicate
// (media_record_id, page) fails with a UniquenessViolationError; an embedding
// of the wrong dimension is rejected before reaching the database.
func (s *Store) InsertDocument(ctx context.Context, entry models.DocumentEmbedding) error {
	return insertDocument(s.db.WithContext(ctx), entry)
}

// InsertVideo inserts a single video embedding row. Same error contract as
// InsertDocument, keyed by (media_record_id, start_time).
func (s *Store) InsertVideo(ctx context.Context, entry models.VideoEmbedding) error {
	return insertVideo(s.db.WithContext(ctx), entry)
}

// SaveDocumentBatch persists all rows of one ingestion job inside a single
// transaction, so a failure partway through leaves no partially-ingested
// record behind.
func (s *Store) SaveDocumentBatch(ctx context.Context, entries []models.DocumentEmbedding) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := insertDocument(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveVideoBatch persists all rows of one ingestion job inside a single
// transaction.
func (s *Store) SaveVideoBatch(ctx context.Context, entries []models.VideoEmbedding) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := insertVideo(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByMediaRecord removes every row for the media record from both tables.
// The two deletes are intentionally independent statements, not one
// transaction. Idempotent: deleting an id with no rows is a no-op.
func (s *Store) DeleteByMediaRecord(ctx context.Context, mediaRecordID uuid.UUID) error {
	if err := s.db.WithContext(ctx).
		Where("media_record_id = ?", mediaRecordID).
		Delete(&models.DocumentEmbedding{}).Error; err != nil {
		return fmt.Errorf("delete document embeddings: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Where("media_record_id = ?", mediaRecordID).
		Delete(&models.VideoEmbedding{}).Error; err != nil {
		return fmt.Errorf("delete video embeddings: %w", err)
	}

	return nil
}

// SearchDocuments returns up to limit document rows whose media record is in
// whitelist and not in blacklist, scored by cosine distance to queryEmbedding
// and ordered ascending. An empty whitelist matches no rows, so the result is
// always empty; that is the membership contract, not a shortcut.
func (s *Store) SearchDocuments(
	ctx context.Context, queryEmbedding []float32, whitelist, blacklist []uuid.UUID, limit int,
) ([]models.DocumentHit, error) {
	if len(whitelist) == 0 || limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT media_record_id, page, text, embedding <=> ? AS score
		FROM documents
		WHERE media_record_id IN ?`
	args := []any{pgvector.NewVector(queryEmbedding), whitelist}

	if len(blacklist) > 0 {
		query += ` AND media_record_id NOT IN ?`
		args = append(args, blacklist)
	}

	query += ` ORDER BY score LIMIT ?`
	args = append(args, limit)

	var hits []models.DocumentHit
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	return hits, nil
}

// SearchVideos is the videos-table counterpart of SearchDocuments.
func (s *Store) SearchVideos(
	ctx context.Context, queryEmbedding []float32, whitelist, blacklist []uuid.UUID, limit int,
) ([]models.VideoHit, error) {
	if len(whitelist) == 0 || limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT media_record_id, start_time, screen_text, transcript, embedding <=> ? AS score
		FROM videos
		WHERE media_record_id IN ?`
	args := []any{pgvector.NewVector(queryEmbedding), whitelist}

	if len(blacklist) > 0 {
		query += ` AND media_record_id NOT IN ?`
		args = append(args, blacklist)
	}

	query += ` ORDER BY score LIMIT ?`
	args = append(args, limit)

	var hits []models.VideoHit
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}

	return hits, nil
}

func insertDocument(tx *gorm.DB, entry models.DocumentEmbedding) error {
	if err := validateDimension(entry.Embedding); err != nil {
		return err
	}

	if err := tx.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewUniquenessViolationError("documents",
				fmt.Sprintf("document embedding for media record %s page %d already exists",
					entry.MediaRecordID, entry.Page))
		}
		return fmt.Errorf("insert document embedding: %w", err)
	}

	return nil
}

func insertVideo(tx *gorm.DB, entry models.VideoEmbedding) error {
	if err := validateDimension(entry.Embedding); err != nil {
		return err
	}

	if err := tx.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewUniquenessViolationError("videos",
				fmt.Sprintf("video embedding for media record %s at %ds already exists",
					entry.MediaRecordID, entry.StartTime))
		}
		return fmt.Errorf("insert video embedding: %w", err)
	}

	return nil
}

func validateDimension(vec pgvector.Vector) error {
	if got := len(vec.Slice()); got != models.EmbeddingDim {
		return apperrors.NewValidationError("embedding",
			fmt.Sprintf("embedding has dimension %d, want %d", got, models.EmbeddingDim))
	}

	return nil
}
