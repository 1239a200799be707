package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
	"github.com/coursekit/go-media-search/services"
)

// MediaResolver resolves a media record id to its type and download URL.
type MediaResolver interface {
	Resolve(ctx context.Context, mediaRecordID uuid.UUID) (services.MediaRecordInfo, error)
}

// DocumentGenerator produces per-page embeddings for a PDF behind a URL.
type DocumentGenerator interface {
	Generate(ctx context.Context, downloadURL string) ([]services.DocumentSegment, error)
}

// VideoGenerator produces per-section embeddings for a video behind a URL.
type VideoGenerator interface {
	Generate(ctx context.Context, downloadURL string) ([]services.VideoSegment, error)
}

// EmbeddingStore persists all rows of one ingestion job atomically.
type EmbeddingStore interface {
	SaveDocumentBatch(ctx context.Context, entries []models.DocumentEmbedding) error
	SaveVideoBatch(ctx context.Context, entries []models.VideoEmbedding) error
}

// Ingestor orchestrates one ingestion job: resolve the record, run the
// generator matching its type, persist the resulting rows in one transaction.
type Ingestor struct {
	resolver MediaResolver
	pdf      DocumentGenerator
	video    VideoGenerator
	store    EmbeddingStore
}

// NewIngestor wires an ingestor from its collaborators.
func NewIngestor(resolver MediaResolver, pdf DocumentGenerator, video VideoGenerator, store EmbeddingStore) *Ingestor {
	return &Ingestor{resolver: resolver, pdf: pdf, video: video, store: store}
}

// Ingest resolves and embeds one media record. An unknown record type fails
// with an UnsupportedRecordTypeError without inserting anything; a collaborator
// failure surfaces as an ExternalServiceError. Re-ingesting a record whose
// rows still exist fails with a UniquenessViolationError, so callers must
// delete first.
func (in *Ingestor) Ingest(ctx context.Context, mediaRecordID uuid.UUID) error {
	info, err := in.resolver.Resolve(ctx, mediaRecordID)
	if err != nil {
		return fmt.Errorf("resolve media record %s: %w", mediaRecordID, err)
	}

	slog.Info("ingesting media record",
		"media_record_id", mediaRecordID,
		"type", info.Type,
		"download_url", info.DownloadURL,
	)

	switch info.Type {
	case models.MediaTypeDocument, models.MediaTypePresentation:
		return in.ingestDocument(ctx, mediaRecordID, info.DownloadURL)
	case models.MediaTypeVideo:
		return in.ingestVideo(ctx, mediaRecordID, info.DownloadURL)
	default:
		return apperrors.NewUnsupportedRecordTypeError(string(info.Type))
	}
}

func (in *Ingestor) ingestDocument(ctx context.Context, mediaRecordID uuid.UUID, downloadURL string) error {
	segments, err := in.pdf.Generate(ctx, downloadURL)
	if err != nil {
		return fmt.Errorf("generate document embeddings: %w", err)
	}

	entries := make([]models.DocumentEmbedding, 0, len(segments))
	for _, segment := range segments {
		entries = append(entries, models.DocumentEmbedding{
			MediaRecordID: mediaRecordID,
			Page:          segment.Page,
			Text:          segment.Text,
			Embedding:     pgvector.NewVector(segment.Embedding),
		})
	}

	if err := in.store.SaveDocumentBatch(ctx, entries); err != nil {
		return fmt.Errorf("persist document embeddings: %w", err)
	}

	slog.Info("ingested document", "media_record_id", mediaRecordID, "pages", len(entries))

	return nil
}

func (in *Ingestor) ingestVideo(ctx context.Context, mediaRecordID uuid.UUID, downloadURL string) error {
	segments, err := in.video.Generate(ctx, downloadURL)
	if err != nil {
		return fmt.Errorf("generate video embeddings: %w", err)
	}

	entries := make([]models.VideoEmbedding, 0, len(segments))
	for _, segment := range segments {
		entries = append(entries, models.VideoEmbedding{
			MediaRecordID: mediaRecordID,
			StartTime:     segment.StartTime,
			ScreenText:    segment.ScreenText,
			Transcript:    segment.Transcript,
			Embedding:     pgvector.NewVector(segment.Embedding),
		})
	}

	if err := in.store.SaveVideoBatch(ctx, entries); err != nil {
		return fmt.Errorf("persist video embeddings: %w", err)
	}

	slog.Info("ingested video", "media_record_id", mediaRecordID, "sections", len(entries))

	return nil
}
