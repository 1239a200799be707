package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
)

// basisEmbedding returns a 1024-dim unit vector with a single 1 at index i.
// Distinct basis vectors have cosine distance 1 from each other and 0 from
// themselves, which makes score assertions exact.
func basisEmbedding(i int) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDim)
	vec[i] = 1
	return pgvector.NewVector(vec)
}

func TestValidateDimension(t *testing.T) {
	assert.NoError(t, validateDimension(basisEmbedding(0)))

	err := validateDimension(pgvector.NewVector(make([]float32, 768)))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSearchWithEmptyWhitelistNeverTouchesDatabase(t *testing.T) {
	// db is nil: reaching the database would panic, so a result proves the
	// empty whitelist matched no rows by contract.
	store := NewStore(nil)

	docs, err := store.SearchDocuments(context.Background(), make([]float32, models.EmbeddingDim), nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)

	videos, err := store.SearchVideos(context.Background(), make([]float32, models.EmbeddingDim), nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestSearchWithZeroLimitReturnsNothing(t *testing.T) {
	store := NewStore(nil)

	docs, err := store.SearchDocuments(
		context.Background(), make([]float32, models.EmbeddingDim), []uuid.UUID{uuid.New()}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// testStore connects against TEST_DATABASE_URL (a Postgres with the pgvector
// extension available) and ensures the schema. Integration tests are skipped
// when the variable is unset.
func testStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(db))

	return NewStore(db)
}

func documentEntries(id uuid.UUID, pages int) []models.DocumentEmbedding {
	entries := make([]models.DocumentEmbedding, 0, pages)
	for page := 0; page < pages; page++ {
		entries = append(entries, models.DocumentEmbedding{
			MediaRecordID: id,
			Page:          page,
			Text:          "page text",
			Embedding:     basisEmbedding(page),
		})
	}
	return entries
}

func TestIntegrationSaveDocumentBatchAndSearch(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := uuid.New()
	t.Cleanup(func() { _ = store.DeleteByMediaRecord(ctx, id) })

	require.NoError(t, store.SaveDocumentBatch(ctx, documentEntries(id, 3)))

	query := make([]float32, models.EmbeddingDim)
	query[0] = 1

	hits, err := store.SearchDocuments(ctx, query, []uuid.UUID{id}, nil, 2)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Page)
	assert.InDelta(t, 0.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 1.0, hits[1].Score, 1e-6)
}

func TestIntegrationDuplicateInsertIsUniquenessViolation(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := uuid.New()
	t.Cleanup(func() { _ = store.DeleteByMediaRecord(ctx, id) })

	entry := models.DocumentEmbedding{MediaRecordID: id, Page: 0, Text: "once", Embedding: basisEmbedding(0)}
	require.NoError(t, store.InsertDocument(ctx, entry))

	err := store.InsertDocument(ctx, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUniquenessViolation)
}

func TestIntegrationBatchFailureLeavesNoPartialRows(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := uuid.New()
	t.Cleanup(func() { _ = store.DeleteByMediaRecord(ctx, id) })

	entries := documentEntries(id, 3)
	entries[2].Page = 0 // duplicates the first entry's key inside the batch

	err := store.SaveDocumentBatch(ctx, entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUniquenessViolation)

	query := make([]float32, models.EmbeddingDim)
	query[0] = 1
	hits, err := store.SearchDocuments(ctx, query, []uuid.UUID{id}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "failed batch must roll back all of its rows")
}

func TestIntegrationDeleteIsIdempotentAndAllowsReingestion(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := uuid.New()
	t.Cleanup(func() { _ = store.DeleteByMediaRecord(ctx, id) })

	require.NoError(t, store.SaveDocumentBatch(ctx, documentEntries(id, 3)))
	require.NoError(t, store.SaveVideoBatch(ctx, []models.VideoEmbedding{{
		MediaRecordID: id, StartTime: 0, ScreenText: "slide", Transcript: "words", Embedding: basisEmbedding(0),
	}}))

	require.NoError(t, store.DeleteByMediaRecord(ctx, id))
	// Deleting again, with no rows left, is a no-op.
	require.NoError(t, store.DeleteByMediaRecord(ctx, id))

	// Re-ingestion after delete does not conflict.
	require.NoError(t, store.SaveDocumentBatch(ctx, documentEntries(id, 3)))

	query := make([]float32, models.EmbeddingDim)
	query[0] = 1
	videoHits, err := store.SearchVideos(ctx, query, []uuid.UUID{id}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, videoHits)

	docHits, err := store.SearchDocuments(ctx, query, []uuid.UUID{id}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, docHits, 3)
}

func TestIntegrationBlacklistExcludesRecords(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := uuid.New()
	t.Cleanup(func() { _ = store.DeleteByMediaRecord(ctx, id) })

	require.NoError(t, store.SaveDocumentBatch(ctx, documentEntries(id, 1)))

	query := make([]float32, models.EmbeddingDim)
	query[0] = 1

	// A record that blacklists itself is never returned.
	hits, err := store.SearchDocuments(ctx, query, []uuid.UUID{id}, []uuid.UUID{id}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = store.SearchDocuments(ctx, query, []uuid.UUID{id}, []uuid.UUID{uuid.New()}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIntegrationInsertRejectsWrongDimension(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	err := store.InsertDocument(ctx, models.DocumentEmbedding{
		MediaRecordID: uuid.New(),
		Page:          0,
		Embedding:     pgvector.NewVector(make([]float32, 512)),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
