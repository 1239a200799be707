// Package search implements semantic search over the document and video
// embedding tables: embed the query, fetch scored candidates from each table,
// merge, and return the closest hits.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
	"github.com/coursekit/go-media-search/services"
)

// Store is the subset of the vector store the engine reads from.
type Store interface {
	SearchDocuments(ctx context.Context, queryEmbedding []float32, whitelist, blacklist []uuid.UUID, limit int) ([]models.DocumentHit, error)
	SearchVideos(ctx context.Context, queryEmbedding []float32, whitelist, blacklist []uuid.UUID, limit int) ([]models.VideoHit, error)
}

// Engine answers semantic search queries across both embedding tables.
type Engine struct {
	embedder services.Embedder
	store    Store
}

// NewEngine creates a search engine from its collaborators.
func NewEngine(embedder services.Embedder, store Store) *Engine {
	return &Engine{embedder: embedder, store: store}
}

// Search embeds queryText and returns up to count hits from both tables,
// ordered by ascending cosine distance. Only records in whitelist and not in
// blacklist are eligible; an empty whitelist therefore matches nothing and the
// result is empty regardless of count, blacklist or stored data.
//
// Each hit is either a DocumentHit or a VideoHit and carries only the fields
// of its own variant. When a document and a video row score exactly equal, the
// document sorts first.
func (e *Engine) Search(
	ctx context.Context, queryText string, count int, whitelist, blacklist []uuid.UUID,
) ([]models.SearchHit, error) {
	if count < 0 {
		return nil, apperrors.NewValidationError("count", fmt.Sprintf("count must not be negative, got %d", count))
	}

	vectors, err := e.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, apperrors.NewExternalServiceError("sentence embedder",
			fmt.Sprintf("expected 1 query embedding, got %d", len(vectors)))
	}
	queryEmbedding := vectors[0]

	documentHits, err := e.store.SearchDocuments(ctx, queryEmbedding, whitelist, blacklist, count)
	if err != nil {
		return nil, err
	}

	videoHits, err := e.store.SearchVideos(ctx, queryEmbedding, whitelist, blacklist, count)
	if err != nil {
		return nil, err
	}

	hits := make([]models.SearchHit, 0, len(documentHits)+len(videoHits))
	for _, hit := range documentHits {
		hits = append(hits, hit)
	}
	for _, hit := range videoHits {
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].HitScore() < hits[j].HitScore()
	})

	if len(hits) > count {
		hits = hits[:count]
	}

	return hits, nil
}
