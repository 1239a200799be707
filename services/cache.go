package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const embeddingCacheTTL = 24 * time.Hour

// Embedder turns texts into one embedding per text, order-preserving.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CachedEmbedder wraps an Embedder with a Redis cache keyed by model and text
// digest. Cache failures are logged and degrade to direct embedder calls;
// correctness never depends on Redis.
type CachedEmbedder struct {
	inner  Embedder
	model  string
	client *redis.Client
}

// NewCachedEmbedder wraps inner with a Redis cache when REDIS_ADDR is
// configured and reachable. Otherwise it returns inner unchanged.
func NewCachedEmbedder(inner Embedder) Embedder {
	addr := viper.GetString("REDIS_ADDR")
	if addr == "" {
		return inner
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Warn("redis connection failed, embedding cache disabled", "addr", addr, "error", err)
		return inner
	}

	slog.Info("embedding cache enabled", "addr", addr)

	return &CachedEmbedder{
		inner:  inner,
		model:  viper.GetString("EMBEDDING_MODEL"),
		client: client,
	}
}

// Embed serves each text from the cache when possible and embeds the misses
// through the wrapped embedder, preserving input order.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	var (
		missTexts   []string
		missIndexes []int
	)

	for i, text := range texts {
		if cached, ok := c.get(ctx, text); ok {
			embeddings[i] = cached
			continue
		}
		missTexts = append(missTexts, text)
		missIndexes = append(missIndexes, i)
	}

	if len(missTexts) == 0 {
		return embeddings, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, embedding := range fresh {
		embeddings[missIndexes[j]] = embedding
		c.set(ctx, missTexts[j], embedding)
	}

	return embeddings, nil
}

func (c *CachedEmbedder) get(ctx context.Context, text string) ([]float32, bool) {
	payload, err := c.client.Get(ctx, c.key(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("embedding cache read failed", "error", err)
		}
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal(payload, &embedding); err != nil {
		return nil, false
	}

	return embedding, true
}

func (c *CachedEmbedder) set(ctx context.Context, text string, embedding []float32) {
	payload, err := json.Marshal(embedding)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, c.key(text), payload, embeddingCacheTTL).Err(); err != nil {
		slog.Warn("embedding cache write failed", "error", err)
	}
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + c.model + ":" + hex.EncodeToString(sum[:])
}
