package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
)

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// SentenceEmbedderClient turns sentences into fixed-dimension embeddings via
// an Ollama-compatible embeddings endpoint.
type SentenceEmbedderClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewSentenceEmbedderClient reads OLLAMA_HOST and EMBEDDING_MODEL from
// configuration.
func NewSentenceEmbedderClient() *SentenceEmbedderClient {
	host := viper.GetString("OLLAMA_HOST")
	if host == "" {
		host = "localhost"
	}

	model := viper.GetString("EMBEDDING_MODEL")
	if model == "" {
		model = "mxbai-embed-large"
	}

	return &SentenceEmbedderClient{
		baseURL: fmt.Sprintf("http://%s:11434", host),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Embed returns one embedding per input text, in input order. The endpoint
// embeds one prompt per call, so texts are sent sequentially.
func (c *SentenceEmbedderClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for _, text := range texts {
		embedding, err := c.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, embedding)
	}

	return embeddings, nil
}

func (c *SentenceEmbedderClient) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("sentence embedder", err.Error())
	}

	url := c.baseURL + "/api/embeddings"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.NewExternalServiceError("sentence embedder", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("sentence embedder",
			fmt.Sprintf("failed to call embedder at %s: %v", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalServiceError("sentence embedder",
			fmt.Sprintf("embedder returned status %d", resp.StatusCode))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewExternalServiceError("sentence embedder",
			"failed to parse embedder response: "+err.Error())
	}

	if len(result.Embedding) != models.EmbeddingDim {
		return nil, apperrors.NewExternalServiceError("sentence embedder",
			fmt.Sprintf("embedder returned dimension %d, want %d", len(result.Embedding), models.EmbeddingDim))
	}

	return result.Embedding, nil
}
