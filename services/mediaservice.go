// Package services contains the HTTP clients for the external collaborators:
// the media service that resolves record types and download URLs, the
// document and video processors that turn a download URL into chunk
// embeddings, and the sentence embedder used for search queries.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
)

// MediaRecordInfo is what the media service reports for a record: its type and
// where the raw file can be downloaded from.
type MediaRecordInfo struct {
	Type        models.MediaType `json:"type"`
	DownloadURL string           `json:"internalDownloadUrl"`
}

// MediaServiceClient resolves media record ids against the media service.
type MediaServiceClient struct {
	baseURL string
	client  *http.Client
}

// NewMediaServiceClient reads MEDIA_SERVICE_URL from configuration.
func NewMediaServiceClient() *MediaServiceClient {
	baseURL := viper.GetString("MEDIA_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4001"
	}

	return &MediaServiceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve fetches the type and internal download URL for a media record.
// Any transport or decoding failure is reported as an ExternalServiceError.
func (c *MediaServiceClient) Resolve(ctx context.Context, mediaRecordID uuid.UUID) (MediaRecordInfo, error) {
	url := fmt.Sprintf("%s/media-records/%s", c.baseURL, mediaRecordID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return MediaRecordInfo{}, apperrors.NewExternalServiceError("media service", err.Error())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return MediaRecordInfo{}, apperrors.NewExternalServiceError("media service",
			fmt.Sprintf("failed to call media service at %s: %v", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MediaRecordInfo{}, apperrors.NewExternalServiceError("media service",
			fmt.Sprintf("media service returned status %d for record %s", resp.StatusCode, mediaRecordID))
	}

	var info MediaRecordInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return MediaRecordInfo{}, apperrors.NewExternalServiceError("media service",
			"failed to parse media service response: "+err.Error())
	}

	return info, nil
}
