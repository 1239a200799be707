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
)

// DocumentSegment is one embedded page produced by the document processor.
type DocumentSegment struct {
	Text      string    `json:"text"`
	Page      int       `json:"page"`
	Embedding []float32 `json:"embedding"`
}

// VideoSegment is one embedded section of a video produced by the video
// processor, keyed by its start offset in seconds.
type VideoSegment struct {
	ScreenText string    `json:"screenText"`
	Transcript string    `json:"transcript"`
	StartTime  int       `json:"startTime"`
	Embedding  []float32 `json:"embedding"`
}

type extractRequest struct {
	DownloadURL string `json:"downloadUrl"`
}

// DocumentProcessorClient calls the file extraction service's PDF pipeline.
type DocumentProcessorClient struct {
	baseURL string
	client  *http.Client
}

// NewDocumentProcessorClient reads FILEEXTRACT_SERVICE_URL from configuration.
// PDF and video extraction run noticeably long, so the client timeout is
// generous.
func NewDocumentProcessorClient() *DocumentProcessorClient {
	return &DocumentProcessorClient{
		baseURL: fileExtractBaseURL(),
		client:  &http.Client{Timeout: 15 * time.Minute},
	}
}

// Generate runs the PDF embedding pipeline on the file behind downloadURL and
// returns one segment per page.
func (c *DocumentProcessorClient) Generate(ctx context.Context, downloadURL string) ([]DocumentSegment, error) {
	var result struct {
		Segments []DocumentSegment `json:"segments"`
	}

	if err := postExtract(ctx, c.client, c.baseURL+"/api/pdf-embeddings", downloadURL, &result); err != nil {
		return nil, err
	}

	return result.Segments, nil
}

// VideoProcessorClient calls the file extraction service's video pipeline.
type VideoProcessorClient struct {
	baseURL string
	client  *http.Client
}

// NewVideoProcessorClient reads FILEEXTRACT_SERVICE_URL from configuration.
func NewVideoProcessorClient() *VideoProcessorClient {
	return &VideoProcessorClient{
		baseURL: fileExtractBaseURL(),
		client:  &http.Client{Timeout: 15 * time.Minute},
	}
}

// Generate runs the video embedding pipeline on the file behind downloadURL
// and returns one segment per section of the video.
func (c *VideoProcessorClient) Generate(ctx context.Context, downloadURL string) ([]VideoSegment, error) {
	var result struct {
		Segments []VideoSegment `json:"segments"`
	}

	if err := postExtract(ctx, c.client, c.baseURL+"/api/video-embeddings", downloadURL, &result); err != nil {
		return nil, err
	}

	return result.Segments, nil
}

func fileExtractBaseURL() string {
	baseURL := viper.GetString("FILEEXTRACT_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4002"
	}
	return baseURL
}

func postExtract(ctx context.Context, client *http.Client, url, downloadURL string, out any) error {
	body, err := json.Marshal(extractRequest{DownloadURL: downloadURL})
	if err != nil {
		return apperrors.NewExternalServiceError("file extraction", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return apperrors.NewExternalServiceError("file extraction", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return apperrors.NewExternalServiceError("file extraction",
			fmt.Sprintf("failed to call file extraction service at %s: %v", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewExternalServiceError("file extraction",
			fmt.Sprintf("file extraction service returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalServiceError("file extraction",
			"failed to parse file extraction response: "+err.Error())
	}

	return nil
}
