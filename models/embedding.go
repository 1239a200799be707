package models

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the fixed dimension of every stored and queried vector.
// Inserts with any other dimension are rejected.
const EmbeddingDim = 1024

// MediaType is the record type reported by the media service.
type MediaType string

const (
	MediaTypeDocument     MediaType = "DOCUMENT"
	MediaTypePresentation MediaType = "PRESENTATION"
	MediaTypeVideo        MediaType = "VIDEO"
)

// DocumentEmbedding is one embedded page of a document or presentation.
// Unique per (media_record_id, page).
type DocumentEmbedding struct {
	MediaRecordID uuid.UUID       `gorm:"column:media_record_id;type:uuid;primaryKey" json:"mediaRecordId"`
	Page          int             `gorm:"column:page;primaryKey" json:"page"`
	Text          string          `gorm:"column:text;type:text" json:"text"`
	Embedding     pgvector.Vector `gorm:"column:embedding;type:vector(1024)" json:"embedding"`
}

func (DocumentEmbedding) TableName() string { return "documents" }

// VideoEmbedding is one embedded segment of a video, keyed by its offset in
// seconds. Unique per (media_record_id, start_time).
type VideoEmbedding struct {
	MediaRecordID uuid.UUID       `gorm:"column:media_record_id;type:uuid;primaryKey" json:"mediaRecordId"`
	StartTime     int             `gorm:"column:start_time;primaryKey" json:"startTime"`
	ScreenText    string          `gorm:"column:screen_text;type:text" json:"screenText"`
	Transcript    string          `gorm:"column:transcript;type:text" json:"transcript"`
	Embedding     pgvector.Vector `gorm:"column:embedding;type:vector(1024)" json:"embedding"`
}

func (VideoEmbedding) TableName() string { return "videos" }
