package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// HitSource tags which table a search hit came from.
type HitSource string

const (
	HitSourceDocument HitSource = "document"
	HitSourceVideo    HitSource = "video"
)

// SearchHit is a tagged union with exactly two variants, DocumentHit and
// VideoHit. A variant never carries fields belonging to the other one; the
// JSON encoding adds a "source" discriminator.
type SearchHit interface {
	Source() HitSource
	// HitScore is the cosine distance to the query embedding.
	// Lower means more similar; 0 is identical direction, 2 is opposite.
	HitScore() float64
}

// DocumentHit is a search result row from the documents table.
type DocumentHit struct {
	MediaRecordID uuid.UUID `json:"mediaRecordId"`
	Page          int       `json:"page"`
	Text          string    `json:"text"`
	Score         float64   `json:"score"`
}

func (DocumentHit) Source() HitSource { return HitSourceDocument }

func (h DocumentHit) HitScore() float64 { return h.Score }

func (h DocumentHit) MarshalJSON() ([]byte, error) {
	type plain DocumentHit
	return json.Marshal(struct {
		Source HitSource `json:"source"`
		plain
	}{HitSourceDocument, plain(h)})
}

// VideoHit is a search result row from the videos table.
type VideoHit struct {
	MediaRecordID uuid.UUID `json:"mediaRecordId"`
	StartTime     int       `json:"startTime"`
	ScreenText    string    `json:"screenText"`
	Transcript    string    `json:"transcript"`
	Score         float64   `json:"score"`
}

func (VideoHit) Source() HitSource { return HitSourceVideo }

func (h VideoHit) HitScore() float64 { return h.Score }

func (h VideoHit) MarshalJSON() ([]byte, error) {
	type plain VideoHit
	return json.Marshal(struct {
		Source HitSource `json:"source"`
		plain
	}{HitSourceVideo, plain(h)})
}
