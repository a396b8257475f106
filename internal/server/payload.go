package server

import (
	"slices"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
)

// WorkPayload is the JSON shape of a work on the store API.
type WorkPayload struct {
	ID                string    `json:"id,omitempty"`
	Title             string    `json:"title"`
	OriginalTitle     string    `json:"original_title"`
	Author            string    `json:"author"`
	PublicationStatus string    `json:"status"`
	Genres            []string  `json:"genres"`
	TotalChapters     int       `json:"total_chapters"`
	CurrentChapter    int       `json:"current_chapter"`
	ReadingStatus     string    `json:"reading_status"`
	Rating            int       `json:"rating"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewWorkPayload converts a work to its wire shape.
func NewWorkPayload(work works.Work) WorkPayload {
	payload := NewRecordPayload(work.Record)
	payload.ID = work.ID.String()
	return payload
}

// NewRecordPayload converts a record to its wire shape without an identifier.
func NewRecordPayload(record works.Record) WorkPayload {
	genres := slices.Clone(record.Genres)
	if genres == nil {
		genres = []string{}
	}
	return WorkPayload{
		Title:             record.Title,
		OriginalTitle:     record.OriginalTitle,
		Author:            record.Author,
		PublicationStatus: record.PublicationStatus.String(),
		Genres:            genres,
		TotalChapters:     record.TotalChapters,
		CurrentChapter:    record.CurrentChapter,
		ReadingStatus:     record.ReadingStatus.String(),
		Rating:            record.Rating,
		Notes:             record.Notes.String(),
		CreatedAt:         record.CreatedAt.UTC(),
		UpdatedAt:         record.UpdatedAt.UTC(),
	}
}

// Record converts the payload into a store record. The identifier is ignored.
func (p WorkPayload) Record() works.Record {
	return works.Record{
		Fields: works.Fields{
			Title:             p.Title,
			OriginalTitle:     p.OriginalTitle,
			Author:            p.Author,
			PublicationStatus: works.PublicationStatus(p.PublicationStatus),
			Genres:            slices.Clone(p.Genres),
			TotalChapters:     p.TotalChapters,
			CurrentChapter:    p.CurrentChapter,
			ReadingStatus:     works.ReadingStatus(p.ReadingStatus),
			Rating:            p.Rating,
			Notes:             works.NotesLog(p.Notes),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Work converts the payload into a work carrying its identifier.
func (p WorkPayload) Work() works.Work {
	return works.Work{ID: works.ID(p.ID), Record: p.Record()}
}

// WorksResponse is the body of a successful list request.
type WorksResponse struct {
	Works []WorkPayload `json:"works"`
}

// WorkResponse is the body of a successful insert request.
type WorkResponse struct {
	Work WorkPayload `json:"work"`
}

// ErrorPayload is the body of a failed request.
type ErrorPayload struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields []FieldErrorPayload `json:"fields,omitempty"`
}

// FieldErrorPayload describes one invalid field of a rejected record.
type FieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldErrorPayloads(fieldErrors []works.FieldError) []FieldErrorPayload {
	result := make([]FieldErrorPayload, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		result = append(result, FieldErrorPayload{Field: fieldErr.Field, Message: fieldErr.Message})
	}
	return result
}
