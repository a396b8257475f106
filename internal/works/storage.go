package works

import (
	"slices"
	"time"
)

// StoredWork is the persisted row backing a catalog entry.
type StoredWork struct {
	WorkID            string   `gorm:"column:work_id;primaryKey;size:190;not null"`
	Title             string   `gorm:"column:title;size:512;not null;index:idx_works_title"`
	OriginalTitle     string   `gorm:"column:original_title;size:512;not null;default:''"`
	Author            string   `gorm:"column:author;size:512;not null;default:''"`
	PublicationStatus string   `gorm:"column:status;size:32;not null"`
	Genres            []string `gorm:"column:genres;type:text;not null;serializer:json"`
	TotalChapters     int      `gorm:"column:total_chapters;not null;default:0"`
	CurrentChapter    int      `gorm:"column:current_chapter;not null;default:0"`
	ReadingStatus     string   `gorm:"column:reading_status;size:32;not null"`
	Rating            int      `gorm:"column:rating;not null;default:0"`
	Notes             string   `gorm:"column:notes;type:text;not null;default:''"`
	CreatedAtMillis   int64    `gorm:"column:created_at_ms;not null;index:idx_works_created"`
	UpdatedAtMillis   int64    `gorm:"column:updated_at_ms;not null;index:idx_works_updated"`
}

// TableName provides the explicit table binding for GORM.
func (StoredWork) TableName() string {
	return "works"
}

func newStoredWork(id ID, record Record) StoredWork {
	genres := slices.Clone(record.Genres)
	if genres == nil {
		genres = []string{}
	}
	return StoredWork{
		WorkID:            id.String(),
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
		CreatedAtMillis:   record.CreatedAt.UTC().UnixMilli(),
		UpdatedAtMillis:   record.UpdatedAt.UTC().UnixMilli(),
	}
}

func (row StoredWork) toWork() Work {
	return Work{
		ID: ID(row.WorkID),
		Record: Record{
			Fields: Fields{
				Title:             row.Title,
				OriginalTitle:     row.OriginalTitle,
				Author:            row.Author,
				PublicationStatus: PublicationStatus(row.PublicationStatus),
				Genres:            slices.Clone(row.Genres),
				TotalChapters:     row.TotalChapters,
				CurrentChapter:    row.CurrentChapter,
				ReadingStatus:     ReadingStatus(row.ReadingStatus),
				Rating:            row.Rating,
				Notes:             NotesLog(row.Notes),
			},
			CreatedAt: time.UnixMilli(row.CreatedAtMillis).UTC(),
			UpdatedAt: time.UnixMilli(row.UpdatedAtMillis).UTC(),
		},
	}
}

var orderColumns = map[OrderField]string{
	OrderByUpdatedAt: "updated_at_ms",
	OrderByCreatedAt: "created_at_ms",
	OrderByTitle:     "title",
}

func (o Ordering) clause() string {
	direction := "ASC"
	if o.Direction == OrderDescending {
		direction = "DESC"
	}
	return orderColumns[o.Field] + " " + direction
}
