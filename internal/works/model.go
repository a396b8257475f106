package works

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidWorkID indicates that a work identifier is empty or exceeds storage bounds.
	ErrInvalidWorkID = errors.New("works: invalid work id")
	// ErrInvalidOrdering indicates that a list ordering names an unsupported field or direction.
	ErrInvalidOrdering = errors.New("works: invalid ordering")
)

// ID represents a validated work identifier.
type ID string

// NewID validates raw input and returns an ID.
func NewID(rawInput string) (ID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidWorkID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidWorkID, maxIdentifierLength)
	}
	return ID(trimmed), nil
}

// String returns the underlying string identifier.
func (id ID) String() string {
	return string(id)
}

// PublicationStatus is the release state of a work.
type PublicationStatus string

const (
	PublicationOngoing   PublicationStatus = "ongoing"
	PublicationHiatus    PublicationStatus = "hiatus"
	PublicationCompleted PublicationStatus = "completed"
	PublicationDropped   PublicationStatus = "dropped"
)

func (s PublicationStatus) String() string { return string(s) }

func (s PublicationStatus) IsValid() bool {
	switch s {
	case PublicationOngoing, PublicationHiatus, PublicationCompleted, PublicationDropped:
		return true
	}
	return false
}

// ReadingStatus is the reader's own progress state for a work.
type ReadingStatus string

const (
	ReadingInProgress ReadingStatus = "reading"
	ReadingPlanned    ReadingStatus = "plan-to-read"
	ReadingCompleted  ReadingStatus = "completed"
	ReadingOnHold     ReadingStatus = "on-hold"
	ReadingDropped    ReadingStatus = "dropped"
)

func (s ReadingStatus) String() string { return string(s) }

func (s ReadingStatus) IsValid() bool {
	switch s {
	case ReadingInProgress, ReadingPlanned, ReadingCompleted, ReadingOnHold, ReadingDropped:
		return true
	}
	return false
}

const (
	MinRating = 0
	MaxRating = 5
)

// NotesSeparator joins note lines inside the persisted notes blob.
const NotesSeparator = "\n"

// NotesLog is an append-only list of note lines persisted as a single text blob.
type NotesLog string

// Lines splits the log into its individual lines. An empty log has no lines.
func (log NotesLog) Lines() []string {
	if log == "" {
		return nil
	}
	return strings.Split(string(log), NotesSeparator)
}

// Append returns a new log with line added after the existing content.
func (log NotesLog) Append(line string) NotesLog {
	if log == "" {
		return NotesLog(line)
	}
	return log + NotesSeparator + NotesLog(line)
}

func (log NotesLog) String() string {
	return string(log)
}

// Fields holds every user-editable attribute of a work.
type Fields struct {
	Title             string
	OriginalTitle     string
	Author            string
	PublicationStatus PublicationStatus
	Genres            []string
	TotalChapters     int
	CurrentChapter    int
	ReadingStatus     ReadingStatus
	Rating            int
	Notes             NotesLog
}

// Clone returns a copy that shares no mutable state with f.
func (f Fields) Clone() Fields {
	copied := f
	copied.Genres = slices.Clone(f.Genres)
	return copied
}

// ChapterOverflow reports whether the current chapter is past a known chapter total.
// The condition is tolerated by the store and only surfaced for display.
func (f Fields) ChapterOverflow() bool {
	return f.TotalChapters > 0 && f.CurrentChapter > f.TotalChapters
}

// Record is a work without its identifier: the payload exchanged with the store.
type Record struct {
	Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	copied := r
	copied.Fields = r.Fields.Clone()
	return copied
}

// Work is one catalog entry.
type Work struct {
	ID ID
	Record
}

// Clone returns a deep copy of the work.
func (w Work) Clone() Work {
	return Work{ID: w.ID, Record: w.Record.Clone()}
}

// CloneAll deep copies a collection of works.
func CloneAll(items []Work) []Work {
	if items == nil {
		return nil
	}
	copies := make([]Work, len(items))
	for index, item := range items {
		copies[index] = item.Clone()
	}
	return copies
}

// OrderField names a column the store can order a listing by.
type OrderField string

const (
	OrderByUpdatedAt OrderField = "updated_at"
	OrderByCreatedAt OrderField = "created_at"
	OrderByTitle     OrderField = "title"
)

// OrderDirection is the direction of a store listing.
type OrderDirection string

const (
	OrderAscending  OrderDirection = "asc"
	OrderDescending OrderDirection = "desc"
)

// Ordering describes how the store should order a listing.
type Ordering struct {
	Field     OrderField
	Direction OrderDirection
}

// RecentlyUpdatedFirst is the ordering used to synchronize the canonical collection.
var RecentlyUpdatedFirst = Ordering{Field: OrderByUpdatedAt, Direction: OrderDescending}

// ParseOrdering validates raw field and direction values. Empty values fall back to RecentlyUpdatedFirst.
func ParseOrdering(field, direction string) (Ordering, error) {
	ordering := RecentlyUpdatedFirst
	if trimmed := strings.ToLower(strings.TrimSpace(field)); trimmed != "" {
		ordering.Field = OrderField(trimmed)
	}
	if trimmed := strings.ToLower(strings.TrimSpace(direction)); trimmed != "" {
		ordering.Direction = OrderDirection(trimmed)
	}
	if err := ordering.Validate(); err != nil {
		return Ordering{}, err
	}
	return ordering, nil
}

// Validate reports whether the ordering can be executed by the store.
func (o Ordering) Validate() error {
	switch o.Field {
	case OrderByUpdatedAt, OrderByCreatedAt, OrderByTitle:
	default:
		return fmt.Errorf("%w: field %q", ErrInvalidOrdering, o.Field)
	}
	switch o.Direction {
	case OrderAscending, OrderDescending:
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidOrdering, o.Direction)
	}
	return nil
}
