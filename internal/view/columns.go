package view

import (
	"cmp"
	"strings"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
)

// ColumnID identifies a column of the catalog table.
type ColumnID string

const (
	ColumnTitle             ColumnID = "title"
	ColumnOriginalTitle     ColumnID = "originalTitle"
	ColumnAuthor            ColumnID = "author"
	ColumnPublicationStatus ColumnID = "publicationStatus"
	ColumnGenres            ColumnID = "genres"
	ColumnTotalChapters     ColumnID = "totalChapters"
	ColumnCurrentChapter    ColumnID = "currentChapter"
	ColumnReadingStatus     ColumnID = "readingStatus"
	ColumnRating            ColumnID = "rating"
	ColumnNotes             ColumnID = "notes"
	ColumnActions           ColumnID = "actions"
)

// ColumnKind selects how a column's values compare.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindNumber
	KindEnum
	KindList
	KindTrigger
)

// Column describes one column of the catalog table.
type Column struct {
	ID         ColumnID
	Header     string
	Kind       ColumnKind
	Hideable   bool
	Sortable   bool
	Filterable bool
}

// DefaultColumns returns the catalog table schema in display order.
func DefaultColumns() []Column {
	return []Column{
		{ID: ColumnTitle, Header: "Title", Kind: KindString, Hideable: true, Sortable: true, Filterable: true},
		{ID: ColumnOriginalTitle, Header: "Original Title", Kind: KindString, Hideable: true, Sortable: true},
		{ID: ColumnAuthor, Header: "Author", Kind: KindString, Hideable: true, Sortable: true},
		{ID: ColumnPublicationStatus, Header: "Status", Kind: KindEnum, Hideable: true, Sortable: true},
		{ID: ColumnGenres, Header: "Genres", Kind: KindList, Hideable: true},
		{ID: ColumnTotalChapters, Header: "Total Ch.", Kind: KindNumber, Hideable: true, Sortable: true},
		{ID: ColumnCurrentChapter, Header: "Current Ch.", Kind: KindNumber, Hideable: true, Sortable: true},
		{ID: ColumnReadingStatus, Header: "Reading Status", Kind: KindEnum, Hideable: true, Sortable: true},
		{ID: ColumnRating, Header: "Rating", Kind: KindNumber, Hideable: true, Sortable: true},
		{ID: ColumnNotes, Header: "Notes", Kind: KindTrigger, Hideable: true},
		{ID: ColumnActions, Header: "Actions", Kind: KindTrigger},
	}
}

func (col Column) text(work works.Work) string {
	switch col.ID {
	case ColumnTitle:
		return work.Title
	case ColumnOriginalTitle:
		return work.OriginalTitle
	case ColumnAuthor:
		return work.Author
	case ColumnPublicationStatus:
		return work.PublicationStatus.String()
	case ColumnReadingStatus:
		return work.ReadingStatus.String()
	case ColumnGenres:
		return works.JoinGenres(work.Genres)
	}
	return ""
}

func (col Column) number(work works.Work) int {
	switch col.ID {
	case ColumnTotalChapters:
		return work.TotalChapters
	case ColumnCurrentChapter:
		return work.CurrentChapter
	case ColumnRating:
		return work.Rating
	}
	return 0
}

// compare orders two works by this column's value.
// Numbers compare numerically; strings and enum literals compare byte-wise.
func (col Column) compare(left, right works.Work) int {
	if col.Kind == KindNumber {
		return cmp.Compare(col.number(left), col.number(right))
	}
	return strings.Compare(col.text(left), col.text(right))
}
