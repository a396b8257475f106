package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"github.com/mattn/go-runewidth"
)

const (
	titleMaxWidth       = 24
	titleTruncatedWidth = 18
	ellipsis            = "..."
	ratingStar          = "★"
	actionsLabel        = "edit · delete · note"
)

// CellText renders the display text of column for work.
func CellText(column ColumnID, work works.Work) string {
	switch column {
	case ColumnTitle:
		return TruncateTitle(work.Title)
	case ColumnOriginalTitle:
		return work.OriginalTitle
	case ColumnAuthor:
		return work.Author
	case ColumnPublicationStatus:
		return work.PublicationStatus.String()
	case ColumnGenres:
		return works.JoinGenres(work.Genres)
	case ColumnTotalChapters:
		return strconv.Itoa(work.TotalChapters)
	case ColumnCurrentChapter:
		if work.ChapterOverflow() {
			return strconv.Itoa(work.CurrentChapter) + "!"
		}
		return strconv.Itoa(work.CurrentChapter)
	case ColumnReadingStatus:
		return work.ReadingStatus.String()
	case ColumnRating:
		return Stars(work.Rating)
	case ColumnNotes:
		return fmt.Sprintf("Notes (%d)", len(work.Notes.Lines()))
	case ColumnActions:
		return actionsLabel
	}
	return ""
}

// TruncateTitle shortens titles wider than 24 cells to 18 cells plus an ellipsis.
func TruncateTitle(title string) string {
	if runewidth.StringWidth(title) <= titleMaxWidth {
		return title
	}
	return runewidth.Truncate(title, titleTruncatedWidth, "") + ellipsis
}

// Stars renders a rating as a row of stars.
func Stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	return strings.Repeat(ratingStar, rating)
}
