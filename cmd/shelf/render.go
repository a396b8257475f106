package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/view"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	selectedMarker   = "[x]"
	unselectedMarker = "[ ]"
	noResultsText    = "No results."
	timestampLayout  = "2006-01-02 15:04"
)

func renderPage(out io.Writer, page view.Page) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	header := table.Row{"", "ID"}
	for _, column := range page.Columns {
		header = append(header, columnHeader(column, page.Sort))
	}
	t.AppendHeader(header)

	if len(page.Rows) == 0 {
		t.AppendRow(table.Row{"", noResultsText})
	}
	for _, row := range page.Rows {
		marker := unselectedMarker
		if row.Selected {
			marker = selectedMarker
		}
		cells := table.Row{marker, row.Work.ID.String()}
		for _, cell := range row.Cells {
			cells = append(cells, cell.Text)
		}
		t.AppendRow(cells)
	}

	t.Render()

	pageCount := max(page.PageCount, 1)
	fmt.Fprintf(out, "Page %d of %d · %d of %d row(s) selected.\n",
		page.PageIndex+1, pageCount, page.SelectedCount, page.FilteredCount)
}

func columnHeader(column view.Column, active view.Sort) string {
	if !active.Active() || active.Column != column.ID {
		return column.Header
	}
	if active.Direction == view.SortDescending {
		return column.Header + " ↓"
	}
	return column.Header + " ↑"
}

// renderDetails prints every field of work followed by its numbered note lines.
func renderDetails(out io.Writer, work works.Work) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"ID", work.ID.String()},
		{"Title", work.Title},
		{"Original Title", work.OriginalTitle},
		{"Author", work.Author},
		{"Status", work.PublicationStatus.String()},
		{"Genres", works.JoinGenres(work.Genres)},
		{"Total Chapters", strconv.Itoa(work.TotalChapters)},
		{"Current Chapter", view.CellText(view.ColumnCurrentChapter, work)},
		{"Reading Status", work.ReadingStatus.String()},
		{"Rating", view.Stars(work.Rating)},
		{"Created", formatTimestamp(work.CreatedAt)},
		{"Updated", formatTimestamp(work.UpdatedAt)},
	})
	t.Render()

	lines := work.Notes.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "No notes.")
		return
	}
	fmt.Fprintln(out, "Notes:")
	for index, line := range lines {
		fmt.Fprintf(out, "%3d. %s\n", index+1, line)
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Local().Format(timestampLayout)
}
