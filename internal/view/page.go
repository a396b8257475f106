package view

import (
	"slices"
	"strings"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
)

// Cell is the rendered value of one column for one row.
type Cell struct {
	Column ColumnID
	Text   string
}

// Row is one displayed work. Work is a private copy.
type Row struct {
	Work     works.Work
	Cells    []Cell
	Selected bool
}

// Page is the display-ready projection of a collection.
type Page struct {
	Columns         []Column
	Rows            []Row
	Sort            Sort
	PageIndex       int
	PageSize        int
	PageCount       int
	TotalCount      int
	FilteredCount   int
	SelectedCount   int
	CanPreviousPage bool
	CanNextPage     bool
}

// Compute derives the current page from rows: sort, filter, paginate, mask columns, mark selection.
// An out-of-range page index is clamped to the last page and kept.
func (e *Engine) Compute(rows []works.Work) Page {
	ordered := e.sorted(rows)
	filtered := e.filter(ordered)

	pageCount := e.pageCount(len(filtered))
	e.pageIndex = clampPage(e.pageIndex, pageCount)

	start := min(e.pageIndex*e.pageSize, len(filtered))
	end := min(start+e.pageSize, len(filtered))

	visible := e.visibleColumns()
	page := Page{
		Columns:         visible,
		Rows:            make([]Row, 0, end-start),
		Sort:            e.sort,
		PageIndex:       e.pageIndex,
		PageSize:        e.pageSize,
		PageCount:       pageCount,
		TotalCount:      len(rows),
		FilteredCount:   len(filtered),
		CanPreviousPage: e.pageIndex > 0,
		CanNextPage:     e.pageIndex+1 < pageCount,
	}

	for _, work := range filtered {
		if e.IsSelected(work.ID) {
			page.SelectedCount++
		}
	}

	for _, work := range filtered[start:end] {
		row := Row{
			Work:     work.Clone(),
			Cells:    make([]Cell, 0, len(visible)),
			Selected: e.IsSelected(work.ID),
		}
		for _, col := range visible {
			row.Cells = append(row.Cells, Cell{Column: col.ID, Text: CellText(col.ID, work)})
		}
		page.Rows = append(page.Rows, row)
	}
	return page
}

func (e *Engine) sorted(rows []works.Work) []works.Work {
	ordered := slices.Clone(rows)
	if !e.sort.Active() {
		return ordered
	}
	col, err := e.Column(e.sort.Column)
	if err != nil {
		return ordered
	}
	descending := e.sort.Direction == SortDescending
	slices.SortStableFunc(ordered, func(left, right works.Work) int {
		if descending {
			return col.compare(right, left)
		}
		return col.compare(left, right)
	})
	return ordered
}

func (e *Engine) filter(rows []works.Work) []works.Work {
	if len(e.filters) == 0 {
		return rows
	}
	result := make([]works.Work, 0, len(rows))
	for _, work := range rows {
		if e.matches(work) {
			result = append(result, work)
		}
	}
	return result
}

func (e *Engine) matches(work works.Work) bool {
	for columnID, text := range e.filters {
		col, err := e.Column(columnID)
		if err != nil {
			continue
		}
		if !strings.Contains(col.text(work), text) {
			return false
		}
	}
	return true
}

func (e *Engine) visibleColumns() []Column {
	visible := make([]Column, 0, len(e.columns))
	for _, col := range e.columns {
		if e.IsColumnVisible(col.ID) {
			visible = append(visible, col)
		}
	}
	return visible
}
