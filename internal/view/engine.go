package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 10

var (
	// ErrUnknownColumn indicates that a column id is not part of the table schema.
	ErrUnknownColumn = errors.New("view: unknown column")
	// ErrColumnNotSortable indicates that sorting was requested on a display-only column.
	ErrColumnNotSortable = errors.New("view: column not sortable")
	// ErrColumnNotFilterable indicates that a filter was requested on a column without filter support.
	ErrColumnNotFilterable = errors.New("view: column not filterable")
	// ErrInvalidPageSize indicates a page size below one.
	ErrInvalidPageSize = errors.New("view: invalid page size")
	// ErrInvalidSortDirection indicates an unrecognized sort direction.
	ErrInvalidSortDirection = errors.New("view: invalid sort direction")
)

// SortDirection is the direction of the active sort.
type SortDirection string

const (
	SortNone       SortDirection = "none"
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// ParseSortDirection accepts the long and short spellings of a direction.
func ParseSortDirection(raw string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return SortNone, nil
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortDirection, raw)
}

// Sort is the active sort column and direction. A zero Sort means unsorted.
type Sort struct {
	Column    ColumnID
	Direction SortDirection
}

// Active reports whether rows are being sorted.
func (s Sort) Active() bool {
	return s.Column != "" && s.Direction != SortNone && s.Direction != ""
}

// Engine holds the table's view parameters and derives display pages from a collection.
// It keeps no reference to the rows it is given.
type Engine struct {
	columns   []Column
	sort      Sort
	filters   map[ColumnID]string
	hidden    map[ColumnID]bool
	pageIndex int
	pageSize  int
	selection map[works.ID]struct{}
}

// NewEngine returns an engine over the default schema. A pageSize below one uses DefaultPageSize.
func NewEngine(pageSize int) *Engine {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Engine{
		columns:   DefaultColumns(),
		filters:   make(map[ColumnID]string),
		hidden:    make(map[ColumnID]bool),
		pageSize:  pageSize,
		selection: make(map[works.ID]struct{}),
	}
}

// Columns returns the full schema in display order.
func (e *Engine) Columns() []Column {
	return slices.Clone(e.columns)
}

// HideableColumns returns the columns a user may toggle.
func (e *Engine) HideableColumns() []Column {
	result := make([]Column, 0, len(e.columns))
	for _, col := range e.columns {
		if col.Hideable {
			result = append(result, col)
		}
	}
	return result
}

// Column looks up a column by id.
func (e *Engine) Column(id ColumnID) (Column, error) {
	for _, col := range e.columns {
		if col.ID == id {
			return col, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
}

// SetSort makes column the only sort key. SortNone clears sorting.
func (e *Engine) SetSort(column ColumnID, direction SortDirection) error {
	if direction == SortNone || direction == "" {
		e.sort = Sort{}
		return nil
	}
	if direction != SortAscending && direction != SortDescending {
		return fmt.Errorf("%w: %q", ErrInvalidSortDirection, direction)
	}
	col, err := e.Column(column)
	if err != nil {
		return err
	}
	if !col.Sortable {
		return fmt.Errorf("%w: %q", ErrColumnNotSortable, column)
	}
	e.sort = Sort{Column: column, Direction: direction}
	return nil
}

// Sort returns the active sort.
func (e *Engine) Sort() Sort {
	return e.sort
}

// SetFilter sets the substring filter for column. Empty text removes the filter.
func (e *Engine) SetFilter(column ColumnID, text string) error {
	col, err := e.Column(column)
	if err != nil {
		return err
	}
	if !col.Filterable {
		return fmt.Errorf("%w: %q", ErrColumnNotFilterable, column)
	}
	if text == "" {
		delete(e.filters, column)
		return nil
	}
	e.filters[column] = text
	return nil
}

// Filter returns the filter text for column.
func (e *Engine) Filter(column ColumnID) string {
	return e.filters[column]
}

// SetColumnVisibility shows or hides a column. Toggling a non-hideable column does nothing.
func (e *Engine) SetColumnVisibility(column ColumnID, visible bool) error {
	col, err := e.Column(column)
	if err != nil {
		return err
	}
	if !col.Hideable {
		return nil
	}
	if visible {
		delete(e.hidden, column)
	} else {
		e.hidden[column] = true
	}
	return nil
}

// IsColumnVisible reports whether column is part of the rendered projection.
func (e *Engine) IsColumnVisible(column ColumnID) bool {
	return !e.hidden[column]
}

// SetPageSize changes the page size, keeping the first row of the current page in view.
func (e *Engine) SetPageSize(size int) error {
	if size < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	firstRow := e.pageIndex * e.pageSize
	e.pageSize = size
	e.pageIndex = firstRow / size
	return nil
}

// PageSize returns the number of rows per page.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// PageIndex returns the zero-based current page.
func (e *Engine) PageIndex() int {
	return e.pageIndex
}

// NextPage advances one page unless rows is already on its last page.
func (e *Engine) NextPage(rows []works.Work) bool {
	if e.pageIndex+1 >= e.pageCount(len(e.filter(rows))) {
		return false
	}
	e.pageIndex++
	return true
}

// PreviousPage moves back one page unless already on the first page.
func (e *Engine) PreviousPage() bool {
	if e.pageIndex == 0 {
		return false
	}
	e.pageIndex--
	return true
}

// SetPageIndex jumps to index, clamped into the valid page range for rows.
func (e *Engine) SetPageIndex(index int, rows []works.Work) {
	e.pageIndex = clampPage(index, e.pageCount(len(e.filter(rows))))
}

// SetRowSelection replaces the selection with ids.
func (e *Engine) SetRowSelection(ids []works.ID) {
	e.selection = make(map[works.ID]struct{}, len(ids))
	for _, id := range ids {
		e.selection[id] = struct{}{}
	}
}

// ToggleRowSelection flips the selection state of id and returns the new state.
func (e *Engine) ToggleRowSelection(id works.ID) bool {
	if _, ok := e.selection[id]; ok {
		delete(e.selection, id)
		return false
	}
	e.selection[id] = struct{}{}
	return true
}

// IsSelected reports whether id is selected.
func (e *Engine) IsSelected(id works.ID) bool {
	_, ok := e.selection[id]
	return ok
}

// SelectedIDs returns the selected identifiers in lexical order.
func (e *Engine) SelectedIDs() []works.ID {
	ids := make([]works.ID, 0, len(e.selection))
	for id := range e.selection {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (e *Engine) pageCount(filteredRows int) int {
	return (filteredRows + e.pageSize - 1) / e.pageSize
}

func clampPage(index, pageCount int) int {
	last := max(pageCount-1, 0)
	return min(max(index, 0), last)
}
