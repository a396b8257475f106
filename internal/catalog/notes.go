package catalog

import (
	"context"
	"strings"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
)

// AppendNote adds a line to the notes log of work and saves the full record.
//
// The new log is built from the notes held by the given snapshot, not from the
// store. A note appended elsewhere after that snapshot was taken is overwritten.
// Blank text is ignored and reported as false.
func (c *Controller) AppendNote(ctx context.Context, work works.Work, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	updated := works.Overrides{}.WithNotes(work.Notes.Append(text)).Apply(work)
	if err := c.update(ctx, opAppendNote, work.ID, updated); err != nil {
		return false, err
	}
	return true, nil
}
