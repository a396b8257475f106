package works

import "slices"

// Overrides names the fields to replace when deriving a new full record from a base work.
// Nil fields keep the base value.
type Overrides struct {
	Title             *string
	OriginalTitle     *string
	Author            *string
	PublicationStatus *PublicationStatus
	Genres            []string
	ReplaceGenres     bool
	TotalChapters     *int
	CurrentChapter    *int
	ReadingStatus     *ReadingStatus
	Rating            *int
	Notes             *NotesLog
}

// Apply returns a copy of base with the overridden fields replaced.
// Identifier and timestamps are carried over unchanged.
func (o Overrides) Apply(base Work) Work {
	result := base.Clone()
	fields := &result.Fields
	if o.Title != nil {
		fields.Title = *o.Title
	}
	if o.OriginalTitle != nil {
		fields.OriginalTitle = *o.OriginalTitle
	}
	if o.Author != nil {
		fields.Author = *o.Author
	}
	if o.PublicationStatus != nil {
		fields.PublicationStatus = *o.PublicationStatus
	}
	if o.ReplaceGenres {
		fields.Genres = slices.Clone(o.Genres)
	}
	if o.TotalChapters != nil {
		fields.TotalChapters = *o.TotalChapters
	}
	if o.CurrentChapter != nil {
		fields.CurrentChapter = *o.CurrentChapter
	}
	if o.ReadingStatus != nil {
		fields.ReadingStatus = *o.ReadingStatus
	}
	if o.Rating != nil {
		fields.Rating = *o.Rating
	}
	if o.Notes != nil {
		fields.Notes = *o.Notes
	}
	return result
}

// IsEmpty reports whether no field is overridden.
func (o Overrides) IsEmpty() bool {
	return o.Title == nil && o.OriginalTitle == nil && o.Author == nil &&
		o.PublicationStatus == nil && !o.ReplaceGenres && o.TotalChapters == nil &&
		o.CurrentChapter == nil && o.ReadingStatus == nil && o.Rating == nil && o.Notes == nil
}

// WithGenres sets the genres override.
func (o Overrides) WithGenres(genres []string) Overrides {
	o.Genres = slices.Clone(genres)
	o.ReplaceGenres = true
	return o
}

// WithNotes sets the notes override.
func (o Overrides) WithNotes(notes NotesLog) Overrides {
	o.Notes = &notes
	return o
}
