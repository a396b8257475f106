package works

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("works: validation error")

const (
	FieldTitle             = "title"
	FieldOriginalTitle     = "original_title"
	FieldAuthor            = "author"
	FieldPublicationStatus = "status"
	FieldGenres            = "genres"
	FieldTotalChapters     = "total_chapters"
	FieldCurrentChapter    = "current_chapter"
	FieldReadingStatus     = "reading_status"
	FieldRating            = "rating"
	FieldNotes             = "notes"
)

// FieldError describes a validation problem with a single field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field-level validation problems.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// DraftInput carries raw form values for a new or edited work.
type DraftInput struct {
	Title             string
	OriginalTitle     string
	Author            string
	PublicationStatus string
	Genres            string
	TotalChapters     string
	CurrentChapter    string
	ReadingStatus     string
	Rating            string
	Notes             string
}

// ParseDraft converts raw form input into validated Fields.
// Empty enum inputs take the form defaults; empty numeric inputs are zero.
func ParseDraft(input DraftInput) (Fields, error) {
	var problems []FieldError

	fields := Fields{
		Title:             strings.TrimSpace(input.Title),
		OriginalTitle:     strings.TrimSpace(input.OriginalTitle),
		Author:            strings.TrimSpace(input.Author),
		PublicationStatus: PublicationOngoing,
		Genres:            ParseGenres(input.Genres),
		ReadingStatus:     ReadingPlanned,
		Notes:             NotesLog(input.Notes),
	}

	if raw := strings.ToLower(strings.TrimSpace(input.PublicationStatus)); raw != "" {
		fields.PublicationStatus = PublicationStatus(raw)
	}
	if raw := strings.ToLower(strings.TrimSpace(input.ReadingStatus)); raw != "" {
		fields.ReadingStatus = ReadingStatus(raw)
	}

	numbers := []struct {
		field  string
		raw    string
		target *int
	}{
		{FieldTotalChapters, input.TotalChapters, &fields.TotalChapters},
		{FieldCurrentChapter, input.CurrentChapter, &fields.CurrentChapter},
		{FieldRating, input.Rating, &fields.Rating},
	}
	for _, number := range numbers {
		value, err := parseCount(number.raw)
		if err != nil {
			problems = append(problems, FieldError{Field: number.field, Message: err.Error()})
			continue
		}
		*number.target = value
	}

	for _, problem := range fields.problems() {
		if !hasFieldError(problems, problem.Field) {
			problems = append(problems, problem)
		}
	}
	if len(problems) > 0 {
		return Fields{}, &ValidationError{Errors: problems}
	}
	return fields, nil
}

// Validate checks the typed field values against the catalog's constraints.
func (f Fields) Validate() error {
	problems := f.problems()
	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

func (f Fields) problems() []FieldError {
	var problems []FieldError
	if strings.TrimSpace(f.Title) == "" {
		problems = append(problems, FieldError{Field: FieldTitle, Message: "is required"})
	}
	if !f.PublicationStatus.IsValid() {
		problems = append(problems, FieldError{Field: FieldPublicationStatus, Message: fmt.Sprintf("unknown value %q", f.PublicationStatus)})
	}
	if !f.ReadingStatus.IsValid() {
		problems = append(problems, FieldError{Field: FieldReadingStatus, Message: fmt.Sprintf("unknown value %q", f.ReadingStatus)})
	}
	if f.TotalChapters < 0 {
		problems = append(problems, FieldError{Field: FieldTotalChapters, Message: "must not be negative"})
	}
	if f.CurrentChapter < 0 {
		problems = append(problems, FieldError{Field: FieldCurrentChapter, Message: "must not be negative"})
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		problems = append(problems, FieldError{Field: FieldRating, Message: fmt.Sprintf("must be between %d and %d", MinRating, MaxRating)})
	}
	return problems
}

// ParseGenres splits a comma separated list, trimming each entry and dropping empty ones.
func ParseGenres(raw string) []string {
	segments := strings.Split(raw, ",")
	genres := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		genres = append(genres, trimmed)
	}
	return genres
}

// JoinGenres renders genres for a single-line input or cell.
func JoinGenres(genres []string) string {
	return strings.Join(genres, ", ")
}

func parseCount(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if value < 0 {
		return 0, errors.New("must not be negative")
	}
	return value, nil
}

func hasFieldError(problems []FieldError, field string) bool {
	for _, problem := range problems {
		if problem.Field == field {
			return true
		}
	}
	return false
}
