package works

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestParseDraftAppliesFormDefaults(t *testing.T) {
	fields, err := ParseDraft(DraftInput{Title: "  Berserk  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Title != "Berserk" {
		t.Fatalf("expected trimmed title, got %q", fields.Title)
	}
	if fields.PublicationStatus != PublicationOngoing {
		t.Fatalf("expected ongoing default, got %s", fields.PublicationStatus)
	}
	if fields.ReadingStatus != ReadingPlanned {
		t.Fatalf("expected plan-to-read default, got %s", fields.ReadingStatus)
	}
	if fields.TotalChapters != 0 || fields.CurrentChapter != 0 || fields.Rating != 0 {
		t.Fatalf("expected zero numbers, got %#v", fields)
	}
	if len(fields.Genres) != 0 {
		t.Fatalf("expected no genres, got %#v", fields.Genres)
	}
}

func TestParseDraftCoercesValues(t *testing.T) {
	fields, err := ParseDraft(DraftInput{
		Title:             "Vagabond",
		OriginalTitle:     "バガボンド",
		Author:            "Takehiko Inoue",
		PublicationStatus: "Hiatus",
		Genres:            "seinen, historical,, martial arts ",
		TotalChapters:     " 327 ",
		CurrentChapter:    "120",
		ReadingStatus:     "on-hold",
		Rating:            "5",
		Notes:             "great art",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.PublicationStatus != PublicationHiatus || fields.ReadingStatus != ReadingOnHold {
		t.Fatalf("unexpected statuses %s / %s", fields.PublicationStatus, fields.ReadingStatus)
	}
	if fields.TotalChapters != 327 || fields.CurrentChapter != 120 || fields.Rating != 5 {
		t.Fatalf("unexpected numbers %#v", fields)
	}
	if !slices.Equal(fields.Genres, []string{"seinen", "historical", "martial arts"}) {
		t.Fatalf("unexpected genres %#v", fields.Genres)
	}
	if fields.Notes != "great art" {
		t.Fatalf("unexpected notes %q", fields.Notes)
	}
}

func TestParseDraftReportsEveryInvalidField(t *testing.T) {
	_, err := ParseDraft(DraftInput{
		Title:          "",
		ReadingStatus:  "skimming",
		TotalChapters:  "twelve",
		CurrentChapter: "-1",
		Rating:         "6",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	got := map[string]string{}
	for _, fieldErr := range validationErr.Errors {
		if _, seen := got[fieldErr.Field]; seen {
			t.Fatalf("field %s reported twice", fieldErr.Field)
		}
		got[fieldErr.Field] = fieldErr.Message
	}
	for _, field := range []string{FieldTitle, FieldReadingStatus, FieldTotalChapters, FieldCurrentChapter, FieldRating} {
		if _, ok := got[field]; !ok {
			t.Fatalf("expected error for %s, got %#v", field, got)
		}
	}
	if got[FieldTotalChapters] != "must be a whole number" {
		t.Fatalf("unexpected total chapters message %q", got[FieldTotalChapters])
	}
	if !strings.Contains(got[FieldRating], "between 0 and 5") {
		t.Fatalf("unexpected rating message %q", got[FieldRating])
	}
}

func TestFieldsValidate(t *testing.T) {
	valid := Fields{Title: "Monster", PublicationStatus: PublicationCompleted, ReadingStatus: ReadingCompleted, Rating: 5}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testCases := []struct {
		name   string
		mutate func(*Fields)
		field  string
	}{
		{name: "blank-title", mutate: func(f *Fields) { f.Title = "   " }, field: FieldTitle},
		{name: "unknown-status", mutate: func(f *Fields) { f.PublicationStatus = "paused" }, field: FieldPublicationStatus},
		{name: "empty-reading-status", mutate: func(f *Fields) { f.ReadingStatus = "" }, field: FieldReadingStatus},
		{name: "negative-total", mutate: func(f *Fields) { f.TotalChapters = -1 }, field: FieldTotalChapters},
		{name: "negative-current", mutate: func(f *Fields) { f.CurrentChapter = -3 }, field: FieldCurrentChapter},
		{name: "rating-too-high", mutate: func(f *Fields) { f.Rating = MaxRating + 1 }, field: FieldRating},
		{name: "rating-negative", mutate: func(f *Fields) { f.Rating = -1 }, field: FieldRating},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fields := valid.Clone()
			testCase.mutate(&fields)
			err := fields.Validate()
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(validationErr.Errors) != 1 || validationErr.Errors[0].Field != testCase.field {
				t.Fatalf("expected single %s error, got %#v", testCase.field, validationErr.Errors)
			}
		})
	}
}

func TestFieldsToleratesChapterOverflow(t *testing.T) {
	fields := Fields{Title: "Ongoing", PublicationStatus: PublicationOngoing, ReadingStatus: ReadingInProgress, TotalChapters: 10, CurrentChapter: 12}
	if err := fields.Validate(); err != nil {
		t.Fatalf("expected overflow to be accepted, got %v", err)
	}
	if !fields.ChapterOverflow() {
		t.Fatalf("expected overflow to be reported")
	}

	fields.TotalChapters = 0
	if fields.ChapterOverflow() {
		t.Fatalf("unknown totals never overflow")
	}
}

func TestParseGenres(t *testing.T) {
	testCases := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: []string{}},
		{raw: " , ,", want: []string{}},
		{raw: "action", want: []string{"action"}},
		{raw: "action, drama ,comedy", want: []string{"action", "drama", "comedy"}},
	}
	for _, testCase := range testCases {
		got := ParseGenres(testCase.raw)
		if !slices.Equal(got, testCase.want) {
			t.Fatalf("ParseGenres(%q) = %#v, want %#v", testCase.raw, got, testCase.want)
		}
	}

	if joined := JoinGenres([]string{"action", "drama"}); joined != "action, drama" {
		t.Fatalf("unexpected join %q", joined)
	}
}
