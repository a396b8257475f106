package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/catalog"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/config"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/database"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"go.uber.org/zap"
)

type cliHarness struct {
	store *works.Service
	err   error
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "shelf.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	service, err := works.NewService(works.ServiceConfig{Database: db, IDProvider: works.NewUUIDProvider()})
	if err != nil {
		t.Fatalf("failed to build works service: %v", err)
	}
	return &cliHarness{store: service}
}

func (h *cliHarness) run(stdin string, args ...string) cliResult {
	deps := appDeps{
		openStore: func(config.ClientConfig, *zap.Logger) (catalog.Store, error) {
			if h.err != nil {
				return failingStore{err: h.err}, nil
			}
			return h.store, nil
		},
		newLogger: func(string) (*zap.Logger, error) { return zap.NewNop(), nil },
		stdin:     strings.NewReader(stdin),
	}

	var stdout, stderr bytes.Buffer
	rootCmd := newRootCommand(deps)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--api-key", "test-key"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (h *cliHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	result := h.run("", args...)
	if result.err != nil {
		t.Fatalf("shelf %s failed: %v", strings.Join(args, " "), result.err)
	}
	return result.stdout
}

func (h *cliHarness) storedID(t *testing.T, title string) works.ID {
	t.Helper()
	items, err := h.store.List(context.Background(), works.RecentlyUpdatedFirst)
	if err != nil {
		t.Fatalf("failed to list works: %v", err)
	}
	for _, item := range items {
		if item.Title == title {
			return item.ID
		}
	}
	t.Fatalf("work %q not stored", title)
	return ""
}

type failingStore struct {
	err error
}

func (s failingStore) List(context.Context, works.Ordering) ([]works.Work, error) { return nil, s.err }

func (s failingStore) Insert(context.Context, works.Record) (works.Work, error) {
	return works.Work{}, s.err
}

func (s failingStore) Update(context.Context, works.ID, works.Record) error { return s.err }

func (s failingStore) Delete(context.Context, works.ID) error { return s.err }

func TestAddThenListShowsWork(t *testing.T) {
	harness := newCLIHarness(t)

	output := harness.mustRun(t, "add", "--title", "Dune", "--author", "Frank Herbert", "--rating", "4")
	if !strings.Contains(output, `Added "Dune"`) {
		t.Fatalf("unexpected add output %q", output)
	}

	output = harness.mustRun(t, "list")
	for _, want := range []string{"Dune", "Frank Herbert", "★★★★", "plan-to-read", "Page 1 of 1 · 0 of 1 row(s) selected."} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected list output to contain %q, got\n%s", want, output)
		}
	}
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	harness := newCLIHarness(t)

	result := harness.run("", "add", "--title", " ", "--rating", "9")
	var validationErr *works.ValidationError
	if !errors.As(result.err, &validationErr) || len(validationErr.Errors) != 2 {
		t.Fatalf("expected two field errors, got %v", result.err)
	}

	items, err := harness.store.List(context.Background(), works.RecentlyUpdatedFirst)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected nothing stored, got %d items (%v)", len(items), err)
	}
}

func TestListAppliesViewFlags(t *testing.T) {
	harness := newCLIHarness(t)
	harness.mustRun(t, "add", "--title", "Berserk", "--author", "Kentaro Miura", "--rating", "5")
	harness.mustRun(t, "add", "--title", "Vinland Saga", "--author", "Makoto Yukimura", "--rating", "3")
	berserk := harness.storedID(t, "Berserk")

	testCases := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "filter",
			args:    []string{"list", "--filter", "Vinland"},
			want:    []string{"Vinland Saga", "0 of 1 row(s) selected."},
			notWant: []string{"Berserk"},
		},
		{
			name: "filter without matches",
			args: []string{"list", "--filter", "vinland"},
			want: []string{"No results.", "Page 1 of 1 · 0 of 0 row(s) selected."},
		},
		{
			name:    "hidden column",
			args:    []string{"list", "--hide", "author"},
			want:    []string{"Berserk"},
			notWant: []string{"AUTHOR", "Kentaro Miura"},
		},
		{
			name: "selection",
			args: []string{"list", "--select", berserk.String()},
			want: []string{"[x]", "1 of 2 row(s) selected."},
		},
		{
			name:    "pagination clamps to last page",
			args:    []string{"list", "--sort", "rating", "--page-size", "1", "--page", "9"},
			want:    []string{"Berserk", "Page 2 of 2"},
			notWant: []string{"Vinland Saga"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			output := harness.mustRun(t, testCase.args...)
			for _, want := range testCase.want {
				if !strings.Contains(output, want) {
					t.Fatalf("expected output to contain %q, got\n%s", want, output)
				}
			}
			for _, notWant := range testCase.notWant {
				if strings.Contains(output, notWant) {
					t.Fatalf("expected output to omit %q, got\n%s", notWant, output)
				}
			}
		})
	}
}

func TestListRejectsInvalidViewFlags(t *testing.T) {
	harness := newCLIHarness(t)

	if result := harness.run("", "list", "--sort", "genres"); result.err == nil {
		t.Fatalf("expected sort on an unsortable column to fail")
	}
	if result := harness.run("", "list", "--page-size", "0"); result.err == nil {
		t.Fatalf("expected zero page size to fail")
	}
}

func TestEditReplacesChangedFields(t *testing.T) {
	harness := newCLIHarness(t)
	harness.mustRun(t, "add", "--title", "Monster", "--genres", "thriller", "--total-chapters", "162")
	id := harness.storedID(t, "Monster")

	output := harness.mustRun(t, "edit", id.String(), "--current-chapter", "40", "--genres", "thriller, mystery")
	if !strings.Contains(output, `Updated "Monster"`) {
		t.Fatalf("unexpected edit output %q", output)
	}

	output = harness.mustRun(t, "show", id.String())
	for _, want := range []string{"thriller, mystery", "40", "162", "No notes."} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected details to contain %q, got\n%s", want, output)
		}
	}
}

func TestEditRequiresAChange(t *testing.T) {
	harness := newCLIHarness(t)
	harness.mustRun(t, "add", "--title", "Monster")
	id := harness.storedID(t, "Monster")

	if result := harness.run("", "edit", id.String()); !errors.Is(result.err, errNothingToChange) {
		t.Fatalf("expected nothing to change, got %v", result.err)
	}
	if result := harness.run("", "edit", id.String(), "--rating", "four"); result.err == nil {
		t.Fatalf("expected non-numeric rating to fail")
	}
}

func TestNoteAppendsLines(t *testing.T) {
	harness := newCLIHarness(t)
	harness.mustRun(t, "add", "--title", "Pluto")
	id := harness.storedID(t, "Pluto")

	harness.mustRun(t, "note", id.String(), "A")
	harness.mustRun(t, "note", id.String(), "second", "line")
	if output := harness.mustRun(t, "note", id.String(), "   "); !strings.Contains(output, "Nothing to add") {
		t.Fatalf("expected blank note to be ignored, got %q", output)
	}

	output := harness.mustRun(t, "show", id.String())
	if !strings.Contains(output, "  1. A\n") || !strings.Contains(output, "  2. second line\n") {
		t.Fatalf("unexpected notes in details\n%s", output)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	harness := newCLIHarness(t)
	harness.mustRun(t, "add", "--title", "Dune")
	id := harness.storedID(t, "Dune")

	declined := harness.run("n\n", "delete", id.String())
	if declined.err != nil || !strings.Contains(declined.stdout, "Deletion cancelled") {
		t.Fatalf("unexpected declined result %#v", declined)
	}
	if !strings.Contains(declined.stderr, `Delete "Dune"? (y/N) `) {
		t.Fatalf("expected prompt on stderr, got %q", declined.stderr)
	}
	harness.storedID(t, "Dune")

	confirmed := harness.run("yes\n", "delete", id.String())
	if confirmed.err != nil || !strings.Contains(confirmed.stdout, "Deleted") {
		t.Fatalf("unexpected confirmed result %#v", confirmed)
	}
	items, err := harness.store.List(context.Background(), works.RecentlyUpdatedFirst)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty store, got %d items (%v)", len(items), err)
	}
}

func TestDeleteWithYesSkipsPrompt(t *testing.T) {
	harness := newCLIHarness(t)
	harness.mustRun(t, "add", "--title", "Dune")
	id := harness.storedID(t, "Dune")

	result := harness.run("", "delete", "--yes", id.String())
	if result.err != nil || result.stderr != "" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCommandsReportUnknownWork(t *testing.T) {
	harness := newCLIHarness(t)

	for _, args := range [][]string{
		{"show", "missing"},
		{"note", "missing", "text"},
		{"delete", "--yes", "missing"},
		{"edit", "missing", "--rating", "1"},
	} {
		if result := harness.run("", args...); !errors.Is(result.err, works.ErrWorkNotFound) {
			t.Fatalf("shelf %s: expected not found, got %v", strings.Join(args, " "), result.err)
		}
	}
}

func TestStoreFailureSurfacesControllerMessage(t *testing.T) {
	harness := newCLIHarness(t)
	harness.err = errors.New("store unavailable")

	result := harness.run("", "list")
	if result.err == nil || result.err.Error() != "Error loading works: store unavailable" {
		t.Fatalf("unexpected error %v", result.err)
	}
	if !errors.Is(result.err, harness.err) {
		t.Fatalf("expected the store error to stay reachable")
	}
}

func TestMissingAPIKeyFails(t *testing.T) {
	t.Setenv("SHELF_STORE_API_KEY", "")
	deps := appDeps{
		openStore: func(config.ClientConfig, *zap.Logger) (catalog.Store, error) {
			t.Fatalf("store must not be opened without a key")
			return nil, nil
		},
		newLogger: func(string) (*zap.Logger, error) { return zap.NewNop(), nil },
		stdin:     strings.NewReader(""),
	}
	rootCmd := newRootCommand(deps)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"list"})

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "store.api_key is required") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestExplicitConfigFileMustLoad(t *testing.T) {
	harness := newCLIHarness(t)
	malformed := filepath.Join(t.TempDir(), "shelf.yaml")
	if err := os.WriteFile(malformed, []byte("store: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	testCases := []struct {
		name string
		path string
	}{
		{name: "missing", path: filepath.Join(t.TempDir(), "absent.yaml")},
		{name: "malformed", path: malformed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := harness.run("", "--config", testCase.path, "list"); result.err == nil {
				t.Fatalf("expected --config %s to fail", testCase.path)
			}
		})
	}

	valid := filepath.Join(t.TempDir(), "shelf.yaml")
	if err := os.WriteFile(valid, []byte("view:\n  page_size: 1\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	harness.mustRun(t, "add", "--title", "Berserk")
	harness.mustRun(t, "add", "--title", "Vinland Saga")
	if output := harness.mustRun(t, "--config", valid, "list"); !strings.Contains(output, "Page 1 of 2") {
		t.Fatalf("expected page size from config file, got\n%s", output)
	}
}
