package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/catalog"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/view"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"github.com/spf13/cobra"
)

var errNothingToChange = errors.New("no fields to change")

func (a *app) newListCommand() *cobra.Command {
	var (
		sortColumn string
		descending bool
		filter     string
		page       int
		pageSize   int
		hidden     []string
		selected   []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the catalog as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := a.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer current.close()

			engine := view.NewEngine(current.config.PageSize)
			if cmd.Flags().Changed("page-size") {
				if err := engine.SetPageSize(pageSize); err != nil {
					return err
				}
			}

			if sortColumn != "" {
				direction := view.SortAscending
				if descending {
					direction = view.SortDescending
				}
				if err := engine.SetSort(view.ColumnID(sortColumn), direction); err != nil {
					return err
				}
			}
			if err := engine.SetFilter(view.ColumnTitle, filter); err != nil {
				return err
			}
			for _, column := range hidden {
				if err := engine.SetColumnVisibility(view.ColumnID(strings.TrimSpace(column)), false); err != nil {
					return err
				}
			}
			ids := make([]works.ID, 0, len(selected))
			for _, raw := range selected {
				ids = append(ids, works.ID(strings.TrimSpace(raw)))
			}
			engine.SetRowSelection(ids)

			rows := current.controller.Works()
			engine.SetPageIndex(page-1, rows)
			renderPage(cmd.OutOrStdout(), engine.Compute(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortColumn, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&descending, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&filter, "filter", "", "Only show titles containing this text (case-sensitive)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", view.DefaultPageSize, "Rows per page")
	cmd.Flags().StringSliceVar(&hidden, "hide", nil, "Columns to hide")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "Work ids to mark as selected")

	return cmd
}

type formFlags struct {
	title          string
	originalTitle  string
	author         string
	status         string
	genres         string
	totalChapters  string
	currentChapter string
	readingStatus  string
	rating         string
	notes          string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.originalTitle, "original-title", "", "Original title")
	cmd.Flags().StringVar(&f.author, "author", "", "Author")
	cmd.Flags().StringVar(&f.status, "status", "", "Publication status (ongoing, hiatus, completed, dropped)")
	cmd.Flags().StringVar(&f.genres, "genres", "", "Comma separated genres")
	cmd.Flags().StringVar(&f.totalChapters, "total-chapters", "", "Total chapters")
	cmd.Flags().StringVar(&f.currentChapter, "current-chapter", "", "Current chapter")
	cmd.Flags().StringVar(&f.readingStatus, "reading-status", "", "Reading status (reading, plan-to-read, completed, on-hold, dropped)")
	cmd.Flags().StringVar(&f.rating, "rating", "", "Rating from 0 to 5")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Initial notes")
}

func (f *formFlags) draftInput() works.DraftInput {
	return works.DraftInput{
		Title:             f.title,
		OriginalTitle:     f.originalTitle,
		Author:            f.author,
		PublicationStatus: f.status,
		Genres:            f.genres,
		TotalChapters:     f.totalChapters,
		CurrentChapter:    f.currentChapter,
		ReadingStatus:     f.readingStatus,
		Rating:            f.rating,
		Notes:             f.notes,
	}
}

func (a *app) newAddCommand() *cobra.Command {
	var form formFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a work to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := works.ParseDraft(form.draftInput())
			if err != nil {
				return err
			}

			current, err := a.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer current.close()

			if err := current.controller.Create(cmd.Context(), fields); err != nil {
				return current.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q\n", fields.Title)
			return nil
		},
	}
	form.register(cmd)

	return cmd
}

func (a *app) newEditCommand() *cobra.Command {
	var form formFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := works.NewID(args[0])
			if err != nil {
				return err
			}
			overrides, err := form.overrides(cmd)
			if err != nil {
				return err
			}
			if overrides.IsEmpty() {
				return errNothingToChange
			}

			current, err := a.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer current.close()

			work, err := current.find(id)
			if err != nil {
				return err
			}
			updated := overrides.Apply(work)
			if err := current.controller.Update(cmd.Context(), id, updated); err != nil {
				return current.failure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", updated.Title)
			return nil
		},
	}
	form.register(cmd)

	return cmd
}

// overrides collects only the flags given on the command line.
func (f *formFlags) overrides(cmd *cobra.Command) (works.Overrides, error) {
	var overrides works.Overrides
	changed := cmd.Flags().Changed

	if changed("title") {
		overrides.Title = &f.title
	}
	if changed("original-title") {
		overrides.OriginalTitle = &f.originalTitle
	}
	if changed("author") {
		overrides.Author = &f.author
	}
	if changed("status") {
		status := works.PublicationStatus(strings.ToLower(strings.TrimSpace(f.status)))
		overrides.PublicationStatus = &status
	}
	if changed("genres") {
		overrides = overrides.WithGenres(works.ParseGenres(f.genres))
	}
	if changed("reading-status") {
		status := works.ReadingStatus(strings.ToLower(strings.TrimSpace(f.readingStatus)))
		overrides.ReadingStatus = &status
	}
	if changed("notes") {
		overrides = overrides.WithNotes(works.NotesLog(f.notes))
	}

	numbers := []struct {
		flag   string
		raw    string
		target **int
	}{
		{"total-chapters", f.totalChapters, &overrides.TotalChapters},
		{"current-chapter", f.currentChapter, &overrides.CurrentChapter},
		{"rating", f.rating, &overrides.Rating},
	}
	for _, number := range numbers {
		if !changed(number.flag) {
			continue
		}
		value, err := strconv.Atoi(strings.TrimSpace(number.raw))
		if err != nil {
			return works.Overrides{}, fmt.Errorf("--%s must be a whole number", number.flag)
		}
		*number.target = &value
	}

	return overrides, nil
}

func (a *app) newDeleteCommand() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a work from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := works.NewID(args[0])
			if err != nil {
				return err
			}

			var confirmer catalog.Confirmer = newPromptConfirmer(a.deps.stdin, cmd.ErrOrStderr())
			if assumeYes {
				confirmer = catalog.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
			}

			current, err := a.openSession(cmd.Context(), confirmer)
			if err != nil {
				return err
			}
			defer current.close()

			if _, err := current.find(id); err != nil {
				return err
			}
			deleted, err := current.controller.Delete(cmd.Context(), id)
			if err != nil {
				return current.failure(err)
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking")

	return cmd
}

func (a *app) newNoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <text>...",
		Short: "Append a line to a work's notes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := works.NewID(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")

			current, err := a.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer current.close()

			work, err := current.find(id)
			if err != nil {
				return err
			}
			appended, err := current.controller.AppendNote(cmd.Context(), work, text)
			if err != nil {
				return current.failure(err)
			}
			if !appended {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to add")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note to %q\n", work.Title)
			return nil
		},
	}
}

func (a *app) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field and note of a work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := works.NewID(args[0])
			if err != nil {
				return err
			}

			current, err := a.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer current.close()

			work, err := current.find(id)
			if err != nil {
				return err
			}
			renderDetails(cmd.OutOrStdout(), work)
			return nil
		},
	}
}

func (s *session) find(id works.ID) (works.Work, error) {
	work, ok := s.controller.Find(id)
	if !ok {
		return works.Work{}, fmt.Errorf("%w: %s", works.ErrWorkNotFound, id)
	}
	return work, nil
}
