package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/notes-client/internal/forms"
	"github.com/magabrotheeeer/notes-client/internal/guard"
	"github.com/magabrotheeeer/notes-client/internal/models"
	"github.com/magabrotheeeer/notes-client/internal/store"
)

var errNoteLimit = errors.New("note limit reached for your plan; upgrade to Pro to create more notes")

func notesTable(w io.Writer, notes []models.Note) error {
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{n.ID, n.Title, tags(n.Tags), n.Author.Name, date(n.UpdatedAt)})
	}
	return table(w, "ID\tTITLE\tTAGS\tAUTHOR\tUPDATED", rows)
}

// selectedNote возвращает загруженную заметку id. Вытесненное чтение
// оставляет SelectedNote пустым или чужим.
func selectedNote(st store.NotesState, id string) (models.Note, error) {
	if st.SelectedNote == nil || st.SelectedNote.ID != id {
		return models.Note{}, fmt.Errorf("note %s not loaded", id)
	}
	return *st.SelectedNote, nil
}

func (rt *runtime) notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Work with the account's notes",
	}
	cmd.AddCommand(
		rt.notesListCmd(),
		rt.notesShowCmd(),
		rt.notesCreateCmd(),
		rt.notesEditCmd(),
		rt.notesDeleteCmd(),
		rt.notesTagsCmd(),
	)
	return cmd
}

func (rt *runtime) notesListCmd() *cobra.Command {
	var (
		page, limit int
		search, tag string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally filtered by text and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt.app.Store.SetFilters(models.FiltersPatch{Search: &search, Tags: &tag})
			if err := rt.app.Store.FetchNotes(cmd.Context(), models.NotesQuery{
				Page:   page,
				Limit:  limit,
				Search: search,
				Tags:   tag,
			}); err != nil {
				return err
			}

			st := rt.state().Notes
			if len(st.Notes) == 0 {
				fmt.Fprintln(rt.out(), "No notes found")
				return nil
			}
			if err := notesTable(rt.out(), st.Notes); err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), pages(st.Pagination, "notes"))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", models.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", models.DefaultLimit, "notes per page")
	cmd.Flags().StringVarP(&search, "search", "s", "", "text to search in title and description")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "exact tag to filter by")
	return on(guard.Notes, cmd)
}

func (rt *runtime) notesShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Store.FetchNote(cmd.Context(), args[0]); err != nil {
				return err
			}
			n, err := selectedNote(rt.state().Notes, args[0])
			if err != nil {
				return err
			}

			w := rt.out()
			fmt.Fprintln(w, n.Title)
			fmt.Fprintln(w, strings.Repeat("=", len([]rune(n.Title))))
			fmt.Fprintln(w, n.Description)
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Tags:    %s\n", tags(n.Tags))
			fmt.Fprintf(w, "Author:  %s\n", n.Author.Name)
			fmt.Fprintf(w, "Created: %s\n", date(n.CreatedAt))
			fmt.Fprintf(w, "Updated: %s\n", date(n.UpdatedAt))
			return nil
		},
	}
	return on(guard.NoteView, cmd)
}

func (rt *runtime) notesCreateCmd() *cobra.Command {
	var (
		form    forms.Note
		tagList string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !store.CanCreateNote(rt.state().Session) {
				return errNoteLimit
			}

			form.Tags = forms.SplitTags(tagList)
			in, err := form.Validate()
			if err != nil {
				return err
			}
			if err := rt.app.Store.CreateNote(ctx, in); err != nil {
				return err
			}
			// Счётчик заметок аккаунта меняется только на сервере.
			return rt.app.Store.FetchProfile(ctx)
		},
	}
	cmd.Flags().StringVar(&form.Title, "title", "", "note title")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "note text")
	cmd.Flags().StringVarP(&tagList, "tags", "t", "", "comma-separated tags")
	return on(guard.NoteCreate, cmd)
}

func (rt *runtime) notesEditCmd() *cobra.Command {
	var title, description, tagList string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a note; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rt.app.Store.FetchNote(ctx, args[0]); err != nil {
				return err
			}
			n, err := selectedNote(rt.state().Notes, args[0])
			if err != nil {
				return err
			}
			form := forms.NoteFrom(n)

			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = title
			}
			if flags.Changed("description") {
				form.Description = description
			}
			if flags.Changed("tags") {
				form.Tags = forms.SplitTags(tagList)
			}

			in, err := form.Validate()
			if err != nil {
				return err
			}
			return rt.app.Store.UpdateNote(ctx, args[0], in)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new text")
	cmd.Flags().StringVarP(&tagList, "tags", "t", "", "new comma-separated tags; empty clears them")
	return on(guard.NoteEdit, cmd)
}

func (rt *runtime) notesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := rt.prompt.Confirm(fmt.Sprintf("Delete note %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(rt.out(), "Cancelled")
					return nil
				}
			}
			if err := rt.app.Store.DeleteNote(ctx, args[0]); err != nil {
				return err
			}
			return rt.app.Store.FetchProfile(ctx)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return on(guard.Notes, cmd)
}

func (rt *runtime) notesTagsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags used by the loaded notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Store.FetchNotes(cmd.Context(), models.NotesQuery{Page: 1, Limit: limit}); err != nil {
				return err
			}
			for _, t := range store.AvailableTags(rt.state().Notes.Notes) {
				fmt.Fprintln(rt.out(), t)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "how many recent notes to scan")
	return on(guard.Notes, cmd)
}
