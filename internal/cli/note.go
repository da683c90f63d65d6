package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/parser"
	"github.com/talktotext/talktotext/internal/service"
)

var (
	noteOutline    bool
	noteTranscript bool
)

var noteCmd = &cobra.Command{
	Use:   "note <note-id>",
	Short: "Show a processed note",
	Long: `Show the notes produced for a recording.

Examples:
  talktotext note 65f1c0de
  talktotext note 65f1c0de --outline
  talktotext note 65f1c0de --transcript`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showNote(cmd.Context(), args[0], noteOutline, noteTranscript)
	},
}

func init() {
	noteCmd.Flags().BoolVar(&noteOutline, "outline", false, "list section headings only")
	noteCmd.Flags().BoolVar(&noteTranscript, "transcript", false, "append the (cleaned) transcript")
}

func showNote(ctx context.Context, noteID string, outline, transcript bool) error {
	view := newNotes().Open(ctx, noteID)
	if view.Error != "" {
		return fmt.Errorf("load note: %s\n%s", view.Error, backHint(view.BackTarget))
	}

	w := os.Stdout
	if outline {
		renderOutline(w, view.Note)
	} else {
		renderNote(w, view.Note, transcript)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, defaultTheme.hintStyle().Render(fmt.Sprintf("Export with 'talktotext download %s --format pdf'. %s", view.Note.ID, backHint(view.BackTarget))))
	return nil
}

// backHint names the command matching the note view's back target.
func backHint(target string) string {
	if target == service.BackToHistory {
		return "Back: 'talktotext history'."
	}
	return "Back: 'talktotext upload'."
}

var (
	h1Style     = lipgloss.NewStyle().Bold(true).Underline(true)
	h2Style     = lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Title)
	h3Style     = lipgloss.NewStyle().Bold(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle   = lipgloss.NewStyle().Foreground(defaultTheme.Hint)
	bulletStyle = lipgloss.NewStyle().Foreground(defaultTheme.Status)
)

func renderNote(w io.Writer, note *models.Note, transcript bool) {
	fmt.Fprintln(w, h1Style.Render(note.DisplayTitle()))
	if !note.CreatedAt.IsZero() {
		fmt.Fprintln(w, metaStyle.Render("Created "+note.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	fmt.Fprintln(w)

	renderMarkdown(w, note.Body())

	if transcript {
		text := models.Deref(note.CleanedTranscript)
		if text == "" {
			text = models.Deref(note.Transcript)
		}
		if text != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, h2Style.Render("Transcript"))
			fmt.Fprintln(w, text)
		}
	}
}

func renderMarkdown(w io.Writer, md string) {
	for _, b := range parser.ParseBlocks(parser.NormalizeMarkdown(md)) {
		switch b.Kind {
		case parser.BlockHeading:
			style := h3Style
			switch b.Level {
			case 1:
				style = h1Style
			case 2:
				style = h2Style
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, style.Render(parser.PlainText(b.Text)))
		case parser.BlockBullet:
			fmt.Fprintf(w, "  %s %s\n", bulletStyle.Render("•"), inline(b.Text))
		case parser.BlockNumbered:
			fmt.Fprintf(w, "  %s %s\n", bulletStyle.Render(b.Number), inline(b.Text))
		default:
			fmt.Fprintln(w, inline(b.Text))
		}
	}
}

func inline(text string) string {
	var b strings.Builder
	for _, s := range parser.Spans(text) {
		if s.Bold {
			b.WriteString(boldStyle.Render(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

func renderOutline(w io.Writer, note *models.Note) {
	fmt.Fprintln(w, h1Style.Render(note.DisplayTitle()))
	sections := parser.ParseSections(parser.NormalizeMarkdown(note.Body()))
	if len(sections) == 0 {
		fmt.Fprintln(w, "No sections.")
		return
	}
	for _, s := range sections {
		indent := strings.Repeat("  ", max(s.Level-2, 0))
		lines := len(parser.ParseBlocks(s.Content))
		fmt.Fprintf(w, "%s- %s %s\n", indent, parser.PlainText(s.Heading), metaStyle.Render(fmt.Sprintf("(%d lines)", lines)))
	}
}
