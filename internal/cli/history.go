package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/service"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your processed notes",
	Long: `List the notes created for the signed-in account, newest first.

Examples:
  talktotext history
  talktotext history --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max results (0 for all)")
}

var idStyle = lipgloss.NewStyle().Foreground(defaultTheme.Status)

func runHistory(cmd *cobra.Command, args []string) error {
	items, err := newNotes().History(cmd.Context())
	if errors.Is(err, service.ErrLoginRequired) {
		return fmt.Errorf("%w: use 'talktotext login' first", err)
	}
	if err != nil {
		return fmt.Errorf("list history: %w\nRetry with 'talktotext history'", err)
	}

	if len(items) == 0 {
		fmt.Println("No notes yet. Upload a recording with 'talktotext upload'.")
		return nil
	}

	total := len(items)
	if historyLimit > 0 && total > historyLimit {
		items = items[:historyLimit]
	}

	fmt.Printf("Notes (%d):\n\n", total)
	for _, it := range items {
		title := models.Deref(it.Title)
		if title == "" {
			title = models.DefaultNoteTitle
		}
		created := ""
		if !it.CreatedAt.IsZero() {
			created = it.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("- %s  %s  %s\n", idStyle.Render(it.ID), boldStyle.Render(title), metaStyle.Render(created))
		if verbose && it.Preview != "" {
			fmt.Printf("  %s\n", previewLine(it.Preview, 100))
		}
	}
	if historyLimit > 0 && total > historyLimit {
		fmt.Printf("\n... and %d more (use --limit 0 to show all)\n", total-historyLimit)
	}
	return nil
}

// previewLine flattens a preview to one line of at most n runes.
func previewLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
