package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talktotext/talktotext/internal/export"
)

var (
	downloadFormat string
	downloadOutput string
	downloadLocal  bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <note-id>",
	Short: "Export a note as PDF, DOCX or Markdown",
	Long: `Export a note to a file.

The server-rendered document is used when available; otherwise the
document is rendered locally from the note text.

Examples:
  talktotext download 65f1c0de
  talktotext download 65f1c0de --format docx --output ./exports
  talktotext download 65f1c0de --format md --local`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadFormat, "format", "f", string(export.FormatPDF), "pdf, docx or md")
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", ".", "output directory or file path")
	downloadCmd.Flags().BoolVar(&downloadLocal, "local", false, "always render locally")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := export.ParseFormat(downloadFormat)
	if err != nil {
		return err
	}

	view := newNotes().Open(ctx, args[0])
	if view.Error != "" {
		return fmt.Errorf("load note: %s", view.Error)
	}

	var ex *export.Exporter
	if downloadLocal {
		ex = export.NewExporter(nil, logger)
	} else {
		ex = export.NewExporter(apiClient, logger)
	}
	res, err := ex.Export(ctx, view.Note, format)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	path := outputPath(downloadOutput, res.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	source := "server"
	if res.Local {
		source = "local"
	}
	fmt.Printf("Saved %s (%d bytes, %s render)\n", path, len(res.Data), source)
	return nil
}

// outputPath treats out as a directory unless it names a file with an extension.
func outputPath(out, filename string) string {
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	if filepath.Ext(out) == "" {
		return filepath.Join(out, filename)
	}
	return out
}
