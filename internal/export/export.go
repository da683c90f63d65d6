// Package export turns notes into downloadable documents.
//
// The backend can render PDF and DOCX itself; when it does not, the note
// text is normalized and rendered locally.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/parser"
)

// Format is an export document type.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatPDF, FormatDOCX, FormatMarkdown:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want pdf, docx or md)", s)
	}
}

const maxFilenameLen = 120

var unsafeFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]+`)

// Filename builds a safe file name from a note title.
func Filename(title string, f Format) string {
	if strings.TrimSpace(title) == "" {
		title = models.DefaultNoteTitle
	}
	name := unsafeFilenameRe.ReplaceAllString(title, "-")
	if r := []rune(name); len(r) > maxFilenameLen {
		name = string(r[:maxFilenameLen])
	}
	return name + "." + string(f)
}

// document is the format-independent view of a note.
type document struct {
	Title   string
	Created string
	Blocks  []parser.Block
}

func newDocument(note *models.Note) document {
	return document{
		Title:   note.DisplayTitle(),
		Created: formatCreated(note.CreatedAt.Time),
		Blocks:  parser.ParseBlocks(parser.NormalizeMarkdown(note.Body())),
	}
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

// Render produces the document locally.
func Render(note *models.Note, f Format) ([]byte, error) {
	switch f {
	case FormatPDF:
		return PDF(note)
	case FormatDOCX:
		return DOCX(note)
	case FormatMarkdown:
		return Markdown(note), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// Markdown renders the normalized note with a title header.
func Markdown(note *models.Note) []byte {
	doc := newDocument(note)
	var b strings.Builder
	b.WriteString("# " + doc.Title + "\n\n")
	if doc.Created != "" {
		b.WriteString("_" + doc.Created + "_\n\n")
	}
	b.WriteString(parser.NormalizeMarkdown(note.Body()))
	b.WriteString("\n")
	return []byte(b.String())
}

// Downloader fetches server-rendered documents; nil means unavailable.
type Downloader interface {
	DownloadPDF(ctx context.Context, noteID string) []byte
	DownloadDOCX(ctx context.Context, noteID string) []byte
}

// Result is an exported document.
type Result struct {
	Data     []byte
	Filename string
	// Local is true when the document was rendered on this machine.
	Local bool
}

// Exporter prefers server-rendered documents and falls back to local rendering.
type Exporter struct {
	dl     Downloader
	logger *slog.Logger
}

// NewExporter creates an exporter. dl may be nil to always render locally.
func NewExporter(dl Downloader, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dl: dl, logger: logger}
}

// Export returns note as a document of format f.
func (e *Exporter) Export(ctx context.Context, note *models.Note, f Format) (Result, error) {
	name := Filename(note.DisplayTitle(), f)

	if e.dl != nil && note.ID != "" {
		var data []byte
		switch f {
		case FormatPDF:
			data = e.dl.DownloadPDF(ctx, note.ID)
		case FormatDOCX:
			data = e.dl.DownloadDOCX(ctx, note.ID)
		}
		if data != nil {
			return Result{Data: data, Filename: name}, nil
		}
		if f != FormatMarkdown {
			e.logger.Info("server document unavailable, rendering locally", "note_id", note.ID, "format", f)
		}
	}

	data, err := Render(note, f)
	if err != nil {
		return Result{}, fmt.Errorf("render %s: %w", f, err)
	}
	return Result{Data: data, Filename: name, Local: true}, nil
}
