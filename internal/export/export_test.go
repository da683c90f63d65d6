package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktotext/talktotext/internal/models"
)

func sampleNote() *models.Note {
	summary := "**Summary**\nBudget <approved> & signed.\n\n\n* **Owner:** Ada\n*follow up\n1. ship"
	return &models.Note{
		ID:              "n1",
		Title:           models.StringPtr("Q3 Planning"),
		FinalNotes:      "raw notes",
		AbstractSummary: &summary,
		CreatedAt:       models.NewTimestamp(time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)),
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		f     Format
		want  string
	}{
		{"Weekly Sync", FormatPDF, "Weekly Sync.pdf"},
		{`a/b\c:d*e?f"g<h>i|j`, FormatDOCX, "a-b-c-d-e-f-g-h-i-j.docx"},
		{"", FormatMarkdown, "Meeting Notes.md"},
		{"x//y", FormatPDF, "x-y.pdf"},
		{strings.Repeat("a", 200), FormatPDF, strings.Repeat("a", 120) + ".pdf"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.title, tt.f))
	}
}

func TestFilenameTruncatesOnCharacters(t *testing.T) {
	title := strings.Repeat("ü", 119) + "会議メモ"

	got := Filename(title, FormatPDF)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 119)+"会.pdf", got)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"pdf": FormatPDF, ".DOCX": FormatDOCX, "markdown": FormatMarkdown, "md": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("odt")
	assert.Error(t, err)
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleNote())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFEmptyNote(t *testing.T) {
	data, err := PDF(&models.Note{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestDOCX(t *testing.T) {
	data, err := DOCX(sampleNote())
	require.NoError(t, err)

	assert.Contains(t, readZipPart(t, data, "[Content_Types].xml"), "wordprocessingml.document.main+xml")

	doc := readZipPart(t, data, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Title"/></w:pPr><w:r><w:t xml:space="preserve">Q3 Planning</w:t>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">Summary</w:t>`)
	assert.Contains(t, doc, "Budget &lt;approved&gt; &amp; signed.")
	assert.Contains(t, doc, `<w:t xml:space="preserve">• </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Owner:</w:t>`)
	assert.Contains(t, doc, "follow up")
	assert.Contains(t, doc, `<w:t xml:space="preserve">1. </w:t>`)
	assert.NotContains(t, doc, "raw notes")
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown(sampleNote()))
	assert.True(t, strings.HasPrefix(out, "# Q3 Planning\n\n_"))
	assert.Contains(t, out, "## Summary\n\nBudget <approved> & signed.\n\n- **Owner:** Ada\n- follow up\n1. ship\n")
}

type fakeDownloader struct {
	pdf, docx []byte
	calls     int
}

func (f *fakeDownloader) DownloadPDF(context.Context, string) []byte {
	f.calls++
	return f.pdf
}

func (f *fakeDownloader) DownloadDOCX(context.Context, string) []byte {
	f.calls++
	return f.docx
}

func TestExporterPrefersServerDocument(t *testing.T) {
	dl := &fakeDownloader{pdf: []byte("server-pdf")}
	e := NewExporter(dl, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := e.Export(context.Background(), sampleNote(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, []byte("server-pdf"), res.Data)
	assert.False(t, res.Local)
	assert.Equal(t, "Q3 Planning.pdf", res.Filename)
}

func TestExporterFallsBackToLocal(t *testing.T) {
	dl := &fakeDownloader{}
	e := NewExporter(dl, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := e.Export(context.Background(), sampleNote(), FormatDOCX)
	require.NoError(t, err)
	assert.True(t, res.Local)
	assert.Equal(t, 1, dl.calls)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("PK")))

	md, err := e.Export(context.Background(), sampleNote(), FormatMarkdown)
	require.NoError(t, err)
	assert.True(t, md.Local)
	assert.Equal(t, 1, dl.calls, "markdown is never downloaded")
}

func TestExporterWithoutDownloader(t *testing.T) {
	e := NewExporter(nil, nil)
	res, err := e.Export(context.Background(), sampleNote(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, res.Local)
}
