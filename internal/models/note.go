package models

// Note is the structured result of a processed recording.
type Note struct {
	ID                string    `json:"note_id"`
	Title             *string   `json:"title,omitempty"`
	FinalNotes        string    `json:"final_notes"`
	AbstractSummary   *string   `json:"abstract_summary,omitempty"`
	Transcript        *string   `json:"raw_transcript,omitempty"`
	CleanedTranscript *string   `json:"cleaned_transcript,omitempty"`
	CreatedAt         Timestamp `json:"created_at"`
}

// DefaultNoteTitle is used when the backend did not name a note.
const DefaultNoteTitle = "Meeting Notes"

// DisplayTitle returns the note title or DefaultNoteTitle.
func (n *Note) DisplayTitle() string {
	if n.Title != nil && *n.Title != "" {
		return *n.Title
	}
	return DefaultNoteTitle
}

// Body returns the text used for display and export.
// The abstract summary wins over the final notes when present.
func (n *Note) Body() string {
	if n.AbstractSummary != nil && *n.AbstractSummary != "" {
		return *n.AbstractSummary
	}
	return n.FinalNotes
}

// NotePreview is a history entry.
type NotePreview struct {
	ID        string    `json:"note_id"`
	Title     *string   `json:"title,omitempty"`
	Preview   string    `json:"summary_preview,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}
