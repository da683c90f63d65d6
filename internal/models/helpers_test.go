package models

import "testing"

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusUploaded, false},
		{StatusExtracting, false},
		{StatusTranscribing, false},
		{StatusTranslating, false},
		{StatusOptimizing, false},
		{StatusSummarizing, false},
		{StatusDone, true},
		{StatusFailed, true},
		{Status("queued"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("Status(%q).IsTerminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusExtracting, "Extracting Audio"},
		{StatusDone, "Complete"},
		{Status("queued"), "queued"},
	}

	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Errorf("Status(%q).Label() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStageIndex(t *testing.T) {
	if got := StatusUploaded.StageIndex(); got != 0 {
		t.Errorf("uploaded index = %d, want 0", got)
	}
	if got := StatusDone.StageIndex(); got != len(Stages)-1 {
		t.Errorf("done index = %d, want %d", got, len(Stages)-1)
	}
	if got := StatusFailed.StageIndex(); got != -1 {
		t.Errorf("failed index = %d, want -1", got)
	}
}

func TestNoteBodyAndTitle(t *testing.T) {
	summary := "## Summary\n- point"
	tests := []struct {
		name      string
		note      Note
		wantBody  string
		wantTitle string
	}{
		{"final notes only", Note{FinalNotes: "notes"}, "notes", DefaultNoteTitle},
		{"summary wins", Note{FinalNotes: "notes", AbstractSummary: &summary}, summary, DefaultNoteTitle},
		{"empty summary falls back", Note{FinalNotes: "notes", AbstractSummary: StringPtr("")}, "notes", DefaultNoteTitle},
		{"title", Note{Title: StringPtr("Standup")}, "", "Standup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.Body(); got != tt.wantBody {
				t.Errorf("Body() = %q, want %q", got, tt.wantBody)
			}
			if got := tt.note.DisplayTitle(); got != tt.wantTitle {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}
