// Package models defines data structures shared by the TalkToText client.
package models

// Status is the processing state of an upload job as reported by the backend.
type Status string

const (
	StatusPending      Status = "pending"
	StatusUploaded     Status = "uploaded"
	StatusExtracting   Status = "extracting"
	StatusTranscribing Status = "transcribing"
	StatusTranslating  Status = "translating"
	StatusOptimizing   Status = "optimizing"
	StatusSummarizing  Status = "summarizing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

// Stages lists the non-pending statuses in pipeline order.
var Stages = []Status{
	StatusUploaded,
	StatusExtracting,
	StatusTranscribing,
	StatusTranslating,
	StatusOptimizing,
	StatusSummarizing,
	StatusDone,
}

var stageLabels = map[Status]string{
	StatusPending:      "Pending",
	StatusUploaded:     "Uploaded",
	StatusExtracting:   "Extracting Audio",
	StatusTranscribing: "Transcribing",
	StatusTranslating:  "Translating",
	StatusOptimizing:   "Optimizing",
	StatusSummarizing:  "Summarizing",
	StatusDone:         "Complete",
	StatusFailed:       "Failed",
}

// IsTerminal reports whether no further transitions can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Label returns a human readable name for the status.
// Statuses the client does not know are shown verbatim.
func (s Status) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// StageIndex returns the position of s in Stages, or -1.
func (s Status) StageIndex() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// ProgressSnapshot is a point-in-time view of job progress.
// Values are replaced wholesale on every poll, never patched.
type ProgressSnapshot struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// UploadJob is the client projection of a server-tracked upload.
type UploadJob struct {
	ID       string            `json:"upload_id,omitempty"`
	Status   Status            `json:"status"`
	NoteID   *string           `json:"note_id,omitempty"`
	Progress *ProgressSnapshot `json:"progress,omitempty"`
}
