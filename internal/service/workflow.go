// Package service wires submission, polling and note retrieval into the
// flows the front end drives.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/poller"
	"github.com/talktotext/talktotext/internal/upload"
)

var (
	// ErrJobFailed is returned when the backend reports the job as failed.
	ErrJobFailed = errors.New("processing failed")
	// ErrNoNote is returned when a job finished without a note id.
	ErrNoNote = errors.New("processing finished without a note")
)

// Destination is where the caller goes after a submission completes.
type Destination struct {
	NoteID string
	// UploadID is set when the job ran in the background.
	UploadID string
}

// Workflow runs an upload from submission to a note.
type Workflow struct {
	submitter *upload.Submitter
	poller    *poller.Poller
	logger    *slog.Logger
}

// NewWorkflow creates a workflow.
func NewWorkflow(s *upload.Submitter, p *poller.Poller, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{submitter: s, poller: p, logger: logger}
}

// Poller exposes the poller so views can subscribe to progress.
func (w *Workflow) Poller() *poller.Poller {
	return w.poller
}

// Submit uploads req. Background uploads start polling immediately.
func (w *Workflow) Submit(ctx context.Context, req upload.Request) (upload.Outcome, error) {
	out, err := w.submitter.Submit(ctx, req)
	if err != nil {
		return upload.Outcome{}, err
	}

	switch out.Kind {
	case upload.OutcomePoll:
		w.logger.Info("upload accepted for background processing", "upload_id", out.UploadID)
		w.poller.Start(out.UploadID)
	case upload.OutcomeNote:
		w.logger.Info("upload processed", "note_id", out.NoteID)
	}
	return out, nil
}

// Track polls uploadID until it is terminal and returns the note id.
// Cancelling ctx stops polling.
func (w *Workflow) Track(ctx context.Context, uploadID string) (string, error) {
	w.poller.Start(uploadID)

	st, err := w.poller.Wait(ctx)
	if err != nil {
		w.poller.Stop()
		return "", err
	}
	return NoteFromState(st)
}

// Run submits req and, for background jobs, waits for the note.
func (w *Workflow) Run(ctx context.Context, req upload.Request) (Destination, error) {
	out, err := w.Submit(ctx, req)
	if err != nil {
		return Destination{}, err
	}
	if out.Kind == upload.OutcomeNote {
		return Destination{NoteID: out.NoteID}, nil
	}

	noteID, err := w.Track(ctx, out.UploadID)
	if err != nil {
		return Destination{UploadID: out.UploadID}, err
	}
	return Destination{NoteID: noteID, UploadID: out.UploadID}, nil
}

// NoteFromState interprets a finished poller state.
func NoteFromState(st poller.State) (string, error) {
	if err := st.Err(); err != nil {
		if st.Status == models.StatusFailed {
			return "", fmt.Errorf("%w: %v", ErrJobFailed, err)
		}
		return "", err
	}
	if st.Status != models.StatusDone {
		return "", fmt.Errorf("polling stopped in state %q", st.Status)
	}
	if st.NoteID == "" {
		return "", ErrNoNote
	}
	return st.NoteID, nil
}
