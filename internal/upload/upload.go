// Package upload validates and submits recordings for processing.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/models"
)

// Extract duration bounds, in seconds.
const (
	MinExtractDuration     = 30
	MaxExtractDuration     = 3600
	DefaultExtractDuration = 120
	DefaultLanguage        = "auto"
)

// Languages lists the accepted language codes in display order.
var Languages = []string{"auto", "en", "es", "fr", "de", "it", "pt", "ur", "ar", "zh", "ja", "ko"}

var (
	// ErrNoSource is returned when neither a file nor a URL was given.
	ErrNoSource = errors.New("please provide a file or URL")
	// ErrUnexpectedResponse is returned when the upload response fits neither flow.
	ErrUnexpectedResponse = errors.New("unexpected server response")
)

// Options are the processing settings sent with an upload.
type Options struct {
	Language        string `validate:"required,language"`
	Background      bool
	ExtractDuration int `validate:"min=30,max=3600"`
}

// DefaultOptions returns the settings used when none are given.
func DefaultOptions() Options {
	return Options{
		Language:        DefaultLanguage,
		Background:      true,
		ExtractDuration: DefaultExtractDuration,
	}
}

// Request is a single submission. Either a file (path or reader) or a URL
// must be set.
type Request struct {
	// FilePath is opened at submission time.
	FilePath string
	// File and FileName supply the recording from memory or stdin.
	File     io.Reader
	FileName string `validate:"required_with=File"`
	URL      string `validate:"omitempty,http_url"`
	Options  Options
}

func (r Request) hasFile() bool {
	return r.FilePath != "" || r.File != nil
}

// OutcomeKind says how the caller continues after a successful upload.
type OutcomeKind int

const (
	// OutcomePoll means the job runs in the background; poll UploadID.
	OutcomePoll OutcomeKind = iota + 1
	// OutcomeNote means the note is ready; open NoteID.
	OutcomeNote
)

// Outcome is the classified result of a successful upload.
type Outcome struct {
	Kind     OutcomeKind
	UploadID string
	NoteID   string
	// Progress seeds the progress display before the first poll returns.
	Progress models.ProgressSnapshot
}

// API is the part of the gateway the submitter needs.
type API interface {
	UploadFile(ctx context.Context, form client.Form) client.Response[client.UploadResult]
}

// Submitter validates, packages and sends upload requests.
type Submitter struct {
	api      API
	validate *validator.Validate
}

// NewSubmitter creates a submitter using api.
func NewSubmitter(api API) *Submitter {
	return &Submitter{api: api, validate: newValidator()}
}

// Validate checks r without touching the network. Zero-valued options are
// filled with defaults first.
func (s *Submitter) Validate(r *Request) error {
	if !r.hasFile() && strings.TrimSpace(r.URL) == "" {
		return ErrNoSource
	}
	if r.Options.Language == "" {
		r.Options.Language = DefaultLanguage
	}
	if r.Options.ExtractDuration == 0 {
		r.Options.ExtractDuration = DefaultExtractDuration
	}
	r.URL = strings.TrimSpace(r.URL)

	if err := s.validate.Struct(r); err != nil {
		return describe(err)
	}
	return nil
}

// Submit validates r, uploads it and classifies the response.
func (s *Submitter) Submit(ctx context.Context, r Request) (Outcome, error) {
	if err := s.Validate(&r); err != nil {
		return Outcome{}, err
	}

	form, cleanup, err := r.Package()
	if err != nil {
		return Outcome{}, err
	}
	defer cleanup()

	resp := s.api.UploadFile(ctx, form)
	if !resp.OK() {
		return Outcome{}, fmt.Errorf("upload: %s", resp.Error)
	}
	return Classify(r.Options.Background, resp.Data)
}

// Classify maps an upload response onto the flow the caller continues with.
func Classify(background bool, res client.UploadResult) (Outcome, error) {
	switch {
	case background && res.UploadID != "":
		return Outcome{
			Kind:     OutcomePoll,
			UploadID: res.UploadID,
			Progress: models.ProgressSnapshot{Stage: string(models.StatusUploaded), Percent: 10},
		}, nil
	case !background && res.NoteID != "":
		return Outcome{
			Kind:     OutcomeNote,
			NoteID:   res.NoteID,
			Progress: models.ProgressSnapshot{Stage: string(models.StatusDone), Percent: 100},
		}, nil
	default:
		return Outcome{}, ErrUnexpectedResponse
	}
}
