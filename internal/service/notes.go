package service

import (
	"context"
	"errors"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/models"
)

// Back targets for the note view.
const (
	BackToHistory = "/history"
	BackToUpload  = "/upload"
)

// BackTarget returns where "back" leads from a note: history for signed-in
// users, the upload form for anonymous ones.
func BackTarget(loggedIn bool) string {
	if loggedIn {
		return BackToHistory
	}
	return BackToUpload
}

// NoteAPI is the part of the gateway the note views need.
type NoteAPI interface {
	GetNote(ctx context.Context, noteID string) client.Response[models.Note]
	GetHistory(ctx context.Context) client.Response[[]models.NotePreview]
}

// LoginChecker reports whether a session exists.
type LoginChecker interface {
	IsLoggedIn() bool
}

// NoteView is what the note screen shows.
type NoteView struct {
	Note       *models.Note
	BackTarget string
	Error      string
}

// Notes serves note and history views.
type Notes struct {
	api     NoteAPI
	session LoginChecker
}

// NewNotes creates the note service.
func NewNotes(api NoteAPI, session LoginChecker) *Notes {
	return &Notes{api: api, session: session}
}

// Open fetches a note for display. Failures are carried in the view.
func (n *Notes) Open(ctx context.Context, noteID string) NoteView {
	view := NoteView{BackTarget: BackTarget(n.session.IsLoggedIn())}
	if noteID == "" {
		view.Error = "note not found"
		return view
	}

	resp := n.api.GetNote(ctx, noteID)
	if !resp.OK() {
		view.Error = resp.Error
		return view
	}
	note := resp.Data
	view.Note = &note
	return view
}

// ErrLoginRequired is returned for views that need a session.
var ErrLoginRequired = errors.New("login required")

// History lists the signed-in user's notes.
func (n *Notes) History(ctx context.Context) ([]models.NotePreview, error) {
	if !n.session.IsLoggedIn() {
		return nil, ErrLoginRequired
	}
	resp := n.api.GetHistory(ctx)
	if !resp.OK() {
		return nil, errors.New(resp.Error)
	}
	return resp.Data, nil
}
