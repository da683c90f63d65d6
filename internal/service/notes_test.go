package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/models"
)

type fakeNotes struct {
	note    client.Response[models.Note]
	history client.Response[[]models.NotePreview]
	calls   int
}

func (f *fakeNotes) GetNote(context.Context, string) client.Response[models.Note] {
	f.calls++
	return f.note
}

func (f *fakeNotes) GetHistory(context.Context) client.Response[[]models.NotePreview] {
	f.calls++
	return f.history
}

type loggedIn bool

func (l loggedIn) IsLoggedIn() bool { return bool(l) }

func TestBackTarget(t *testing.T) {
	assert.Equal(t, "/history", BackTarget(true))
	assert.Equal(t, "/upload", BackTarget(false))
}

func TestOpen(t *testing.T) {
	api := &fakeNotes{note: client.Response[models.Note]{Data: models.Note{ID: "n1", FinalNotes: "## Summary"}}}

	view := NewNotes(api, loggedIn(false)).Open(context.Background(), "n1")
	require.NotNil(t, view.Note)
	assert.Equal(t, "n1", view.Note.ID)
	assert.Equal(t, BackToUpload, view.BackTarget)
	assert.Empty(t, view.Error)

	api.note = client.Response[models.Note]{Error: "Note not found"}
	view = NewNotes(api, loggedIn(true)).Open(context.Background(), "missing")
	assert.Nil(t, view.Note)
	assert.Equal(t, "Note not found", view.Error)
	assert.Equal(t, BackToHistory, view.BackTarget)
}

func TestOpenEmptyID(t *testing.T) {
	api := &fakeNotes{}
	view := NewNotes(api, loggedIn(true)).Open(context.Background(), "")
	assert.NotEmpty(t, view.Error)
	assert.Zero(t, api.calls)
}

func TestHistory(t *testing.T) {
	api := &fakeNotes{history: client.Response[[]models.NotePreview]{Data: []models.NotePreview{{ID: "n1"}}}}

	_, err := NewNotes(api, loggedIn(false)).History(context.Background())
	require.ErrorIs(t, err, ErrLoginRequired)
	assert.Zero(t, api.calls)

	items, err := NewNotes(api, loggedIn(true)).History(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	api.history = client.Response[[]models.NotePreview]{Error: "Unauthorized"}
	_, err = NewNotes(api, loggedIn(true)).History(context.Background())
	assert.EqualError(t, err, "Unauthorized")
}
