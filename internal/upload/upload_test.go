package upload

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/models"
)

// fakeAPI records uploaded forms and answers with a canned response.
type fakeAPI struct {
	calls  int
	fields map[string]string
	files  map[string]string
	resp   client.Response[client.UploadResult]
}

func (f *fakeAPI) UploadFile(_ context.Context, form client.Form) client.Response[client.UploadResult] {
	f.calls++
	f.fields, f.files = readForm(form)
	return f.resp
}

func readForm(form client.Form) (map[string]string, map[string]string) {
	fields := map[string]string{}
	files := map[string]string{}

	_, params, err := mime.ParseMediaType(form.ContentType)
	if err != nil {
		return fields, files
	}
	mr := multipart.NewReader(form.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		data, _ := io.ReadAll(part)
		if part.FileName() != "" {
			files[part.FileName()] = string(data)
			continue
		}
		fields[part.FormName()] = string(data)
	}
	return fields, files
}

func TestSubmitRejectsMissingSourceBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	s := NewSubmitter(api)

	_, err := s.Submit(context.Background(), Request{Options: DefaultOptions()})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = s.Submit(context.Background(), Request{URL: "   ", Options: DefaultOptions()})
	assert.ErrorIs(t, err, ErrNoSource)

	assert.Zero(t, api.calls)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"url only", Request{URL: "https://meet.example.com/rec/1"}, ""},
		{"file reader", Request{File: strings.NewReader("x"), FileName: "a.webm"}, ""},
		{"both", Request{FilePath: "a.mp3", URL: "https://example.com/a.mp3"}, ""},
		{"bad language", Request{URL: "https://example.com", Options: Options{Language: "xx"}}, "unsupported language"},
		{"duration too short", Request{URL: "https://example.com", Options: Options{ExtractDuration: 10}}, "between 30 and 3600"},
		{"duration too long", Request{URL: "https://example.com", Options: Options{ExtractDuration: 7200}}, "between 30 and 3600"},
		{"bad url", Request{URL: "ftp://example.com/a.mp3"}, "invalid URL"},
		{"reader without name", Request{File: strings.NewReader("x")}, "file name is required"},
	}

	s := NewSubmitter(&fakeAPI{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := s.Validate(&req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, req.Options.Language)
				assert.NotZero(t, req.Options.ExtractDuration)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSubmitBackgroundFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standup.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o600))

	api := &fakeAPI{resp: client.Response[client.UploadResult]{Data: client.UploadResult{UploadID: "abc123"}}}
	s := NewSubmitter(api)

	out, err := s.Submit(context.Background(), Request{
		FilePath: path,
		Options:  Options{Language: "en", Background: true, ExtractDuration: 300},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomePoll, out.Kind)
	assert.Equal(t, "abc123", out.UploadID)
	assert.Equal(t, models.ProgressSnapshot{Stage: "uploaded", Percent: 10}, out.Progress)

	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "audio-bytes", api.files["standup.mp3"])
	assert.Equal(t, "en", api.fields["language"])
	assert.Equal(t, "true", api.fields["background"])
	assert.Equal(t, "300", api.fields["extractDuration"])
	_, hasURL := api.fields["url"]
	assert.False(t, hasURL)
}

func TestSubmitDirectURL(t *testing.T) {
	api := &fakeAPI{resp: client.Response[client.UploadResult]{Data: client.UploadResult{NoteID: "n2"}}}
	s := NewSubmitter(api)

	out, err := s.Submit(context.Background(), Request{
		URL:     "https://example.com/meeting.mp4",
		Options: Options{Background: false},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeNote, out.Kind)
	assert.Equal(t, "n2", out.NoteID)
	assert.Equal(t, "https://example.com/meeting.mp4", api.fields["url"])
	assert.Equal(t, "false", api.fields["background"])
	assert.Equal(t, "auto", api.fields["language"])
	assert.Equal(t, "120", api.fields["extractDuration"])
	assert.Empty(t, api.files)
}

func TestSubmitSurfacesGatewayError(t *testing.T) {
	api := &fakeAPI{resp: client.Response[client.UploadResult]{Error: "file too large"}}
	s := NewSubmitter(api)

	_, err := s.Submit(context.Background(), Request{URL: "https://example.com/a.mp3", Options: DefaultOptions()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestSubmitMissingFile(t *testing.T) {
	api := &fakeAPI{}
	s := NewSubmitter(api)

	_, err := s.Submit(context.Background(), Request{FilePath: filepath.Join(t.TempDir(), "nope.mp3")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open recording")
	assert.Zero(t, api.calls)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		background bool
		res        client.UploadResult
		want       OutcomeKind
		wantErr    bool
	}{
		{"background with upload id", true, client.UploadResult{UploadID: "u"}, OutcomePoll, false},
		{"direct with note id", false, client.UploadResult{NoteID: "n"}, OutcomeNote, false},
		{"background with only note id", true, client.UploadResult{NoteID: "n"}, 0, true},
		{"direct with only upload id", false, client.UploadResult{UploadID: "u"}, 0, true},
		{"empty", true, client.UploadResult{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Classify(tt.background, tt.res)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnexpectedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Kind)
		})
	}
}
