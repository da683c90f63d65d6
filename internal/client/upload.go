package client

import (
	"context"
	"io"
	"net/http"
)

// Form is a packaged multipart upload body.
type Form struct {
	Body        io.Reader
	ContentType string
}

// UploadResult carries either an upload id (background processing) or a
// note id (synchronous processing).
type UploadResult struct {
	UploadID string `json:"upload_id,omitempty"`
	NoteID   string `json:"note_id,omitempty"`
}

// UploadFile submits a multipart form to the upload endpoint.
func (c *Client) UploadFile(ctx context.Context, form Form) Response[UploadResult] {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", form.Body)
	if err != nil {
		return failed[UploadResult]("create request: %v", err)
	}
	req.Header.Set("Content-Type", form.ContentType)

	var out UploadResult
	return send(c, req, &out)
}
