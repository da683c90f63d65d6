package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/talktotext/talktotext/internal/models"
)

// GetStatus returns the current state of an upload job.
func (c *Client) GetStatus(ctx context.Context, uploadID string) Response[models.UploadJob] {
	resp := Do[models.UploadJob](ctx, c, http.MethodGet, "/api/status/"+url.PathEscape(uploadID), nil)
	if !resp.OK() {
		return resp
	}
	if resp.Data.Status == "" {
		return failed[models.UploadJob]("malformed status response: missing status")
	}
	if resp.Data.ID == "" {
		resp.Data.ID = uploadID
	}
	return resp
}

// GetNote fetches a single note.
func (c *Client) GetNote(ctx context.Context, noteID string) Response[models.Note] {
	resp := Do[models.Note](ctx, c, http.MethodGet, "/api/notes/"+url.PathEscape(noteID), nil)
	if resp.OK() && resp.Data.ID == "" {
		resp.Data.ID = noteID
	}
	return resp
}

// GetHistory lists the current user's notes.
func (c *Client) GetHistory(ctx context.Context) Response[[]models.NotePreview] {
	return Do[[]models.NotePreview](ctx, c, http.MethodGet, "/api/history", nil)
}

// DownloadPDF fetches the server-rendered PDF, or nil on any failure.
func (c *Client) DownloadPDF(ctx context.Context, noteID string) []byte {
	return c.download(ctx, "pdf", noteID)
}

// DownloadDOCX fetches the server-rendered DOCX, or nil on any failure.
func (c *Client) DownloadDOCX(ctx context.Context, noteID string) []byte {
	return c.download(ctx, "docx", noteID)
}

func (c *Client) download(ctx context.Context, format, noteID string) []byte {
	data, err := c.fetchBlob(ctx, fmt.Sprintf("/api/download/%s/%s", format, url.PathEscape(noteID)))
	if err != nil {
		c.logger.Warn("download failed", "format", format, "note_id", noteID, "error", err)
		return nil
	}
	return data
}

func (c *Client) fetchBlob(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	return data, nil
}
