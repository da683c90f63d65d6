package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	"github.com/talktotext/talktotext/internal/client"
)

// Package builds the multipart body for r. The file is streamed rather than
// buffered; cleanup must be called once the request is done.
func (r Request) Package() (client.Form, func(), error) {
	var (
		src  io.Reader
		name string
		file *os.File
	)

	switch {
	case r.FilePath != "":
		f, err := os.Open(r.FilePath)
		if err != nil {
			return client.Form{}, nil, fmt.Errorf("open recording: %w", err)
		}
		file, src, name = f, f, filepath.Base(r.FilePath)
	case r.File != nil:
		src, name = r.File, r.FileName
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFields(mw, src, name, r))
	}()

	cleanup := func() {
		pr.Close()
		if file != nil {
			file.Close()
		}
	}
	return client.Form{Body: pr, ContentType: mw.FormDataContentType()}, cleanup, nil
}

func writeFields(mw *multipart.Writer, src io.Reader, name string, r Request) error {
	if src != nil {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, src); err != nil {
			return fmt.Errorf("copy recording: %w", err)
		}
	}
	if r.URL != "" {
		if err := mw.WriteField("url", r.URL); err != nil {
			return err
		}
	}

	fields := []struct{ key, value string }{
		{"language", r.Options.Language},
		{"background", strconv.FormatBool(r.Options.Background)},
		{"extractDuration", strconv.Itoa(r.Options.ExtractDuration)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.key, f.value); err != nil {
			return err
		}
	}
	return mw.Close()
}
