package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/poller"
	"github.com/talktotext/talktotext/internal/service"
	"github.com/talktotext/talktotext/internal/upload"
)

var (
	uploadURL        string
	uploadName       string
	uploadLanguage   string
	uploadDuration   int
	uploadSync       bool
	uploadNoWait     bool
	uploadNoProgress bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a recording (or link one) for processing",
	Long: `Upload a meeting recording, or point the backend at a recording URL,
and follow processing until the notes are ready.

By default the job runs in the background on the server and progress is
polled. With --sync the server answers only when the note is ready.
Use "-" as the file to read the recording from stdin (requires --name).

Examples:
  talktotext upload standup.mp3
  talktotext upload --url https://example.com/all-hands.mp4 --language de
  talktotext upload call.m4a --extract-duration 600 --no-wait
  cat call.wav | talktotext upload - --name call.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadURL, "url", "u", "", "recording URL instead of a file")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "file name when reading from stdin")
	uploadCmd.Flags().StringVarP(&uploadLanguage, "language", "l", upload.DefaultLanguage, "spoken language code or 'auto'")
	uploadCmd.Flags().IntVarP(&uploadDuration, "extract-duration", "d", upload.DefaultExtractDuration,
		fmt.Sprintf("seconds of audio to extract (%d-%d)", upload.MinExtractDuration, upload.MaxExtractDuration))
	uploadCmd.Flags().BoolVar(&uploadSync, "sync", false, "wait for the server to finish instead of polling")
	uploadCmd.Flags().BoolVar(&uploadNoWait, "no-wait", false, "print the upload id and return immediately")
	uploadCmd.Flags().BoolVar(&uploadNoProgress, "no-progress", false, "plain log lines instead of the progress bar")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := upload.Request{
		URL: uploadURL,
		Options: upload.Options{
			Language:        uploadLanguage,
			Background:      !uploadSync,
			ExtractDuration: uploadDuration,
		},
	}
	if len(args) == 1 {
		if args[0] == "-" {
			req.File = cmd.InOrStdin()
			req.FileName = uploadName
		} else {
			req.FilePath = args[0]
		}
	}

	wf := newWorkflow()
	defer wf.Poller().Close()

	if uploadSync {
		fmt.Fprintln(os.Stderr, "Uploading and processing, this can take a while...")
	}
	out, err := wf.Submit(ctx, req)
	if err != nil {
		return uploadError(err)
	}

	if out.Kind == upload.OutcomeNote {
		fmt.Fprintln(os.Stderr, defaultTheme.completedStyle().Render("✓ Complete"))
		return showNote(ctx, out.NoteID, false, false)
	}

	fmt.Printf("Upload %s accepted (%s, %d%%)\n", out.UploadID, models.Status(out.Progress.Stage).Label(), out.Progress.Percent)
	if uploadNoWait {
		fmt.Printf("Use 'talktotext status %s --watch' to follow it.\n", out.UploadID)
		return nil
	}

	return followUpload(ctx, wf.Poller(), out.UploadID, out.Progress)
}

// followUpload tracks an already started poll and opens the note when done.
func followUpload(ctx context.Context, p *poller.Poller, uploadID string, seed models.ProgressSnapshot) error {
	var (
		st       poller.State
		detached bool
		err      error
	)
	if interactive() {
		st, detached, err = RunUploadProgress(p, uploadID, seed)
	} else {
		st, err = watchPlain(ctx, p, uploadID)
	}
	if err != nil {
		p.Stop()
		return err
	}
	if detached {
		p.Stop()
		return nil
	}

	noteID, err := service.NoteFromState(st)
	if err != nil {
		return fmt.Errorf("%w\nRetry with 'talktotext upload'", err)
	}
	return showNote(ctx, noteID, false, false)
}

// watchPlain prints one line per status change until polling ends.
func watchPlain(ctx context.Context, p *poller.Poller, uploadID string) (poller.State, error) {
	updates, cancel := p.Subscribe()
	defer cancel()

	var last models.Status
	report := func(st poller.State) {
		if st.Status == last && st.Error == "" {
			return
		}
		last = st.Status
		line := fmt.Sprintf("[%s]", st.Status.Label())
		if st.Progress != nil {
			line += fmt.Sprintf(" %d%%", st.Progress.Percent)
			if st.Progress.Message != "" {
				line += " " + st.Progress.Message
			}
		}
		if st.Error != "" {
			line += fmt.Sprintf(" (status check failed: %s)", st.Error)
		}
		fmt.Fprintln(os.Stderr, line)
	}

	report(p.State())
	for {
		select {
		case <-ctx.Done():
			return p.State(), ctx.Err()
		case <-p.Done():
			st := p.State()
			report(st)
			return st, nil
		case st, ok := <-updates:
			if !ok {
				return p.State(), nil
			}
			if st.UploadID == uploadID {
				report(st)
			}
		}
	}
}

func interactive() bool {
	return !uploadNoProgress && term.IsTerminal(int(os.Stdout.Fd()))
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrNoSource):
		return fmt.Errorf("%w (pass a file argument or --url)", err)
	case errors.Is(err, upload.ErrUnexpectedResponse):
		return fmt.Errorf("%w\nRetry with 'talktotext upload'", err)
	}
	return err
}
