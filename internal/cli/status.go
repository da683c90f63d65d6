package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/poller"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status <upload-id>",
	Short: "Show the processing status of an upload",
	Long: `Show the processing status of a background upload.

With --watch the status is polled (with backoff) until the job completes,
and the note is shown when it is ready.

Examples:
  talktotext status 65f1c0de
  talktotext status 65f1c0de --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "poll until the job finishes")
	statusCmd.Flags().BoolVar(&uploadNoProgress, "no-progress", false, "plain log lines instead of the progress bar")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	uploadID := args[0]

	if statusWatch {
		p := poller.New(apiClient, poller.WithLogger(logger))
		defer p.Close()
		p.Start(uploadID)
		return followUpload(ctx, p, uploadID, models.ProgressSnapshot{Stage: string(models.StatusPending)})
	}

	resp := apiClient.GetStatus(ctx, uploadID)
	if !resp.OK() {
		return fmt.Errorf("get status: %s", resp.Error)
	}
	printJob(resp.Data)
	return nil
}

func printJob(job models.UploadJob) {
	fmt.Printf("Upload: %s\n", job.ID)
	fmt.Printf("  Status: %s\n", job.Status.Label())
	if job.Progress != nil {
		fmt.Printf("  Progress: %d%%\n", job.Progress.Percent)
		if job.Progress.Stage != "" && job.Progress.Stage != string(job.Status) {
			fmt.Printf("  Stage: %s\n", models.Status(job.Progress.Stage).Label())
		}
		if job.Progress.Message != "" {
			fmt.Printf("  Message: %s\n", job.Progress.Message)
		}
	}
	if id := models.Deref(job.NoteID); id != "" {
		fmt.Printf("  Note: %s\n", id)
		fmt.Printf("\nUse 'talktotext note %s' to read it.\n", id)
	}
}
