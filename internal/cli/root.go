// Package cli provides the command-line interface for talktotext.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/config"
	"github.com/talktotext/talktotext/internal/metrics"
	"github.com/talktotext/talktotext/internal/poller"
	"github.com/talktotext/talktotext/internal/service"
	"github.com/talktotext/talktotext/internal/session"
	"github.com/talktotext/talktotext/internal/storage"
	"github.com/talktotext/talktotext/internal/upload"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	showStats bool
	apiURL    string

	// Global config and wiring
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	store      storage.Store
	apiClient  *client.Client
	sessions   *session.Manager
	collector  *metrics.Collector

	stopAuthWatch func()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "talktotext",
	Short: "Turn meeting recordings into structured notes",
	Long: `talktotext uploads meeting recordings (or links to them) to a TalkToText
backend, follows the job through extraction, transcription, translation,
optimization and summarization, and shows or exports the resulting notes.

Configuration is read from TALKTOTEXT_* environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if apiURL != "" {
			cfg.APIBaseURL = apiURL
		}
		stderrLevel := cfg.StderrLevel
		if verbose {
			stderrLevel = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel, stderrLevel)

		fs, err := storage.OpenFileStore(cfg.SessionFile)
		if err != nil {
			return fmt.Errorf("open session file: %w", err)
		}
		store = fs

		collector = metrics.NewCollector()
		apiClient = client.New(cfg.APIBaseURL, store,
			client.WithLogger(logger),
			client.WithMetrics(collector),
			client.WithTimeout(cfg.ClientTimeout),
		)
		sessions = session.NewManager(apiClient, store, nil, logger)
		stopAuthWatch = watchAuth(sessions.Signal(), logger)

		logger.Debug("configured", "api", cfg.APIBaseURL, "session_file", cfg.SessionFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopAuthWatch != nil {
			stopAuthWatch()
		}
		if showStats && collector != nil {
			printStats(collector.Snapshot())
		}
	},
}

// watchAuth logs login state changes until the returned stop is called.
func watchAuth(signal *session.AuthSignal, logger *slog.Logger) func() {
	changes, cancel := signal.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for loggedIn := range changes {
			logger.Debug("auth state changed", "logged_in", loggedIn)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// newWorkflow wires a submission workflow with its own poller.
func newWorkflow() *service.Workflow {
	p := poller.New(apiClient, poller.WithLogger(logger))
	return service.NewWorkflow(upload.NewSubmitter(apiClient), p, logger)
}

// newNotes wires the note and history views.
func newNotes() *service.Notes {
	return service.NewNotes(apiClient, sessions)
}

// Execute adds all child commands to the root command and runs it with ctx.
func Execute(ctx context.Context) error {
	defer func() {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print request statistics when the command finishes")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend base URL (overrides TALKTOTEXT_API_BASE_URL)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(downloadCmd)
}
