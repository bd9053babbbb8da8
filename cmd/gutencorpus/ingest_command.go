package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"gutencorpus/internal/config"
	"gutencorpus/internal/corpus"
)

type ingestFailure struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type ingestSummary struct {
	RunID      string          `json:"runId"`
	Scanned    int             `json:"scanned"`
	Added      int             `json:"added"`
	Duplicates int             `json:"duplicates"`
	Commits    int             `json:"commits"`
	Duration   string          `json:"duration"`
	Failed     []ingestFailure `json:"failed"`
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var dataPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load new e-texts from the data directory into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := ctx.corpus(cmd)
			if err != nil {
				return err
			}
			cfg := cp.Config()
			if dataPath != "" {
				expanded, err := config.ExpandPath(dataPath)
				if err != nil {
					return fmt.Errorf("resolve data path: %w", err)
				}
				cfg.Download.DataPath = expanded
			}

			lock := flock.New(lockPath(cfg))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another gutencorpus ingest is already running")
			}
			defer lock.Unlock()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			result, runErr := cp.Persist(signalCtx)
			summary := summarizeIngest(result)
			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				printIngestSummary(cmd, summary)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Override download.data_path for this run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

// lockPath places the lock next to a SQLite database, or next to the
// metadata cache when the store is remote.
func lockPath(cfg *config.Config) string {
	if cfg.Database.Driver == config.DriverSQLite {
		return cfg.Database.Database + ".lock"
	}
	return filepath.Join(filepath.Dir(cfg.Metadata.CachePath), "gutencorpus.lock")
}

func summarizeIngest(result corpus.Result) ingestSummary {
	summary := ingestSummary{
		RunID:      result.RunID,
		Scanned:    result.Scanned,
		Added:      result.Added,
		Duplicates: result.Duplicates,
		Commits:    result.Commits,
		Duration:   result.Duration.Round(1e6).String(),
		Failed:     make([]ingestFailure, 0, len(result.Failed)),
	}
	for _, failure := range result.Failed {
		summary.Failed = append(summary.Failed, ingestFailure{
			Path:  failure.Path,
			Kind:  failure.Kind,
			Error: failure.Err.Error(),
		})
	}
	return summary
}

func printIngestSummary(cmd *cobra.Command, summary ingestSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:        %s\n", summary.RunID)
	fmt.Fprintf(out, "Scanned:    %d\n", summary.Scanned)
	fmt.Fprintf(out, "Added:      %d\n", summary.Added)
	fmt.Fprintf(out, "Duplicates: %d\n", summary.Duplicates)
	fmt.Fprintf(out, "Failed:     %d\n", len(summary.Failed))
	fmt.Fprintf(out, "Commits:    %d\n", summary.Commits)
	for _, failure := range summary.Failed {
		fmt.Fprintf(out, "  %s [%s] %s\n", failure.Path, failure.Kind, failure.Error)
	}
}
