package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/parser"
	"github.com/ConaryLabs/mira/internal/ui"
)

var indexProjectID int64

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run a one-off full project walk against a running daemon's databases",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().Int64Var(&indexProjectID, "project-id", 0, "project id to index (required)")
	_ = indexCmd.MarkFlagRequired("project-id")
	rootCmd.AddCommand(indexCmd)
}

// runIndex performs the same walk index.full enqueues on the daemon,
// but synchronously from the CLI, with a TTY progress bar. Intended
// for operators re-indexing a project offline rather than through the
// hook/IPC surface, so it opens its own store handles.
func runIndex(cmd *cobra.Command, args []string) error {
	mainStore, err := mainstore.Open(filepath.Join(homeDir, "main.db"))
	if err != nil {
		return fmt.Errorf("open main store: %w", err)
	}
	defer mainStore.Close()
	codeStore, err := codestore.Open(filepath.Join(homeDir, "code.db"))
	if err != nil {
		return fmt.Errorf("open code store: %w", err)
	}
	defer codeStore.Close()

	ctx := context.Background()
	root, err := mainStore.ProjectPath(ctx, indexProjectID)
	if err != nil {
		return fmt.Errorf("look up project %d: %w", indexProjectID, err)
	}

	indexer := parser.NewIndexer(codeStore, parser.NewRegistry())

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(fmt.Sprintf("indexing project %d", indexProjectID)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}

	indexed, removed, err := indexer.FullWalk(ctx, indexProjectID, root, func(path string) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("full walk: %w", err)
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		ui.Success("indexed %d files, removed %d stale entries", indexed, removed)
	} else {
		fmt.Fprintf(os.Stdout, "indexed %d files, removed %d stale entries\n", indexed, removed)
	}
	return nil
}
