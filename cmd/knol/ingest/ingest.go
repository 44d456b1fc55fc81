// Package ingestcmder provides the ingest command for loading documents
// into the knowledge base.
package ingestcmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/cliui"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/loader"
	"github.com/knolhq/knol/pkg/logger"
	"github.com/knolhq/knol/pkg/stack"
	"github.com/knolhq/knol/pkg/watcher"
)

type ingestCommander struct {
	watch bool
	debug bool

	logger *zap.Logger
}

const ingestLongDesc string = `Ingest documents into the knowledge base.

Accepts files and directories. Directories are scanned one level deep for
supported formats (pdf, docx, txt, md). Each file is extracted, chunked,
embedded and indexed; a file that cannot be read is reported and skipped
without failing the rest.

With --watch, the first directory argument is watched after the initial
ingestion and new files are ingested as they appear.

Examples:
  knol ingest handbook.pdf notes.txt
  knol ingest ./docs
  knol ingest ./docs --watch`

const ingestShortDesc string = "Ingest documents into the knowledge base"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file|dir> [...]",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir, args)
		},
	}

	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Keep watching the first directory argument for new documents")

	return cmd
}

func (c *ingestCommander) run(configDir string, args []string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := stack.Build(ctx, cfg, configDir, c.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	paths, watchDir, err := collectPaths(args)
	if err != nil {
		return err
	}

	fmt.Println()
	failures := 0
	for _, path := range paths {
		name := filepath.Base(path)
		err := cliui.Step(os.Stdout, fmt.Sprintf("Ingesting %s", name), func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			result, err := st.Service.Ingest(ctx, name, data)
			if err != nil {
				return err
			}
			if result.SkippedChunks > 0 {
				c.logger.Warn("some chunks were skipped",
					zap.String("filename", name),
					zap.Int("skipped", result.SkippedChunks),
				)
			}
			return nil
		})
		if err != nil {
			failures++
		}
	}
	fmt.Println()

	if failures > 0 {
		fmt.Printf("  %s %d of %d files failed\n\n", cliui.FailMark, failures, len(paths))
	}

	if c.watch {
		if watchDir == "" {
			return fmt.Errorf("--watch requires a directory argument")
		}

		w, err := watcher.New(st.Service, watchDir, c.logger)
		if err != nil {
			return err
		}

		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("  %s Watching %s for new documents. Ctrl+C to stop.\n\n",
			cliui.DimStyle.Render("●"), watchDir)

		if err := w.Run(sigCtx); err != nil && sigCtx.Err() == nil {
			return err
		}
		return nil
	}

	if failures > 0 {
		return fmt.Errorf("%d files failed to ingest", failures)
	}
	return nil
}

// collectPaths expands the file and directory arguments into a flat list of
// ingestable files and returns the first directory seen (for --watch).
func collectPaths(args []string) ([]string, string, error) {
	var paths []string
	watchDir := ""

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		if watchDir == "" {
			watchDir = arg
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, "", fmt.Errorf("reading directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := loader.DetectFormat(entry.Name()); err != nil {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}

	if len(paths) == 0 && watchDir == "" {
		return nil, "", fmt.Errorf("no ingestable files found")
	}

	return paths, watchDir, nil
}
