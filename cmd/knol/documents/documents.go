// Package documentscmder provides the documents command for listing and
// removing stored documents.
package documentscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/cliui"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/logger"
	"github.com/knolhq/knol/pkg/stack"
	"github.com/knolhq/knol/pkg/utils"
)

const documentsLongDesc string = `List the documents stored in the knowledge base.

Shows each document's ID, filename, format, chunk count, ingestion time
and a text preview.

Use "knol documents rm <id>" to remove a document and its chunks.

Examples:
  knol documents
  knol documents rm 1f0c2a4e-...`

const documentsShortDesc string = "List stored documents"

func NewDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: documentsShortDesc,
		Long:  documentsLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir, debug)
		},
	}

	cmd.AddCommand(newRemoveCmd())

	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a document and its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runRemove(configDir, args[0], debug)
		},
	}
}

func buildStack(configDir string, debug bool) (*stack.Stack, *zap.Logger, error) {
	log := logger.NewLogger(debug)

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := stack.Build(context.Background(), cfg, configDir, log)
	if err != nil {
		return nil, nil, err
	}
	return st, log, nil
}

func runList(configDir string, debug bool) error {
	st, log, err := buildStack(configDir, debug)
	if err != nil {
		return err
	}
	defer st.Close()
	defer func() { _ = log.Sync() }()

	docs, err := st.Service.Documents(context.Background())
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No documents in the knowledge base."))
		return nil
	}

	fmt.Println()
	for _, doc := range docs {
		fmt.Printf("  %s %s %s\n",
			cliui.KeyStyle.Render(doc.Filename),
			cliui.DimStyle.Render(string(doc.Format)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d chunks, %s)", doc.Chunks, doc.IngestedAt.Format("2006-01-02 15:04"))),
		)
		fmt.Printf("    %s %s\n", cliui.DimStyle.Render("id:"), cliui.ValueStyle.Render(doc.ID))
		if doc.Preview != "" {
			fmt.Printf("    %s\n", cliui.DimStyle.Render(utils.Truncate(doc.Preview, 100)))
		}
	}
	fmt.Printf("\n  %d documents\n\n", len(docs))

	return nil
}

func runRemove(configDir, id string, debug bool) error {
	st, log, err := buildStack(configDir, debug)
	if err != nil {
		return err
	}
	defer st.Close()
	defer func() { _ = log.Sync() }()

	if err := st.Service.Remove(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed %s\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(id))
	return nil
}
