// Package askcmder provides the ask command for one-shot grounded
// question answering.
package askcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/cliui"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/logger"
	"github.com/knolhq/knol/pkg/stack"
	"github.com/knolhq/knol/pkg/utils"
)

type askCommander struct {
	topK  uint
	debug bool

	logger *zap.Logger
}

const askLongDesc string = `Ask a question against the knowledge base.

The question is embedded, the most relevant document chunks are retrieved,
and the answer is generated from those chunks only, with the source
documents cited. When nothing relevant is stored, knol says so instead of
guessing.

Examples:
  knol ask "How many days of annual leave do employees get?"
  knol ask --top-k 5 "What is the expense approval process?"`

const askShortDesc string = "Ask a question against the knowledge base"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir, strings.Join(args, " "), cmd.Flags().Changed("top-k"))
		},
	}

	config.AddUintFlag(cmd, fs, config.FlagTopK, &cmder.topK)

	return cmd
}

func (c *askCommander) run(configDir, question string, topKSet bool) error {
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
	if topKSet {
		cfg.Retrieval.TopK = c.topK
	}

	ctx := context.Background()

	st, err := stack.Build(ctx, cfg, configDir, c.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	record, err := st.Service.Ask(ctx, question)
	if err != nil {
		return err
	}

	PrintAnswer(record)
	return nil
}

// PrintAnswer renders an answer record with its cited sources.
func PrintAnswer(record knowledge.AnswerRecord) {
	rendered, err := cliui.RenderMarkdown(record.Answer)
	if err != nil {
		rendered = "\n" + record.Answer + "\n"
	}
	fmt.Print(rendered)

	if !record.Grounded || len(record.Sources) == 0 {
		return
	}

	fmt.Printf("  %s\n", cliui.DimStyle.Render("Sources:"))
	for _, src := range record.Sources {
		fmt.Printf("    %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", src.Rank+1)),
			cliui.SourceStyle.Render(src.Filename),
			cliui.DimStyle.Render(fmt.Sprintf("(score %.3f) %s", src.Score, utils.Truncate(src.Chunk.Text, 60))),
		)
	}
	fmt.Println()
}
