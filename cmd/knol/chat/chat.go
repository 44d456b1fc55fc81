// Package chatcmder provides the chat command for an interactive Q&A
// session against the knowledge base.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	askcmder "github.com/knolhq/knol/cmd/knol/ask"
	"github.com/knolhq/knol/pkg/cliui"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/logger"
	"github.com/knolhq/knol/pkg/stack"
)

var userPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")

type chatCommander struct {
	debug bool

	logger *zap.Logger
}

const chatLongDesc string = `Start an interactive Q&A session against the knowledge base.

Each question is answered independently from the stored documents, with
sources cited. The session history is kept in memory for the duration of
the session; /history prints it, /exit or Ctrl+D quits.

Examples:
  knol chat`

const chatShortDesc string = "Interactive Q&A against the knowledge base"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir)
		},
	}

	return cmd
}

func (c *chatCommander) run(configDir string) error {
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

	ctx := context.Background()

	st, err := stack.Build(ctx, cfg, configDir, c.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.Service.Documents(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Knowledge base:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d documents", len(docs))),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type a question and press Enter. /history, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}
		if input == "/history" {
			c.printHistory(st)
			continue
		}

		record, err := st.Service.Ask(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		askcmder.PrintAnswer(record)
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

func (c *chatCommander) printHistory(st *stack.Stack) {
	records := st.Service.History()
	if len(records) == 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No questions asked yet."))
		return
	}

	fmt.Println()
	for i, r := range records {
		fmt.Printf("  %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.KeyStyle.Render(r.Question),
		)
		fmt.Printf("     %s\n", cliui.ValueStyle.Render(r.Answer))
	}
	fmt.Println()
}
