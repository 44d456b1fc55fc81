// Package resetcmder provides the reset command for clearing the
// knowledge base.
package resetcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knolhq/knol/pkg/cliui"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/logger"
	"github.com/knolhq/knol/pkg/stack"
)

const resetLongDesc string = `Clear the knowledge base.

Removes every document, chunk and embedding from the vector index and
clears the in-memory answer history. This cannot be undone.

Examples:
  knol reset
  knol reset --force`

const resetShortDesc string = "Clear the knowledge base"

func NewResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: resetShortDesc,
		Long:  resetLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return run(configDir, force, debug)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

func run(configDir string, force, debug bool) error {
	if !force {
		fmt.Print("This removes every document from the knowledge base. Continue? [y/N] ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return nil
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	st, err := stack.Build(ctx, cfg, configDir, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Service.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("\n  %s Knowledge base cleared\n\n", cliui.SuccessMark)
	return nil
}
