// Package servecmder provides the serve command for running the knol HTTP
// API and MCP server.
package servecmder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/knolhq/knol/api"
	"github.com/knolhq/knol/api/mcp"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/logger"
	"github.com/knolhq/knol/pkg/stack"
	"github.com/knolhq/knol/pkg/watcher"
)

type serveCommander struct {
	listen              string
	vectorProvider      string
	vectorTarget        string
	sqlitePath          string
	collection          string
	embeddingProvider   string
	embeddingTarget     string
	embeddingModel      string
	embeddingDimensions uint
	llmProvider         string
	llmTarget           string
	llmModel            string
	watchDir            string
	eventsProvider      string
	eventsBrokers       string
	eventsTopic         string
	noMCP               bool
	debug               bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the knol HTTP API server.

The server exposes document upload, listing and removal, question
answering, and an MCP endpoint at /mcp with search and ask tools.

With --watch, the given directory is ingested at startup and watched
for new documents while the server runs.

Examples:
  knol serve
  knol serve --listen :8000 --watch ./docs
  knol serve --vector-store-provider qdrant --vector-store-target localhost:6334`

const serveShortDesc string = "Run the knol API server"

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagSQLite,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProv,
	config.FlagLLMTgt,
	config.FlagLLMModel,
	config.FlagWatchDir,
	config.FlagEventsProv,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, fs, serveFlagKeys)

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir)
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, fs, config.FlagCollection, &cmder.collection)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, fs, config.FlagEmbeddingDims, &cmder.embeddingDimensions)
	config.AddStringFlag(cmd, fs, config.FlagLLMProv, &cmder.llmProvider)
	config.AddStringFlag(cmd, fs, config.FlagLLMTgt, &cmder.llmTarget)
	config.AddStringFlag(cmd, fs, config.FlagLLMModel, &cmder.llmModel)
	config.AddStringFlag(cmd, fs, config.FlagWatchDir, &cmder.watchDir)
	config.AddStringFlag(cmd, fs, config.FlagEventsProv, &cmder.eventsProvider)
	config.AddStringFlag(cmd, fs, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, fs, config.FlagEventsTopic, &cmder.eventsTopic)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *serveCommander) run(configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := stack.Build(ctx, c.cfg, configDir, c.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	mcpHandler, err := c.buildMCPHandler(st)
	if err != nil {
		return err
	}

	apiServer := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
	}, st.Service, mcpHandler, c.logger)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	if c.cfg.Ingest.WatchDir != "" {
		w, err := watcher.New(st.Service, c.cfg.Ingest.WatchDir, c.logger)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				errChan <- fmt.Errorf("watcher error: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		return apiServer.Shutdown()
	}
}

func (c *serveCommander) buildMCPHandler(st *stack.Stack) (http.Handler, error) {
	mcpServer, err := mcp.NewServer(mcp.Config{
		Searcher: st.Retriever,
		Asker:    st.Service,
		Noop:     c.noMCP,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}
	if c.noMCP {
		return nil, nil
	}
	return mcpServer.Handler(), nil
}
