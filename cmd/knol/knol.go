// Package knolcmder
package knolcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/knolhq/knol/cmd/knol/ask"
	chatcmder "github.com/knolhq/knol/cmd/knol/chat"
	configcmder "github.com/knolhq/knol/cmd/knol/config"
	documentscmder "github.com/knolhq/knol/cmd/knol/documents"
	ingestcmder "github.com/knolhq/knol/cmd/knol/ingest"
	resetcmder "github.com/knolhq/knol/cmd/knol/reset"
	servecmder "github.com/knolhq/knol/cmd/knol/serve"
	versioncmder "github.com/knolhq/knol/cmd/version"
)

const knolLongDesc string = `Knol is a grounded question-answering system for your documents.

Ingest PDF, DOCX and text files into a vector index, then ask questions
and get answers grounded in the stored documents with cited sources.

  knol ingest ./docs        Ingest documents
  knol ask "..."            Ask a one-shot question
  knol chat                 Interactive Q&A session
  knol serve                Run the HTTP API and MCP server`

const knolShortDesc string = "Knol - grounded document Q&A"

func NewKnolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knol",
		Short: knolShortDesc,
		Long:  knolLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .knol/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(documentscmder.NewDocumentsCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
