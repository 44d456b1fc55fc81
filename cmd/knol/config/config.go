// Package configcmder provides the config command for managing persistent
// knol configuration stored in the .knol/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent knol configuration.

Configuration is stored as config.toml in the .knol/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  vector_store.provider, vector_store.target, vector_store.sqlite_path,
  vector_store.collection, vector_store.api_key,
  embedding.provider, embedding.target, embedding.model,
  embedding.dimensions, embedding.api_key,
  llm.provider, llm.target, llm.model, llm.api_key,
  retrieval.top_k, retrieval.score_threshold,
  splitter.chunk_size, splitter.overlap,
  api.listen, ingest.watch_dir,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  knol config set <key> <value>    Set a configuration value
  knol config get <key>            Get a configuration value
  knol config list                 List all configuration values

Examples:
  knol config set embedding.model nomic-embed-text
  knol config set vector_store.provider qdrant
  knol config get llm.model
  knol config list`

const configShortDesc string = "Manage persistent knol configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
