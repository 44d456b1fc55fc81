// Package stack builds the knowledge-base component stack from a resolved
// configuration: loaders, splitter, embedder, vector driver, generator,
// retriever, assistant and event publisher, assembled into a rag.Service.
package stack

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/assistant"
	"github.com/knolhq/knol/pkg/config"
	"github.com/knolhq/knol/pkg/dotdir"
	embeddingutils "github.com/knolhq/knol/pkg/embeddings/utils"
	"github.com/knolhq/knol/pkg/eventstream"
	"github.com/knolhq/knol/pkg/eventstream/kafka"
	"github.com/knolhq/knol/pkg/eventstream/nop"
	llmutils "github.com/knolhq/knol/pkg/llm/utils"
	"github.com/knolhq/knol/pkg/loader"
	"github.com/knolhq/knol/pkg/rag"
	"github.com/knolhq/knol/pkg/retriever"
	"github.com/knolhq/knol/pkg/splitter"
	vectorutils "github.com/knolhq/knol/pkg/vector/utils"
)

// Stack is a fully wired knowledge base.
type Stack struct {
	Service   *rag.Service
	Retriever *retriever.Retriever
}

// Build wires a Stack from the given configuration. configDir overrides the
// .knol/ directory resolution for the default sqlite index path.
func Build(ctx context.Context, cfg *config.Config, configDir string, logger *zap.Logger) (*Stack, error) {
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		Dimensions:   int(cfg.Embedding.Dimensions),
		APIKey:       cfg.Embedding.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	target := cfg.VectorStore.Target
	if cfg.VectorStore.Provider == "sqlitevec" {
		if cfg.VectorStore.SQLitePath != "" {
			target = cfg.VectorStore.SQLitePath
		} else if target == "" {
			target, err = dotdir.NewManager().IndexPath(configDir)
			if err != nil {
				return nil, fmt.Errorf("resolving index path: %w", err)
			}
		}
	}

	driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       target,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   embedder.Dimensions(),
		ModelID:      embedder.ModelID(),
		APIKey:       cfg.VectorStore.APIKey,
		Logger:       logger,
	})
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: cfg.LLM.Provider,
		TargetURL:    cfg.LLM.Target,
		Model:        cfg.LLM.Model,
		APIKey:       cfg.LLM.APIKey,
	})
	if err != nil {
		embedder.Close()
		driver.Close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	split, err := splitter.New(splitter.Config{
		ChunkSize: int(cfg.Splitter.ChunkSize),
		Overlap:   int(cfg.Splitter.Overlap),
	})
	if err != nil {
		embedder.Close()
		driver.Close()
		generator.Close()
		return nil, fmt.Errorf("creating splitter: %w", err)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		embedder.Close()
		driver.Close()
		generator.Close()
		return nil, err
	}

	retr := retriever.New(embedder, driver, retriever.Config{
		TopK:           int(cfg.Retrieval.TopK),
		ScoreThreshold: float32(cfg.Retrieval.ScoreThreshold),
	}, logger)

	assist := assistant.New(generator, logger)

	service := rag.New(
		loader.NewDefaultRegistry(),
		split,
		embedder,
		driver,
		retr,
		assist,
		publisher,
		logger,
	)

	return &Stack{
		Service:   service,
		Retriever: retr,
	}, nil
}

// Close releases the stack's backends.
func (s *Stack) Close() error {
	return s.Service.Close()
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: config.BrokerList(cfg.Events.Brokers),
			Topic:   cfg.Events.Topic,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Events.Provider)
	}
}
