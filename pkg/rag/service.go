// Package rag wires the ingestion and question-answering pipelines into a
// single service: documents go in through load, split and embed into the
// vector index; questions go out through retrieval and grounded generation.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/assistant"
	"github.com/knolhq/knol/pkg/embeddings"
	"github.com/knolhq/knol/pkg/eventstream"
	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/loader"
	"github.com/knolhq/knol/pkg/retriever"
	"github.com/knolhq/knol/pkg/splitter"
	"github.com/knolhq/knol/pkg/vector"
)

// Service is the knowledge-base facade. All state lives in the vector
// driver; the service itself only holds the in-memory answer history.
type Service struct {
	registry  *loader.Registry
	splitter  *splitter.Splitter
	embedder  embeddings.Embedder
	driver    vector.Driver
	retriever *retriever.Retriever
	assistant *assistant.Assistant
	history   *assistant.History
	publisher eventstream.Publisher
	logger    *zap.Logger
}

// New creates a knowledge-base service over the given components.
func New(
	registry *loader.Registry,
	split *splitter.Splitter,
	embedder embeddings.Embedder,
	driver vector.Driver,
	retr *retriever.Retriever,
	assist *assistant.Assistant,
	publisher eventstream.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		registry:  registry,
		splitter:  split,
		embedder:  embedder,
		driver:    driver,
		retriever: retr,
		assistant: assist,
		history:   assistant.NewHistory(),
		publisher: publisher,
		logger:    logger,
	}
}

// Ingest extracts, chunks, embeds and indexes one file. The document
// becomes visible to queries only after every surviving chunk is embedded
// and the driver accepts them in a single atomic insert.
//
// When batch embedding fails, each chunk is retried individually; chunks
// whose embedding still fails are skipped and counted in the result. If no
// chunk survives, the whole ingestion fails with
// knowledge.ErrEmbeddingUnavailable and nothing is indexed.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte) (knowledge.IngestResult, error) {
	result := knowledge.IngestResult{Filename: filename}

	text, format, err := s.registry.Extract(ctx, data, filename)
	if err != nil {
		return s.failIngest(result, err)
	}
	if text == "" {
		return s.failIngest(result, fmt.Errorf("%w: %s contains no extractable text", knowledge.ErrUnreadableDocument, filename))
	}

	doc := knowledge.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Format:     format,
		Text:       text,
		IngestedAt: time.Now(),
	}

	chunks := s.splitter.Split(doc.ID, text)

	embedded, skipped, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return s.failIngest(result, err)
	}

	if err := s.driver.Add(ctx, doc, embedded); err != nil {
		return s.failIngest(result, fmt.Errorf("indexing %s: %w", filename, err))
	}

	result.Document = &doc
	result.Chunks = len(embedded)
	result.SkippedChunks = skipped

	s.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", filename),
		zap.String("format", string(format)),
		zap.Int("chunks", len(embedded)),
		zap.Int("skipped_chunks", skipped),
	)

	s.publishDocumentIngested(ctx, doc, len(embedded))

	return result, nil
}

func (s *Service) failIngest(result knowledge.IngestResult, err error) (knowledge.IngestResult, error) {
	result.Err = err
	result.Error = err.Error()
	return result, err
}

// embedChunks embeds all chunks in one batch, falling back to per-chunk
// embedding when the batch fails. Chunks that cannot be embedded at all
// are dropped; the surviving chunks keep their original sequence numbers.
func (s *Service) embedChunks(ctx context.Context, chunks []knowledge.Chunk) ([]knowledge.Chunk, int, error) {
	if len(chunks) == 0 {
		return nil, 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil {
		embedded := make([]knowledge.Chunk, len(chunks))
		for i := range chunks {
			embedded[i] = chunks[i]
			embedded[i].Embedding = vectors[i]
		}
		return embedded, 0, nil
	}

	s.logger.Warn("batch embedding failed, retrying per chunk", zap.Error(err))

	embedded := make([]knowledge.Chunk, 0, len(chunks))
	skipped := 0
	for _, c := range chunks {
		vec, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			s.logger.Warn("skipping chunk, embedding failed",
				zap.String("chunk_id", c.ID),
				zap.Error(err),
			)
			skipped++
			continue
		}
		c.Embedding = vec
		embedded = append(embedded, c)
	}

	if len(embedded) == 0 {
		return nil, 0, fmt.Errorf("%w: all %d chunks failed to embed", knowledge.ErrEmbeddingUnavailable, len(chunks))
	}

	return embedded, skipped, nil
}

// IngestAll ingests a batch of files, one result per input in input order.
// A failing file never aborts the batch.
func (s *Service) IngestAll(ctx context.Context, files []knowledge.File) []knowledge.IngestResult {
	results := make([]knowledge.IngestResult, 0, len(files))
	for _, f := range files {
		result, err := s.Ingest(ctx, f.Name, f.Data)
		if err != nil {
			s.logger.Warn("ingestion failed",
				zap.String("filename", f.Name),
				zap.Error(err),
			)
		}
		results = append(results, result)
	}
	return results
}

// Ask answers a question grounded in the indexed documents and appends the
// exchange to the answer history. When retrieval finds nothing, the
// returned record is ungrounded and the language model is never called.
func (s *Service) Ask(ctx context.Context, question string) (knowledge.AnswerRecord, error) {
	results, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return knowledge.AnswerRecord{}, err
	}

	record, err := s.assistant.Answer(ctx, question, results)
	if err != nil {
		return knowledge.AnswerRecord{}, err
	}

	s.history.Append(record)
	s.publishQuestionAnswered(ctx, record)

	return record, nil
}

// Remove deletes a document and its chunks from the index.
func (s *Service) Remove(ctx context.Context, docID string) error {
	if err := s.driver.RemoveDocument(ctx, docID); err != nil {
		return fmt.Errorf("removing document %s: %w", docID, err)
	}
	s.logger.Info("document removed", zap.String("document_id", docID))
	return nil
}

// Reset clears the index and the answer history.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.driver.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	s.history.Clear()
	s.logger.Info("knowledge base reset")
	return nil
}

// Documents lists the stored documents.
func (s *Service) Documents(ctx context.Context) ([]knowledge.DocumentInfo, error) {
	return s.driver.Documents(ctx)
}

// History returns the recorded question/answer exchanges, oldest first.
func (s *Service) History() []knowledge.AnswerRecord {
	return s.history.Records()
}

// Close releases the service's backends.
func (s *Service) Close() error {
	var errs []error
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing publisher: %w", err))
	}
	if err := s.assistant.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing assistant: %w", err))
	}
	if err := s.embedder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing embedder: %w", err))
	}
	if err := s.driver.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing vector driver: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// publishDocumentIngested emits a document-ingested event. Publishing is
// best-effort; failures are logged and never surfaced to the caller.
func (s *Service) publishDocumentIngested(ctx context.Context, doc knowledge.Document, chunks int) {
	event := &eventstream.DocumentIngestedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDocumentIngested,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now(),
		DocumentID:    doc.ID,
		Filename:      doc.Filename,
		Format:        string(doc.Format),
		Chunks:        chunks,
	}
	if err := s.publisher.PublishDocumentIngested(ctx, event); err != nil {
		s.logger.Warn("failed to publish document-ingested event", zap.Error(err))
	}
}

func (s *Service) publishQuestionAnswered(ctx context.Context, record knowledge.AnswerRecord) {
	sources := make([]string, 0, len(record.Sources))
	seen := make(map[string]bool, len(record.Sources))
	for _, src := range record.Sources {
		if !seen[src.Filename] {
			seen[src.Filename] = true
			sources = append(sources, src.Filename)
		}
	}

	event := &eventstream.QuestionAnsweredEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeQuestionAnswered,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now(),
		Question:      record.Question,
		Grounded:      record.Grounded,
		Sources:       sources,
	}
	if err := s.publisher.PublishQuestionAnswered(ctx, event); err != nil {
		s.logger.Warn("failed to publish question-answered event", zap.Error(err))
	}
}
