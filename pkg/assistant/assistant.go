// Package assistant turns retrieved chunks and a question into a grounded,
// cited answer. The language model is only ever called with retrieved
// context; an empty retrieval produces a distinguished "no relevant
// documents" answer instead of an ungrounded guess.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/llm"
)

// NoRelevantDocuments is the answer text returned when retrieval comes
// back empty. Callers must treat it as a correct outcome, distinct from
// a generation failure.
const NoRelevantDocuments = "No relevant documents were found in the knowledge base for this question."

// systemPrompt instructs the model to stay inside the provided context.
const systemPrompt = `You are an assistant for answering questions about an organization's internal documents.
Answer using ONLY the reference material provided. Cite the source document name when you use it.
If the reference material does not contain the answer, say that the provided documents do not cover it. Never invent information.`

// Assistant generates grounded answers.
type Assistant struct {
	generator llm.Generator
	logger    *zap.Logger
}

// New creates an assistant over the given generator.
func New(generator llm.Generator, logger *zap.Logger) *Assistant {
	return &Assistant{
		generator: generator,
		logger:    logger,
	}
}

// buildContext renders retrieved chunks as numbered reference blocks with
// their source document names, so the model can cite them.
func buildContext(results []knowledge.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Reference %d: %s]\n%s", i+1, r.Filename, r.Chunk.Text)
	}
	return b.String()
}

// buildPrompt frames the question against the reference material.
func buildPrompt(question, context string) string {
	return fmt.Sprintf(`Answer the question using the reference material below.

[Reference material]
%s

[Question]
%s

[Answer]`, context, question)
}

// Close releases the underlying generator.
func (a *Assistant) Close() error {
	return a.generator.Close()
}

// Answer produces an AnswerRecord for the question given the retriever's
// results. With zero results the model is never called and the record is
// ungrounded. A model failure returns knowledge.ErrGenerationFailed and
// no record.
func (a *Assistant) Answer(ctx context.Context, question string, results []knowledge.SearchResult) (knowledge.AnswerRecord, error) {
	if len(results) == 0 {
		a.logger.Debug("no retrieval results, declining to answer",
			zap.String("question", question),
		)
		return knowledge.AnswerRecord{
			Question:  question,
			Answer:    NoRelevantDocuments,
			Grounded:  false,
			CreatedAt: time.Now(),
		}, nil
	}

	answer, err := a.generator.Generate(ctx, systemPrompt, buildPrompt(question, buildContext(results)))
	if err != nil {
		return knowledge.AnswerRecord{}, fmt.Errorf("answering %q: %w", question, err)
	}

	sources := make([]knowledge.SearchResult, len(results))
	copy(sources, results)

	return knowledge.AnswerRecord{
		Question:  question,
		Answer:    answer,
		Grounded:  true,
		Sources:   sources,
		CreatedAt: time.Now(),
	}, nil
}
