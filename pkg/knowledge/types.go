// Package knowledge defines the core data model for the knol knowledge base
// and the Base service that orchestrates ingestion and question answering.
package knowledge

import "time"

// Format identifies the source file format of an ingested document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// Document is an ingested source file. Documents are immutable once
// created; re-ingesting the same file mints a new Document with a new ID.
type Document struct {
	// ID uniquely identifies the document within the knowledge base.
	ID string `json:"id"`

	// Filename is the original name of the uploaded file.
	Filename string `json:"filename"`

	// Format is the source format tag (pdf, docx, txt).
	Format Format `json:"format"`

	// Text is the full extracted, normalised text.
	Text string `json:"-"`

	// IngestedAt is when the document entered the knowledge base.
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is a contiguous span of a document's text, the atomic unit of
// embedding and retrieval.
type Chunk struct {
	// ID uniquely identifies the chunk.
	ID string `json:"id"`

	// DocumentID is the owning document's ID.
	DocumentID string `json:"document_id"`

	// Seq is the chunk's position within the document. Chunks concatenated
	// in Seq order (overlap trimmed by offset) reconstruct the document text.
	Seq int `json:"seq"`

	// Text is the chunk content, including any configured leading overlap.
	Text string `json:"text"`

	// Start and End are rune offsets of this chunk in the document text.
	// When overlap is configured, Start points at the beginning of the
	// duplicated overlap region.
	Start int `json:"start"`
	End   int `json:"end"`

	// Embedding is the chunk's vector. Nil until computed.
	Embedding []float32 `json:"-"`
}

// DocumentInfo is the listing view of a stored document.
type DocumentInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Format     Format    `json:"format"`
	Chunks     int       `json:"chunks"`
	Preview    string    `json:"preview"`
	IngestedAt time.Time `json:"ingested_at"`
}

// SearchResult pairs a chunk with its similarity score and rank position.
// Results are ephemeral; they are produced per query and never stored.
type SearchResult struct {
	Chunk Chunk `json:"chunk"`

	// Filename of the owning document, carried for citation display.
	Filename string `json:"filename"`

	// Score is the cosine similarity to the query (higher = more relevant).
	Score float32 `json:"score"`

	// Rank is the 0-based position in the result ordering.
	Rank int `json:"rank"`
}

// AnswerRecord captures one question/answer exchange and the exact chunks
// used as grounding. Records are immutable once created.
type AnswerRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`

	// Grounded is false when no sufficiently relevant documents were found
	// and the language model was never called.
	Grounded bool `json:"grounded"`

	// Sources are the retrieved chunks the answer is grounded in, in rank
	// order. Empty when Grounded is false.
	Sources []SearchResult `json:"sources,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// File is one input to a batch ingestion.
type File struct {
	Name string
	Data []byte
}

// IngestResult reports the outcome of ingesting a single file.
type IngestResult struct {
	Filename string `json:"filename"`

	// Document is set on success.
	Document *Document `json:"document,omitempty"`

	// Chunks is the number of chunks indexed for this document.
	Chunks int `json:"chunks"`

	// SkippedChunks counts chunks dropped because their embedding failed.
	SkippedChunks int `json:"skipped_chunks,omitempty"`

	// Err is the failure that prevented this file from being indexed.
	Err error `json:"-"`

	// Error is the string form of Err for JSON consumers.
	Error string `json:"error,omitempty"`
}
