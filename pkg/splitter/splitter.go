// Package splitter turns document text into an ordered sequence of chunks
// suitable for embedding. Splitting is deterministic: the same text and
// configuration always produce the same chunk sequence.
package splitter

import (
	"fmt"

	"github.com/knolhq/knol/pkg/knowledge"
)

const (
	// DefaultChunkSize is the default chunk size in runes.
	DefaultChunkSize = 500
)

// sentenceEnders are the rune boundaries preferred for chunk cuts. The
// ideographic full stop is included for Japanese corpora.
var sentenceEnders = map[rune]bool{
	'.':  true,
	'!':  true,
	'?':  true,
	'。':  true,
	'！':  true,
	'？':  true,
	'\n': true,
}

// Config holds splitter configuration.
type Config struct {
	// ChunkSize is the target chunk size in runes.
	// Defaults to DefaultChunkSize if zero.
	ChunkSize int

	// Overlap duplicates the trailing N runes of each chunk as the leading
	// content of the next chunk. Must be smaller than ChunkSize.
	Overlap int
}

// Splitter chunks document text.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter, validating the configuration.
func New(c Config) (*Splitter, error) {
	chunkSize := c.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if c.Overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", c.Overlap)
	}
	if c.Overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d", c.Overlap, chunkSize)
	}

	return &Splitter{
		chunkSize: chunkSize,
		overlap:   c.Overlap,
	}, nil
}

// ChunkSize returns the configured chunk size in runes.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks text into an ordered, gapless sequence of chunks owned by
// docID. Offsets are rune offsets into text; each chunk's Start points at
// the beginning of its duplicated overlap region, so new content for chunk
// i+1 begins at chunk i's End.
//
// Empty text yields zero chunks. Text shorter than the chunk size yields
// exactly one chunk. Cuts prefer paragraph breaks, then sentence
// boundaries, within a tolerance window of half the chunk size; otherwise
// the chunk is cut hard at the size limit.
func (s *Splitter) Split(docID, text string) []knowledge.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []knowledge.Chunk
	start := 0 // first rune not yet covered by any chunk's new content

	for start < len(runes) {
		chunkStart := start
		if len(chunks) > 0 {
			chunkStart = start - s.overlap
		}

		end := chunkStart + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.cutPoint(runes, start, chunkStart, end)
		}

		chunks = append(chunks, knowledge.Chunk{
			// Chunk IDs are derived from document and sequence so identical
			// input always yields identical chunks.
			ID:         fmt.Sprintf("%s:%d", docID, len(chunks)),
			DocumentID: docID,
			Seq:        len(chunks),
			Text:       string(runes[chunkStart:end]),
			Start:      chunkStart,
			End:        end,
		})

		start = end
	}

	return chunks
}

// cutPoint finds the preferred cut position for a chunk spanning
// [chunkStart, limit). It searches backward from the size limit for a
// paragraph break, then any sentence boundary, stopping half a chunk back.
// The returned cut always advances past start so splitting terminates.
func (s *Splitter) cutPoint(runes []rune, start, chunkStart, limit int) int {
	tolerance := chunkStart + s.chunkSize/2
	if tolerance <= start {
		tolerance = start + 1
	}

	// Paragraph break: cut after the blank line.
	for i := limit - 1; i > tolerance; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Sentence boundary: cut after the ending rune.
	for i := limit - 1; i >= tolerance; i-- {
		if sentenceEnders[runes[i]] {
			return i + 1
		}
	}

	return limit
}
