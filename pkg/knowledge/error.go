package knowledge

import "errors"

var (
	// ErrUnreadableDocument is returned when a loader cannot extract text
	// from an input file (malformed bytes, unsupported encoding, encrypted
	// PDF). User-correctable; wraps include the filename and cause.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrEmbeddingUnavailable is returned when the embedding backend cannot
	// be reached or invoked. Retryable by the caller.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationFailed is returned when the language-model call fails.
	// Retryable by the caller; knowledge-base state is untouched.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIndexCorrupt is returned when a stored index's vector dimensions or
	// embedding-model identity do not match the configured embedder. Fatal
	// for that index: it must be reset or re-embedded.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
