package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentIngested is emitted after a document is indexed.
	EventTypeDocumentIngested = "knol.document.ingested"

	// EventTypeQuestionAnswered is emitted after a question is answered.
	EventTypeQuestionAnswered = "knol.question.answered"
)

// DocumentIngestedEvent is a transport-neutral payload for an indexed
// document.
type DocumentIngestedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	Chunks     int    `json:"chunks"`
}

// QuestionAnsweredEvent is a transport-neutral payload for an answered
// question.
type QuestionAnsweredEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	Question string   `json:"question"`
	Grounded bool     `json:"grounded"`
	Sources  []string `json:"sources,omitempty"`
}
