// Package eventstream publishes knowledge-base lifecycle events to an
// event stream backend. Publishing is best-effort glue for downstream
// consumers (audit, analytics); a publish failure never fails the
// pipeline that produced the event.
package eventstream

import "context"

// Publisher publishes knowledge-base events to an event stream backend.
type Publisher interface {
	PublishDocumentIngested(ctx context.Context, event *DocumentIngestedEvent) error
	PublishQuestionAnswered(ctx context.Context, event *QuestionAnsweredEvent) error
	Close() error
}
