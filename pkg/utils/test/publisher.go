// Package testutils provides shared fakes for unit tests: a canned and a
// deterministic hash embedder, a recording generator, and a capturing event
// publisher.
package testutils

import (
	"context"
	"sync"

	"github.com/knolhq/knol/pkg/eventstream"
)

// CapturePublisher records published events for assertions.
type CapturePublisher struct {
	mu       sync.Mutex
	Ingested []*eventstream.DocumentIngestedEvent
	Answered []*eventstream.QuestionAnsweredEvent
	CloseCnt int
}

func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

func (p *CapturePublisher) PublishDocumentIngested(_ context.Context, event *eventstream.DocumentIngestedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Ingested = append(p.Ingested, event)
	return nil
}

func (p *CapturePublisher) PublishQuestionAnswered(_ context.Context, event *eventstream.QuestionAnsweredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Answered = append(p.Answered, event)
	return nil
}

func (p *CapturePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CloseCnt++
	return nil
}

var _ eventstream.Publisher = (*CapturePublisher)(nil)
