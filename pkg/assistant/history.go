package assistant

import (
	"sync"

	"github.com/knolhq/knol/pkg/knowledge"
)

// History accumulates answer records for a session. Records are immutable
// once appended; the surrounding application owns display and any
// persistence.
type History struct {
	mu      sync.RWMutex
	records []knowledge.AnswerRecord
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds a record.
func (h *History) Append(record knowledge.AnswerRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
}

// Records returns a copy of all records in append order.
func (h *History) Records() []knowledge.AnswerRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]knowledge.AnswerRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Clear removes all records.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}
