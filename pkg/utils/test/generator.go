package testutils

import (
	"context"
	"fmt"

	"github.com/knolhq/knol/pkg/knowledge"
)

// MockGenerator is a test answer generator that records its invocations.
type MockGenerator struct {
	// Response is returned from Generate on success.
	Response string

	// Fail causes Generate to return an embedding-style failure.
	Fail bool

	// Calls counts Generate invocations.
	Calls int

	// LastSystem and LastPrompt capture the most recent invocation.
	LastSystem string
	LastPrompt string
}

func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt

	if m.Fail {
		return "", fmt.Errorf("%w: mock generation failure", knowledge.ErrGenerationFailed)
	}
	return m.Response, nil
}

func (m *MockGenerator) ModelID() string { return "test/mock" }

func (m *MockGenerator) Close() error { return nil }
