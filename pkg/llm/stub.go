package llm

import (
	"context"
	"sync"
)

// StubTextModel is a scripted TextModel for tests. Responses are consumed
// in order; when the script runs out, the last entry repeats. Set Func for
// fully custom behavior.
type StubTextModel struct {
	// Func, when set, handles every call.
	Func func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

	// Responses are returned in order of calls.
	Responses []string

	// Err, when set, is returned by every call (after recording it).
	Err error

	mu      sync.Mutex
	calls   int
	Prompts []string // user prompts received, for assertions
}

// Generate implements TextModel.
func (s *StubTextModel) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.Prompts = append(s.Prompts, userPrompt)
	s.mu.Unlock()

	if s.Func != nil {
		return s.Func(ctx, systemPrompt, userPrompt, maxTokens)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	idx := min(n, len(s.Responses)) - 1
	return s.Responses[idx], nil
}

// Calls reports how many times Generate was invoked.
func (s *StubTextModel) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubVisionModel is a scripted VisionModel for tests.
type StubVisionModel struct {
	// Func, when set, handles every call.
	Func func(ctx context.Context, systemPrompt string, parts []Part, maxTokens int) (string, error)

	// Responses are returned in order of calls.
	Responses []string

	// Err, when set, is returned by every call.
	Err error

	mu        sync.Mutex
	calls     int
	LastParts []Part // parts of the most recent call, for assertions
}

// GenerateVision implements VisionModel.
func (s *StubVisionModel) GenerateVision(ctx context.Context, systemPrompt string, parts []Part, maxTokens int) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.LastParts = parts
	s.mu.Unlock()

	if s.Func != nil {
		return s.Func(ctx, systemPrompt, parts, maxTokens)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	idx := min(n, len(s.Responses)) - 1
	return s.Responses[idx], nil
}

// Calls reports how many times GenerateVision was invoked.
func (s *StubVisionModel) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
