package render

import (
	"context"
	"sync"
)

// Stub is a scripted Renderer for tests. It returns fixed PNG bytes, or an
// error for specific call numbers, without touching librsvg.
type Stub struct {
	// PNG is returned on success. Defaults to a short placeholder.
	PNG []byte

	// Err, when set, is returned by every call.
	Err error

	// FailOn lists 1-based call numbers that should fail.
	FailOn map[int]error

	mu    sync.Mutex
	calls int
}

// SVGToRaster implements Renderer.
func (s *Stub) SVGToRaster(ctx context.Context, svg string, dpi int, background string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if err, ok := s.FailOn[n]; ok {
		return nil, err
	}
	if s.PNG != nil {
		return s.PNG, nil
	}
	return []byte("png-stub"), nil
}

// Calls reports how many renders were requested.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ Renderer = (*Stub)(nil)
