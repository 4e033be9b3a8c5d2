package pipeline

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/render"
)

func testAnalysis(t *testing.T) *diagram.Analysis {
	t.Helper()
	var a diagram.Analysis
	if err := json.Unmarshal([]byte(testAnalysisJSON), &a); err != nil {
		t.Fatal(err)
	}
	return &a
}

func TestGenerateCandidatesAll(t *testing.T) {
	text := &llm.StubTextModel{Responses: []string{fenced(testSVG)}}
	deps := testDeps(text, nil, &render.Stub{})
	opts := Options{Config: diagram.DefaultConfig()}

	candidates, errs := GenerateCandidates(context.Background(), deps, testAnalysis(t), opts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != opts.Config.NumCandidates {
		t.Fatalf("candidates = %d, want %d", len(candidates), opts.Config.NumCandidates)
	}
	for i, c := range candidates {
		if c.ID != i+1 {
			t.Errorf("candidate %d has id %d", i, c.ID)
		}
		if c.SVG != testSVG {
			t.Errorf("candidate %d SVG not normalized", i)
		}
		if len(c.PNG) == 0 {
			t.Errorf("candidate %d missing render", i)
		}
	}
}

func TestGenerateCandidatesPartialFailure(t *testing.T) {
	// One of the three attempts yields no SVG. The other two must keep
	// their original 1-based slot ids regardless of scheduling order.
	var calls atomic.Int32
	text := &llm.StubTextModel{
		Func: func(context.Context, string, string, int) (string, error) {
			if calls.Add(1) == 2 {
				return "sorry, no diagram", nil
			}
			return fenced(testSVG), nil
		},
	}
	deps := testDeps(text, nil, &render.Stub{})
	opts := Options{Config: diagram.DefaultConfig()}

	candidates, errs := GenerateCandidates(context.Background(), deps, testAnalysis(t), opts)
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(errs))
	}
	seen := map[int]bool{}
	prev := 0
	for _, c := range candidates {
		if c.ID < 1 || c.ID > 3 {
			t.Errorf("id %d out of slot range", c.ID)
		}
		if c.ID <= prev {
			t.Errorf("ids not strictly ascending: %d after %d", c.ID, prev)
		}
		if seen[c.ID] {
			t.Errorf("duplicate id %d", c.ID)
		}
		seen[c.ID] = true
		prev = c.ID
	}
}

func TestGenerateCandidatesRenderFailureDrops(t *testing.T) {
	text := &llm.StubTextModel{Responses: []string{fenced(testSVG)}}
	deps := testDeps(text, nil, &render.Stub{Err: context.DeadlineExceeded})
	cfg := diagram.DefaultConfig()
	cfg.NumCandidates = 1

	candidates, errs := GenerateCandidates(context.Background(), deps, testAnalysis(t), Options{Config: cfg})
	if len(candidates) != 0 {
		t.Fatalf("candidates = %d, want 0", len(candidates))
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(errs))
	}
}

func TestGenerateCandidatesOverlapCheckRecorded(t *testing.T) {
	text := &llm.StubTextModel{Responses: []string{fenced(testSVGOverlapping)}}
	deps := testDeps(text, nil, &render.Stub{})
	cfg := diagram.DefaultConfig()
	cfg.NumCandidates = 1

	candidates, _ := GenerateCandidates(context.Background(), deps, testAnalysis(t), Options{Config: cfg})
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}
	if !candidates[0].OverlapCheck.HasOverlaps {
		t.Error("expected overlap check to flag colliding labels")
	}
}

func TestGenerateCandidatesGraphvizFallback(t *testing.T) {
	deps := testDeps(nil, nil, &render.Stub{})
	cfg := diagram.DefaultConfig()
	cfg.NumCandidates = 1

	candidates, errs := GenerateCandidates(context.Background(), deps, testAnalysis(t), Options{Config: cfg})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}
	if candidates[0].SVG == "" {
		t.Error("fallback candidate has empty SVG")
	}
}
