package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/diagramsmith/internal/config"
	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

func TestOutputBase(t *testing.T) {
	cases := []struct {
		output, input, want string
	}{
		{"", "notes.md", "notes"},
		{"", "docs/overview.txt", "docs/overview"},
		{"", "-", "diagram"},
		{"out.svg", "notes.md", "out"},
		{"reports/final", "notes.md", "reports/final"},
	}
	for _, c := range cases {
		if got := outputBase(c.output, c.input); got != c.want {
			t.Errorf("outputBase(%q, %q) = %q, want %q", c.output, c.input, got, c.want)
		}
	}
}

func TestResolveContentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(path, []byte("the water cycle"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveContent(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "the water cycle" {
		t.Errorf("content = %q", got)
	}
}

func TestResolveContentMissingFile(t *testing.T) {
	if _, err := resolveContent(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestPipelineOptionsFlagsWin(t *testing.T) {
	cfg := config.Config{Diagram: config.Diagram{NumCandidates: 3, Width: 800}}
	opts := &generateOpts{candidates: 5, width: 1024, refine: true, threshold: 4.5, diagramType: "timeline"}

	p := pipelineOptions(cfg, opts)
	if p.Config.NumCandidates != 5 {
		t.Errorf("candidates = %d", p.Config.NumCandidates)
	}
	if p.Config.Width != 1024 {
		t.Errorf("width = %d", p.Config.Width)
	}
	if !p.Config.EnableRefinementLoop || p.Config.QualityThreshold != 4.5 {
		t.Errorf("refinement config = %+v", p.Config)
	}
	if p.ForceType != diagram.TypeTimeline {
		t.Errorf("force type = %q", p.ForceType)
	}
}

func TestPipelineOptionsConfigDefaultsKept(t *testing.T) {
	cfg := config.Config{Diagram: config.Diagram{NumCandidates: 4}}
	p := pipelineOptions(cfg, &generateOpts{})
	if p.Config.NumCandidates != 4 {
		t.Errorf("candidates = %d, want config value", p.Config.NumCandidates)
	}
	if p.ForceType != "" {
		t.Errorf("force type = %q, want empty", p.ForceType)
	}
}
