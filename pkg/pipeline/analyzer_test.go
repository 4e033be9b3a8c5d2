package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/llm"
)

func TestAnalyzeContentParsesJSON(t *testing.T) {
	text := &llm.StubTextModel{Responses: []string{"```json\n" + testAnalysisJSON + "\n```"}}
	deps := testDeps(text, nil, nil)

	analysis, err := AnalyzeContent(context.Background(), deps, "the water cycle")
	if err != nil {
		t.Fatalf("AnalyzeContent: %v", err)
	}
	if !analysis.ShouldGenerate {
		t.Error("expected should_generate=true")
	}
	if analysis.DiagramType != diagram.TypeFlowchart {
		t.Errorf("diagram type = %q, want flowchart", analysis.DiagramType)
	}
	if len(analysis.KeyElements) != 3 {
		t.Errorf("key elements = %d, want 3", len(analysis.KeyElements))
	}
}

func TestAnalyzeContentClampsInvalidType(t *testing.T) {
	text := &llm.StubTextModel{Responses: []string{
		`{"should_generate": true, "diagram_type": "mind_palace", "title": "T", "key_elements": ["a"]}`,
	}}
	analysis, err := AnalyzeContent(context.Background(), testDeps(text, nil, nil), "content")
	if err != nil {
		t.Fatalf("AnalyzeContent: %v", err)
	}
	if analysis.DiagramType != diagram.TypeConceptMap {
		t.Errorf("unknown type should clamp to concept_map, got %q", analysis.DiagramType)
	}
}

func TestAnalyzeContentEmptyContent(t *testing.T) {
	_, err := AnalyzeContent(context.Background(), testDeps(&llm.StubTextModel{}, nil, nil), "   ")
	if !errors.Is(err, errors.ErrCodeInvalidContent) {
		t.Errorf("expected INVALID_CONTENT, got %v", err)
	}
}

func TestAnalyzeContentNoJSON(t *testing.T) {
	text := &llm.StubTextModel{Responses: []string{"I cannot help with that."}}
	_, err := AnalyzeContent(context.Background(), testDeps(text, nil, nil), "content")
	if !errors.Is(err, errors.ErrCodeAnalysisFailed) {
		t.Errorf("expected ANALYSIS_FAILED, got %v", err)
	}
}

func TestAnalysisFromInstructions(t *testing.T) {
	instructions := "Deployment Overview\n- build\n- test\nbuild -> test\n\n"
	analysis := analysisFromInstructions(instructions, diagram.TypeTimeline)

	if analysis.Title != "Deployment Overview" {
		t.Errorf("title = %q", analysis.Title)
	}
	if analysis.DiagramType != diagram.TypeTimeline {
		t.Errorf("forced type not applied, got %q", analysis.DiagramType)
	}
	if !analysis.ShouldGenerate {
		t.Error("instruction bypass must always generate")
	}
	if len(analysis.KeyElements) != 2 {
		t.Errorf("key elements = %v", analysis.KeyElements)
	}
	if len(analysis.Relationships) != 1 || !strings.Contains(analysis.Relationships[0], "->") {
		t.Errorf("relationships = %v", analysis.Relationships)
	}
}

func TestAnalysisFromInstructionsEmpty(t *testing.T) {
	analysis := analysisFromInstructions("", "")
	if analysis.Title == "" {
		t.Error("expected fallback title")
	}
	if analysis.DiagramType != diagram.TypeConceptMap {
		t.Errorf("default type = %q, want concept_map", analysis.DiagramType)
	}
}
