package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/llm"
)

// AnalyzeContent asks the text model whether content warrants a diagram
// and what it should show. The analysis is produced once per request and
// read-only afterward.
func AnalyzeContent(ctx context.Context, deps Deps, content string) (*diagram.Analysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.ErrCodeInvalidContent, "content is empty")
	}
	if deps.Text == nil {
		return nil, errors.New(errors.ErrCodeModelUnavailable, "no text model configured for content analysis")
	}

	resp, err := deps.Text.Generate(ctx, analyzeSystemPrompt, analyzePrompt(content), analysisMaxTokens)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAnalysisFailed, err, "content analysis call")
	}

	raw, ok := llm.ExtractJSON(resp)
	if !ok {
		return nil, errors.New(errors.ErrCodeAnalysisFailed, "analysis response contained no JSON object")
	}

	var analysis diagram.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAnalysisFailed, err, "decoding analysis JSON")
	}

	return analysis.Clamp(), nil
}

// analysisFromInstructions builds an analysis directly from caller-supplied
// instructions, bypassing the model. Used for the custom-instruction path
// and the model-free fallback: the first line becomes the title, remaining
// non-empty lines become key elements.
func analysisFromInstructions(instructions string, forced diagram.Type) *diagram.Analysis {
	lines := strings.Split(instructions, "\n")

	analysis := &diagram.Analysis{
		ShouldGenerate: true,
		DiagramType:    diagram.TypeConceptMap,
		Rationale:      "caller-supplied instructions",
	}
	if forced != "" {
		analysis.DiagramType = forced
	}

	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		if analysis.Title == "" {
			analysis.Title = line
			continue
		}
		if strings.Contains(line, "->") {
			analysis.Relationships = append(analysis.Relationships, line)
			continue
		}
		analysis.KeyElements = append(analysis.KeyElements, line)
	}
	if analysis.Title == "" {
		analysis.Title = "Untitled Diagram"
	}

	return analysis.Clamp()
}
