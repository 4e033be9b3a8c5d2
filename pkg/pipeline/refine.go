package pipeline

import (
	"context"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/observability"
)

// stallLimit is how many consecutive non-improving iterations the
// refinement loop tolerates before giving up.
const stallLimit = 2

// RefineLoop runs the bounded assess-and-regenerate loop.
//
// Each iteration assesses the current SVG; when the threshold is met the
// CURRENT document is returned immediately, even if an earlier iteration
// scored higher. Every other exit (stall, iteration budget exhausted, a
// regeneration that cannot be rendered) returns the best-scoring document
// seen so far. Requires both a vision model (assessment) and a text model
// (regeneration); callers skip the loop when either is absent.
func RefineLoop(ctx context.Context, deps Deps, analysis *diagram.Analysis, svg string, png []byte, cfg diagram.Config) RefineOutcome {
	out := RefineOutcome{SVG: svg}

	current := svg
	currentPNG := png
	bestSVG := svg
	bestScore := -1.0
	var bestQA *diagram.QualityAssessment
	stalls := 0

	for iter := 1; iter <= cfg.MaxRefinementIterations; iter++ {
		qa := AssessQuality(ctx, deps, analysis, current, currentPNG, cfg.QualityThreshold)
		if qa == nil {
			// Assessment failed: nothing learned this iteration, stop and
			// keep the best document so far.
			break
		}
		out.Iterations++
		out.History = append(out.History, qa.OverallScore)

		improved := qa.OverallScore > bestScore
		observability.Pipeline().OnRefineIteration(ctx, iter, qa.OverallScore, improved)
		deps.Logger.Debug("refinement iteration",
			"iteration", iter, "score", qa.OverallScore, "meets_threshold", qa.MeetsThreshold)

		if improved {
			bestSVG = current
			bestScore = qa.OverallScore
			bestQA = qa
			stalls = 0
		} else {
			stalls++
		}

		if qa.MeetsThreshold {
			out.SVG = current
			out.Assessment = qa
			return out
		}
		if stalls >= stallLimit || iter == cfg.MaxRefinementIterations {
			break
		}

		next, ok := regenerate(ctx, deps, analysis, current, qa)
		if !ok {
			break
		}
		nextPNG, err := deps.Renderer.SVGToRaster(ctx, next, cfg.DPI, cfg.BackgroundColor)
		if err != nil {
			deps.Logger.Warn("refined SVG failed to render, stopping refinement", "error", err)
			break
		}
		current = next
		currentPNG = nextPNG
	}

	out.SVG = bestSVG
	out.Assessment = bestQA
	return out
}

// regenerate asks the text model for a new SVG addressing the assessment's
// issues. Returns ok=false when the call fails or yields no SVG.
func regenerate(ctx context.Context, deps Deps, analysis *diagram.Analysis, svg string, qa *diagram.QualityAssessment) (string, bool) {
	fixes, preserve := RefinementFeedback(qa)
	resp, err := deps.Text.Generate(ctx, generateSystemPrompt, refinePrompt(svg, analysis, fixes, preserve), svgMaxTokens)
	if err != nil {
		deps.Logger.Warn("refinement regeneration call failed", "error", err)
		return "", false
	}
	next, ok := llm.ExtractSVG(resp)
	if !ok {
		deps.Logger.Warn("refinement regeneration yielded no SVG")
		return "", false
	}
	return next, true
}
