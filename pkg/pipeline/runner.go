package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/diagramsmith/pkg/cache"
	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/observability"
)

// Runner executes the full diagram generation pipeline. It is safe for
// concurrent use; all per-request state lives on the stack of Generate.
type Runner struct {
	deps  Deps
	cache cache.Cache
	keyer cache.Keyer
}

// NewRunner creates a pipeline runner. cache and keyer may be nil to
// disable cross-request caching.
func NewRunner(deps Deps, c cache.Cache, keyer cache.Keyer) *Runner {
	if c != nil && keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Runner{deps: deps.normalized(), cache: c, keyer: keyer}
}

// Generate runs the pipeline end to end for one piece of content.
//
// The returned error is non-nil only for invalid input. Pipeline outcomes,
// including fatal ones such as every candidate failing, are reported on
// the Result: Success=false with Error set for fatal outcomes, Success=true
// with Error set to a warning for usable output with known defects.
func (r *Runner) Generate(ctx context.Context, content string, opts Options) (*diagram.Result, error) {
	if err := opts.Config.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cfg := opts.Config
	deps := r.deps

	// Stage 1: analysis, or the instruction bypass.
	analysis, err := r.analyze(ctx, deps, content, opts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidContent) {
			return nil, err
		}
		return &diagram.Result{Success: false, Error: err.Error()}, nil
	}

	if !analysis.ShouldGenerate && opts.ForceType == "" {
		deps.Logger.Info("content does not warrant a diagram", "rationale", analysis.Rationale)
		return &diagram.Result{
			Analysis: analysis,
			Success:  false,
			Error:    "content does not warrant a diagram: " + analysis.Rationale,
		}, nil
	}
	if opts.ForceType != "" {
		analysis.DiagramType = diagram.ParseType(string(opts.ForceType))
		analysis.ShouldGenerate = true
	}

	// Stage 2: candidate fan-out.
	candidates, genErrs := GenerateCandidates(ctx, deps, analysis, opts)
	if len(candidates) == 0 {
		return &diagram.Result{
			Analysis: analysis,
			Success:  false,
			Error:    fmt.Sprintf("All SVG generation attempts failed (%d errors)", len(genErrs)),
		}, nil
	}
	deps.Logger.Info("candidates generated",
		"survived", len(candidates), "requested", cfg.NumCandidates)

	// Stage 3: selection and light improvement.
	sel := SelectAndImprove(ctx, deps, analysis, candidates)
	selectedOverlaps := overlapCount(candidates, sel.CandidateID)

	finalSVG := sel.SVG

	// Stage 4: optional quality refinement.
	var refined RefineOutcome
	if cfg.EnableRefinementLoop && deps.Vision != nil && deps.Text != nil {
		png, rerr := r.renderCached(ctx, deps, finalSVG, cfg)
		if rerr != nil {
			deps.Logger.Warn("skipping refinement, selected SVG failed to render", "error", rerr)
		} else {
			refined = RefineLoop(ctx, deps, analysis, finalSVG, png, cfg)
			finalSVG = refined.SVG
		}
	}

	// Stage 5: final re-check, render, and packaging.
	finalCheck := deps.Checker.CheckTextOverlaps(finalSVG)

	result := &diagram.Result{
		SVG:                  []byte(finalSVG),
		Analysis:             analysis,
		OverlapCheck:         finalCheck,
		GenerationAttempts:   len(candidates),
		SelectedCandidate:    sel.CandidateID,
		SelectionRationale:   sel.Rationale,
		Success:              true,
		RefinementIterations: refined.Iterations,
		QualityHistory:       refined.History,
	}
	if refined.Assessment != nil {
		score := refined.Assessment.OverallScore
		result.FinalQualityScore = &score
	}

	png, rerr := r.renderCached(ctx, deps, finalSVG, cfg)
	if rerr != nil {
		deps.Logger.Warn("final render failed, returning SVG only", "error", rerr)
	} else {
		result.PNG = png
	}

	result.ImprovementsMade = improvements(sel, selectedOverlaps, finalCheck, refined)
	if finalCheck.HasOverlaps {
		// Non-fatal: Success stays true, Error carries the warning.
		result.Error = fmt.Sprintf("diagram contains %d overlapping label pair(s)", len(finalCheck.OverlapPairs))
	}
	return result, nil
}

// analyze resolves the content analysis: instruction bypass, cache lookup,
// then the model.
func (r *Runner) analyze(ctx context.Context, deps Deps, content string, opts Options) (*diagram.Analysis, error) {
	if opts.CustomInstructions != "" {
		return analysisFromInstructions(opts.CustomInstructions, opts.ForceType), nil
	}

	observability.Pipeline().OnAnalyzeStart(ctx, len(content))
	start := time.Now()

	var key string
	if r.cache != nil {
		key = r.keyer.AnalysisKey(cache.Hash([]byte(content)), "text")
		if data, ok, _ := r.cache.Get(ctx, key); ok {
			var analysis diagram.Analysis
			if err := json.Unmarshal(data, &analysis); err == nil {
				observability.Cache().OnCacheHit(ctx, "analysis")
				observability.Pipeline().OnAnalyzeComplete(ctx, analysis.ShouldGenerate, string(analysis.DiagramType), time.Since(start), nil)
				return analysis.Clamp(), nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	analysis, err := AnalyzeContent(ctx, deps, content)
	if err != nil {
		observability.Pipeline().OnAnalyzeComplete(ctx, false, "", time.Since(start), err)
		return nil, err
	}
	observability.Pipeline().OnAnalyzeComplete(ctx, analysis.ShouldGenerate, string(analysis.DiagramType), time.Since(start), nil)

	if r.cache != nil {
		if data, merr := json.Marshal(analysis); merr == nil {
			if err := r.cache.Set(ctx, key, data, cache.TTLAnalysis); err == nil {
				observability.Cache().OnCacheSet(ctx, "analysis", len(data))
			}
		}
	}
	return analysis, nil
}

// renderCached rasterizes an SVG, reusing a cached render when available.
func (r *Runner) renderCached(ctx context.Context, deps Deps, svg string, cfg diagram.Config) ([]byte, error) {
	start := time.Now()

	var key string
	if r.cache != nil {
		key = r.keyer.RenderKey(cache.Hash([]byte(svg)), cfg.DPI, cfg.BackgroundColor)
		if data, ok, _ := r.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, "render")
			observability.Pipeline().OnRenderComplete(ctx, len(data), time.Since(start), nil)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	png, err := deps.Renderer.SVGToRaster(ctx, svg, cfg.DPI, cfg.BackgroundColor)
	observability.Pipeline().OnRenderComplete(ctx, len(png), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rasterizing final SVG")
	}

	if r.cache != nil {
		if cerr := r.cache.Set(ctx, key, png, cache.TTLRender); cerr == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(png))
		}
	}
	return png, nil
}

// overlapCount returns the overlap pair count of the candidate with the
// given id at generation time.
func overlapCount(candidates []diagram.Candidate, id int) int {
	for _, c := range candidates {
		if c.ID == id {
			return len(c.OverlapCheck.OverlapPairs)
		}
	}
	return 0
}

// improvements describes what changed between the chosen candidate and the
// final document.
func improvements(sel Selection, before int, final diagram.OverlapCheckResult, refined RefineOutcome) []string {
	var out []string
	if sel.Edited {
		out = append(out, "adjusted element positions after selection")
	}
	switch after := len(final.OverlapPairs); {
	case after < before:
		out = append(out, fmt.Sprintf("reduced overlapping label pairs from %d to %d", before, after))
	case after > before:
		out = append(out, fmt.Sprintf("overlapping label pairs increased from %d to %d", before, after))
	case before > 0:
		out = append(out, fmt.Sprintf("overlapping label pairs unchanged at %d", before))
	}
	if refined.Iterations > 0 {
		out = append(out, fmt.Sprintf("refined through %d quality iteration(s)", refined.Iterations))
	}
	return out
}
