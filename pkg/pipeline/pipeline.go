// Package pipeline implements the diagram generation pipeline for DiagramSmith.
//
// This package composes the complete analyze → generate → select → refine →
// package flow that can be used by CLI, API, and worker components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Analyze: decide whether the content warrants a diagram and extract
//     its key elements and relationships
//  2. Generate: fan out N independent SVG candidates, defect-checking and
//     rendering each one
//  3. Select: ask a vision model to pick the best candidate and make light
//     positional fixes
//  4. Refine: optionally loop assess → regenerate until a quality
//     threshold is met or progress stalls
//  5. Package: final defect re-check, render, and result assembly
//
// Stages degrade rather than fail: a single model or render failure drops
// one candidate or skips one assessment; the pipeline as a whole fails only
// when analysis fails outright or zero candidates survive generation.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(deps, cache, nil)
//	result, err := runner.Generate(ctx, content, pipeline.Options{
//	    Config: diagram.DefaultConfig(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Success {
//	    os.WriteFile("out.svg", result.SVG, 0644)
//	}
package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/diagram/svgcheck"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/render"
)

// Token budgets for the different call shapes.
const (
	analysisMaxTokens  = 1000
	svgMaxTokens       = 4000
	selectionMaxTokens = 1500
	improveMaxTokens   = 4000
	assessMaxTokens    = 1500
)

// Deps bundles the external capabilities the pipeline depends on. Passing
// them explicitly (rather than reaching for process-wide clients) keeps
// requests independent and makes every stage testable with stubs.
type Deps struct {
	// Text generates analyses and SVG documents. When nil, candidate
	// generation falls back to the deterministic Graphviz concept map and
	// analysis requires caller-supplied instructions.
	Text llm.TextModel

	// Vision selects between candidates and scores quality. When nil,
	// selection falls back to fewest-overlaps and refinement is skipped.
	Vision llm.VisionModel

	// Renderer rasterizes SVG for the vision calls and the final result.
	Renderer render.Renderer

	// Checker detects geometric defects. Defaults to svgcheck.New().
	Checker *svgcheck.Checker

	// Logger receives stage-level progress. Defaults to log.Default().
	Logger *log.Logger
}

// normalized fills in defaulted dependencies.
func (d Deps) normalized() Deps {
	if d.Checker == nil {
		d.Checker = svgcheck.New()
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	return d
}

// Options configures one generation request.
type Options struct {
	// Config is the diagram configuration; zero fields take defaults.
	Config diagram.Config

	// ForceType forces generation with this diagram type even when the
	// analyzer decides a diagram is not warranted.
	ForceType diagram.Type

	// CustomInstructions, when set, bypasses content analysis entirely:
	// the instructions are handed to the generator verbatim.
	CustomInstructions string
}

// Selection is the outcome of the candidate selection stage.
type Selection struct {
	// SVG is the chosen (and possibly lightly edited) document.
	SVG string

	// CandidateID is the id of the chosen candidate.
	CandidateID int

	// Rationale is the selector's reasoning, or a fixed explanation for
	// the deterministic fallback paths.
	Rationale string

	// Edited reports whether SVG differs from the original candidate.
	Edited bool
}

// RefineOutcome is the result of the refinement loop.
type RefineOutcome struct {
	// SVG is the accepted document: the current iteration's SVG when the
	// threshold was met, best-so-far on every other exit.
	SVG string

	// Assessment matches SVG. Nil when the loop aborted before the first
	// assessment completed.
	Assessment *diagram.QualityAssessment

	// Iterations counts completed assessments.
	Iterations int

	// History lists each completed assessment's overall score, oldest
	// first, one entry per assessment rather than per regeneration attempt.
	History []float64
}
