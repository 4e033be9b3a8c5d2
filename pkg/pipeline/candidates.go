package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/observability"
	"github.com/matzehuels/diagramsmith/pkg/render"
)

// GenerateCandidates fans out cfg.NumCandidates independent generation
// attempts and returns the survivors in slot order. Candidate IDs are the
// 1-based request slots, so IDs stay stable regardless of which attempts
// fail or how the goroutines interleave.
//
// Partial failure is normal here: a failed attempt drops one candidate and
// the others proceed. The per-slot errors are returned alongside the
// survivors so the caller can report why a fan-out came back short.
func GenerateCandidates(ctx context.Context, deps Deps, analysis *diagram.Analysis, opts Options) ([]diagram.Candidate, []error) {
	n := opts.Config.NumCandidates
	observability.Pipeline().OnGenerateStart(ctx, n)
	start := time.Now()

	slots := make([]*diagram.Candidate, n)
	slotErrs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			c, err := generateOne(ctx, deps, analysis, opts, slot+1)
			if err != nil {
				slotErrs[slot] = err
				return
			}
			slots[slot] = c
		}(i)
	}
	wg.Wait()

	var candidates []diagram.Candidate
	var errs []error
	for i, c := range slots {
		if c != nil {
			candidates = append(candidates, *c)
			continue
		}
		if slotErrs[i] != nil {
			errs = append(errs, slotErrs[i])
			deps.Logger.Warn("candidate generation failed", "slot", i+1, "error", slotErrs[i])
		}
	}

	observability.Pipeline().OnGenerateComplete(ctx, len(candidates), time.Since(start))
	return candidates, errs
}

// generateOne produces a single candidate: model call (or deterministic
// Graphviz fallback), SVG extraction, overlap check, raster render.
func generateOne(ctx context.Context, deps Deps, analysis *diagram.Analysis, opts Options, id int) (*diagram.Candidate, error) {
	svg, err := candidateSVG(ctx, deps, analysis, opts)
	if err != nil {
		return nil, err
	}

	c := &diagram.Candidate{
		ID:           id,
		SVG:          svg,
		OverlapCheck: deps.Checker.CheckTextOverlaps(svg),
	}

	png, err := deps.Renderer.SVGToRaster(ctx, svg, opts.Config.DPI, opts.Config.BackgroundColor)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rendering candidate %d", id)
	}
	c.PNG = png
	return c, nil
}

// candidateSVG obtains one SVG document. With a text model the document is
// generated from the analysis prompt; without one it falls back to the
// deterministic Graphviz concept map layout.
func candidateSVG(ctx context.Context, deps Deps, analysis *diagram.Analysis, opts Options) (string, error) {
	if deps.Text == nil {
		return render.ConceptMapSVG(ctx, analysis, opts.Config)
	}

	prompt := generatePrompt(analysis, opts.Config)
	if opts.CustomInstructions != "" {
		prompt += "\nAdditional instructions:\n" + opts.CustomInstructions + "\n"
	}

	resp, err := deps.Text.Generate(ctx, generateSystemPrompt, prompt, svgMaxTokens)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeModelUnavailable, err, "candidate generation call")
	}

	svg, ok := llm.ExtractSVG(resp)
	if !ok {
		return "", errors.New(errors.ErrCodeModelOutput, "model response contained no SVG document")
	}
	return svg, nil
}
