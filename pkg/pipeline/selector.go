package pipeline

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/observability"
)

var candidateIDRe = regexp.MustCompile(`(?i)candidate\s+#?(\d+)`)

// SelectAndImprove picks the best candidate and applies light positional
// fixes to it. Selection uses the vision model over all candidate renders;
// the improvement pass uses the text model over the chosen SVG. Every
// failure in this stage falls back deterministically rather than aborting:
// the worst case is returning an unmodified candidate.
func SelectAndImprove(ctx context.Context, deps Deps, analysis *diagram.Analysis, candidates []diagram.Candidate) Selection {
	start := time.Now()

	// A single candidate needs no comparison.
	if len(candidates) == 1 {
		sel := Selection{
			SVG:         candidates[0].SVG,
			CandidateID: candidates[0].ID,
			Rationale:   "only candidate",
		}
		observability.Pipeline().OnSelectComplete(ctx, sel.CandidateID, time.Since(start), nil)
		return improve(ctx, deps, sel, candidates)
	}

	if deps.Vision == nil {
		sel := fewestOverlaps(candidates, "no vision model configured")
		observability.Pipeline().OnSelectComplete(ctx, sel.CandidateID, time.Since(start), nil)
		return improve(ctx, deps, sel, candidates)
	}

	parts := make([]llm.Part, 0, 2*len(candidates)+1)
	parts = append(parts, llm.TextPart(selectLeadText(analysis, len(candidates))))
	for _, c := range candidates {
		parts = append(parts, llm.TextPart(selectCandidateText(c)), llm.ImagePart(c.PNG))
	}

	resp, err := deps.Vision.GenerateVision(ctx, selectSystemPrompt, parts, selectionMaxTokens)
	if err != nil {
		deps.Logger.Warn("candidate selection call failed, falling back", "error", err)
		sel := fewestOverlaps(candidates, "selection call failed")
		observability.Pipeline().OnSelectComplete(ctx, sel.CandidateID, time.Since(start), err)
		return improve(ctx, deps, sel, candidates)
	}

	sel := parseSelection(resp, candidates)
	observability.Pipeline().OnSelectComplete(ctx, sel.CandidateID, time.Since(start), nil)
	return improve(ctx, deps, sel, candidates)
}

// parseSelection extracts the "candidate N" choice from the model's reply.
// An unparseable or out-of-range N falls back to the first candidate.
func parseSelection(resp string, candidates []diagram.Candidate) Selection {
	m := candidateIDRe.FindStringSubmatch(resp)
	if m != nil {
		id, err := strconv.Atoi(m[1])
		if err == nil {
			for _, c := range candidates {
				if c.ID == id {
					return Selection{SVG: c.SVG, CandidateID: c.ID, Rationale: resp}
				}
			}
		}
	}
	return Selection{
		SVG:         candidates[0].SVG,
		CandidateID: candidates[0].ID,
		Rationale:   resp,
	}
}

// fewestOverlaps is the deterministic selection fallback: the candidate
// with the fewest overlapping label pairs, lowest id on ties.
func fewestOverlaps(candidates []diagram.Candidate, reason string) Selection {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.OverlapCheck.OverlapPairs) < len(best.OverlapCheck.OverlapPairs) {
			best = c
		}
	}
	return Selection{
		SVG:         best.SVG,
		CandidateID: best.ID,
		Rationale:   "fewest overlapping labels (" + reason + ")",
	}
}

// improve asks the text model for minor positional edits to the selected
// SVG. A failed call falls back to the fewest-overlaps candidate, the same
// deterministic fallback the selection call uses; a reply with no
// extractable SVG keeps the selection unmodified.
func improve(ctx context.Context, deps Deps, sel Selection, candidates []diagram.Candidate) Selection {
	if deps.Text == nil {
		return sel
	}

	resp, err := deps.Text.Generate(ctx, improveSystemPrompt, improvePrompt(sel.SVG), improveMaxTokens)
	if err != nil {
		deps.Logger.Warn("selection improvement call failed, falling back", "error", err)
		return fewestOverlaps(candidates, "improvement call failed")
	}
	svg, ok := llm.ExtractSVG(resp)
	if !ok || svg == sel.SVG {
		return sel
	}

	sel.SVG = svg
	sel.Edited = true
	return sel
}
