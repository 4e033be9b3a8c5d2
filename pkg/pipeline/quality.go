package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/observability"
)

// maxReportedDefects caps how many findings each defect category
// contributes to the assessment prompt.
const maxReportedDefects = 5

// maxFeedbackFixes caps the numbered fix list handed to refinement.
const maxFeedbackFixes = 5

// AssessQuality scores the rendered diagram with the vision model,
// grounding the call in the deterministic geometric checks. A failed or
// unparseable assessment returns nil; the refinement loop treats that as a
// skipped iteration, not a fatal error.
func AssessQuality(ctx context.Context, deps Deps, analysis *diagram.Analysis, svg string, png []byte, threshold float64) *diagram.QualityAssessment {
	report := defectReport(deps, svg)

	parts := []llm.Part{
		llm.TextPart(assessPrompt(analysis, report)),
		llm.ImagePart(png),
	}
	resp, err := deps.Vision.GenerateVision(ctx, assessSystemPrompt, parts, assessMaxTokens)
	if err != nil {
		deps.Logger.Warn("quality assessment call failed", "error", err)
		observability.Pipeline().OnAssessComplete(ctx, 0, false, err)
		return nil
	}

	raw, ok := llm.ExtractJSON(resp)
	if !ok {
		deps.Logger.Warn("quality assessment response contained no JSON")
		observability.Pipeline().OnAssessComplete(ctx, 0, false, nil)
		return nil
	}

	var payload struct {
		diagram.Scores
		OverallScore float64                `json:"overall_score"`
		Issues       []diagram.QualityIssue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		deps.Logger.Warn("quality assessment JSON malformed", "error", err)
		observability.Pipeline().OnAssessComplete(ctx, 0, false, err)
		return nil
	}

	qa := diagram.NewQualityAssessment(payload.Scores, payload.OverallScore, payload.Issues, threshold)
	observability.Pipeline().OnAssessComplete(ctx, qa.OverallScore, qa.MeetsThreshold, nil)
	return &qa
}

// defectReport summarizes the deterministic geometric checks for the
// assessment prompt. Each category is capped at maxReportedDefects entries
// with a "+N more" marker.
func defectReport(deps Deps, svg string) string {
	var lines []string

	overlaps := deps.Checker.CheckTextOverlaps(svg)
	if overlaps.HasOverlaps {
		var entries []string
		for _, p := range overlaps.OverlapPairs {
			entries = append(entries, fmt.Sprintf("labels %q and %q overlap", p.A, p.B))
		}
		lines = append(lines, capped(entries)...)
	}

	bounds := deps.Checker.CheckBoundsViolations(svg)
	if bounds.HasViolations {
		var entries []string
		for _, v := range bounds.Violations {
			entries = append(entries, fmt.Sprintf("%s %s", v.Label, v.Detail))
		}
		lines = append(lines, capped(entries)...)
	}

	obscured := deps.Checker.CheckObscuredText(svg)
	if obscured.HasObscured {
		lines = append(lines, capped(obscured.Findings)...)
	}

	if len(lines) == 0 {
		return ""
	}
	for i, l := range lines {
		lines[i] = "- " + l
	}
	return strings.Join(lines, "\n")
}

// capped truncates one category's findings to maxReportedDefects entries.
func capped(entries []string) []string {
	if len(entries) <= maxReportedDefects {
		return entries
	}
	out := make([]string, maxReportedDefects, maxReportedDefects+1)
	copy(out, entries)
	return append(out, fmt.Sprintf("+%d more", len(entries)-maxReportedDefects))
}

// RefinementFeedback turns an assessment into the fix and preserve lists
// for the regeneration prompt. Fixes are the reported issues sorted by
// severity and capped; when the model reported no issues, up to three
// fixes are synthesized from the weakest criteria. Preserve lists the
// criteria scoring at least 4.
func RefinementFeedback(qa *diagram.QualityAssessment) (fixes, preserve []string) {
	if len(qa.Issues) > 0 {
		issues := make([]diagram.QualityIssue, len(qa.Issues))
		copy(issues, qa.Issues)
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].Severity.Rank() < issues[j].Severity.Rank()
		})
		if len(issues) > maxFeedbackFixes {
			issues = issues[:maxFeedbackFixes]
		}
		for i, issue := range issues {
			line := fmt.Sprintf("%d. [%s] %s", i+1, issue.Severity, issue.Description)
			if issue.SuggestedFix != "" {
				line += " (fix: " + issue.SuggestedFix + ")"
			}
			fixes = append(fixes, line)
		}
	} else {
		fixes = synthesizedFixes(qa.Scores)
	}

	for _, c := range diagram.Criteria {
		if qa.Scores.Get(c) >= 4 {
			preserve = append(preserve, preserveText[c])
		}
	}
	if len(preserve) == 0 {
		preserve = append(preserve, "general diagram structure")
	}
	return fixes, preserve
}

// synthesizedFixes derives fixes from criteria scoring below 3 when the
// model reported scores but no structured issues. At most three, in
// criterion priority order.
func synthesizedFixes(scores diagram.Scores) []string {
	var fixes []string
	for _, c := range diagram.Criteria {
		if scores.Get(c) >= 3 {
			continue
		}
		fixes = append(fixes, fmt.Sprintf("%d. improve %s (scored %.1f)", len(fixes)+1, fixText[c], scores.Get(c)))
		if len(fixes) == 3 {
			break
		}
	}
	if len(fixes) == 0 {
		fixes = append(fixes, "1. increase overall polish: spacing, alignment, and label placement")
	}
	return fixes
}

var fixText = map[diagram.Criterion]string{
	diagram.CriterionTextLegibility:  "text legibility: larger fonts, higher contrast",
	diagram.CriterionOverlapFree:     "label separation: move overlapping labels apart",
	diagram.CriterionVisualHierarchy: "visual hierarchy: emphasize primary elements",
	diagram.CriterionSpacingBalance:  "spacing balance: distribute elements evenly",
	diagram.CriterionLayoutLogic:     "layout logic: order elements to match their relationships",
	diagram.CriterionShapeFit:        "shape choice: use shapes that match element roles",
	diagram.CriterionCompleteness:    "completeness: include every key element",
}

var preserveText = map[diagram.Criterion]string{
	diagram.CriterionTextLegibility:  "the current font sizes and text contrast",
	diagram.CriterionOverlapFree:     "the current label separation",
	diagram.CriterionVisualHierarchy: "the current visual hierarchy",
	diagram.CriterionSpacingBalance:  "the current spacing and balance",
	diagram.CriterionLayoutLogic:     "the current layout structure",
	diagram.CriterionShapeFit:        "the current shape choices",
	diagram.CriterionCompleteness:    "the current element coverage",
}
