package pipeline

import (
	"fmt"
	"strings"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

// System prompts for the different call shapes.
const (
	analyzeSystemPrompt = "You are an expert at deciding whether text content benefits from a visual diagram. " +
		"Respond with a single JSON object and nothing else."

	generateSystemPrompt = "You are an expert SVG diagram designer. " +
		"Produce clean, well-spaced vector diagrams with no overlapping text. " +
		"Respond with a complete SVG document and nothing else."

	selectSystemPrompt = "You are a meticulous visual reviewer comparing diagram candidates. " +
		"Name the best candidate explicitly as 'candidate N' and explain briefly."

	improveSystemPrompt = "You are an SVG editor. Make only minor positional and spacing adjustments. " +
		"Do not add, remove, or reword any element. Respond with the complete edited SVG document."

	assessSystemPrompt = "You are a strict diagram quality assessor. " +
		"Score each criterion from 0 to 5 and respond with a single JSON object and nothing else."
)

// analyzePrompt asks for the structured content analysis.
func analyzePrompt(content string) string {
	var b strings.Builder
	b.WriteString("Decide whether the following content warrants a diagram, and if so, describe it.\n\n")
	b.WriteString("Respond with JSON in exactly this shape:\n")
	b.WriteString(`{"should_generate": bool, "diagram_type": "flowchart|concept_map|process_diagram|hierarchy|comparison|timeline|cycle", "title": "3-8 words", "key_elements": ["1-10 strings"], "relationships": ["element -> element: label"], "rationale": "why"}`)
	b.WriteString("\n\nContent:\n")
	b.WriteString(content)
	return b.String()
}

// generatePrompt asks for one SVG candidate.
func generatePrompt(analysis *diagram.Analysis, cfg diagram.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s diagram titled %q as a complete SVG document.\n\n", analysis.DiagramType, analysis.Title)
	fmt.Fprintf(&b, "Canvas: %dx%d pixels, background %s.\n", cfg.Width, cfg.Height, cfg.BackgroundColor)
	fmt.Fprintf(&b, "Font: %s. Primary color: %s.\n\n", cfg.FontFamily, cfg.PrimaryColor)

	b.WriteString("Show these elements:\n")
	for _, el := range analysis.KeyElements {
		fmt.Fprintf(&b, "- %s\n", el)
	}
	if len(analysis.Relationships) > 0 {
		b.WriteString("\nConnected as:\n")
		for _, rel := range analysis.Relationships {
			fmt.Fprintf(&b, "- %s\n", rel)
		}
	}

	b.WriteString("\nRequirements: every element inside the canvas, no overlapping text labels, ")
	b.WriteString("generous spacing, readable font sizes (>= 12).\n")
	if analysis.Rationale != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", analysis.Rationale)
	}
	return b.String()
}

// selectPrompt presents all candidates with their defect summaries.
// Image parts are interleaved by the caller; this builds the text lead-in
// for one candidate.
func selectCandidateText(c diagram.Candidate) string {
	summary := "no overlapping labels detected"
	if c.OverlapCheck.HasOverlaps {
		// Show at most 3 example pairs.
		pairs := c.OverlapCheck.OverlapPairs
		if len(pairs) > 3 {
			pairs = pairs[:3]
		}
		examples := make([]string, len(pairs))
		for i, p := range pairs {
			examples[i] = fmt.Sprintf("%q/%q", p.A, p.B)
		}
		summary = fmt.Sprintf("%d overlapping pair(s), e.g. %s", len(c.OverlapCheck.OverlapPairs), strings.Join(examples, ", "))
	}
	return fmt.Sprintf("Candidate %d (%s):", c.ID, summary)
}

// selectLeadText opens the selection request.
func selectLeadText(analysis *diagram.Analysis, n int) string {
	return fmt.Sprintf(
		"Compare the %d diagram candidates below for the %s %q. "+
			"Pick the one with the clearest layout and fewest defects. "+
			"State your choice as 'candidate N' and explain briefly.",
		n, analysis.DiagramType, analysis.Title)
}

// improvePrompt asks for minor positional edits to the selected SVG.
func improvePrompt(svg string) string {
	return "Make only minor positional and spacing adjustments to improve this diagram " +
		"(nudge overlapping or cramped labels apart, center misaligned elements). " +
		"Keep structure and content identical.\n\n" + svg
}

// assessPrompt asks for the seven-criterion quality score.
func assessPrompt(analysis *diagram.Analysis, defectReport string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assess the attached rendering of a %s diagram titled %q.\n\n", analysis.DiagramType, analysis.Title)
	if defectReport != "" {
		b.WriteString("Automated geometric checks found:\n")
		b.WriteString(defectReport)
		b.WriteString("\n")
	}
	b.WriteString("Respond with JSON in exactly this shape:\n")
	b.WriteString(`{"text_legibility": 0-5, "overlap_free": 0-5, "visual_hierarchy": 0-5, "spacing_balance": 0-5, "layout_logic": 0-5, "shape_appropriateness": 0-5, "completeness": 0-5, "overall_score": 0-5, "issues": [{"severity": "severe|moderate|minor", "category": "...", "description": "...", "suggested_fix": "..."}]}`)
	return b.String()
}

// refinePrompt asks for a regenerated SVG addressing concrete defects.
func refinePrompt(svg string, analysis *diagram.Analysis, fixes, preserve []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Regenerate this %s diagram titled %q, fixing the issues below.\n\n", analysis.DiagramType, analysis.Title)

	b.WriteString("Fix, in priority order:\n")
	for _, f := range fixes {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	b.WriteString("\nPreserve what already works:\n")
	for _, p := range preserve {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	b.WriteString("\nCurrent SVG:\n")
	b.WriteString(svg)
	b.WriteString("\n\nRespond with the complete regenerated SVG document.")
	return b.String()
}
