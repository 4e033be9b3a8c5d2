package diagram

// Result is the terminal output of one generation request.
//
// Success disambiguates the Error field. Success=true with a non-empty
// Error means "diagram produced but with a known, described defect" (for
// example residual overlaps); callers must treat that as usable output with
// a warning, not as failure. Success=false is reserved for fatal pipeline
// outcomes: analysis failing outright or zero candidates surviving
// generation.
type Result struct {
	// SVG is the final diagram document, nil on failure.
	SVG []byte `json:"svg,omitempty"`

	// PNG is the raster render of SVG, nil when rendering was unavailable.
	PNG []byte `json:"png,omitempty"`

	// Analysis is the content analysis that drove generation.
	Analysis *Analysis `json:"analysis,omitempty"`

	// OverlapCheck is the final defect re-check of the chosen SVG.
	OverlapCheck OverlapCheckResult `json:"overlap_check"`

	// GenerationAttempts counts candidates that survived generation.
	GenerationAttempts int `json:"generation_attempts"`

	// SelectedCandidate is the id of the chosen candidate, 0 when none.
	SelectedCandidate int `json:"selected_candidate,omitempty"`

	// SelectionRationale is the selector's free-text reasoning.
	SelectionRationale string `json:"selection_rationale,omitempty"`

	// ImprovementsMade describes what changed between generation and the
	// final SVG (selection edits, overlap deltas).
	ImprovementsMade []string `json:"improvements_made,omitempty"`

	// Success reports whether a diagram was produced.
	Success bool `json:"success"`

	// Error carries the fatal failure description when Success is false,
	// or a non-fatal defect warning when Success is true.
	Error string `json:"error,omitempty"`

	// RefinementIterations counts completed refinement assessments.
	RefinementIterations int `json:"refinement_iterations,omitempty"`

	// FinalQualityScore is the last accepted overall score, if assessed.
	FinalQualityScore *float64 `json:"final_quality_score,omitempty"`

	// QualityHistory lists per-iteration overall scores, oldest first.
	QualityHistory []float64 `json:"quality_history,omitempty"`
}
