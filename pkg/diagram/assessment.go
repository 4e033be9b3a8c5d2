package diagram

import "math"

// Severity ranks a quality issue.
type Severity string

// Issue severities, from most to least urgent.
const (
	SeveritySevere   Severity = "severe"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Rank orders severities for sorting: severe < moderate < minor.
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeveritySevere:
		return 0
	case SeverityModerate:
		return 1
	case SeverityMinor:
		return 2
	default:
		return 3
	}
}

// QualityIssue is one concrete defect reported by the assessing model.
type QualityIssue struct {
	Severity     Severity `json:"severity"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
}

// Criterion names one of the seven scored quality dimensions.
type Criterion string

// The seven quality criteria, in synthesis priority order.
const (
	CriterionTextLegibility  Criterion = "text_legibility"
	CriterionOverlapFree     Criterion = "overlap_free"
	CriterionVisualHierarchy Criterion = "visual_hierarchy"
	CriterionSpacingBalance  Criterion = "spacing_balance"
	CriterionLayoutLogic     Criterion = "layout_logic"
	CriterionShapeFit        Criterion = "shape_appropriateness"
	CriterionCompleteness    Criterion = "completeness"
)

// Criteria lists all seven criteria in priority order.
var Criteria = []Criterion{
	CriterionTextLegibility,
	CriterionOverlapFree,
	CriterionVisualHierarchy,
	CriterionSpacingBalance,
	CriterionLayoutLogic,
	CriterionShapeFit,
	CriterionCompleteness,
}

// Scores holds the seven per-criterion scores, each in [0,5].
type Scores struct {
	TextLegibility  float64 `json:"text_legibility"`
	OverlapFree     float64 `json:"overlap_free"`
	VisualHierarchy float64 `json:"visual_hierarchy"`
	SpacingBalance  float64 `json:"spacing_balance"`
	LayoutLogic     float64 `json:"layout_logic"`
	ShapeFit        float64 `json:"shape_appropriateness"`
	Completeness    float64 `json:"completeness"`
}

// Get returns the score for a criterion.
func (s Scores) Get(c Criterion) float64 {
	switch c {
	case CriterionTextLegibility:
		return s.TextLegibility
	case CriterionOverlapFree:
		return s.OverlapFree
	case CriterionVisualHierarchy:
		return s.VisualHierarchy
	case CriterionSpacingBalance:
		return s.SpacingBalance
	case CriterionLayoutLogic:
		return s.LayoutLogic
	case CriterionShapeFit:
		return s.ShapeFit
	case CriterionCompleteness:
		return s.Completeness
	}
	return 0
}

// Mean returns the arithmetic mean of the seven scores.
func (s Scores) Mean() float64 {
	sum := s.TextLegibility + s.OverlapFree + s.VisualHierarchy +
		s.SpacingBalance + s.LayoutLogic + s.ShapeFit + s.Completeness
	return sum / 7
}

// QualityAssessment is an immutable snapshot of one quality evaluation.
// Build it with NewQualityAssessment so the derived fields are always
// consistent with the sub-scores; the assessing model's own overall score
// is advisory only.
type QualityAssessment struct {
	Scores Scores `json:"scores"`

	// OverallScore is the arithmetic mean of the seven sub-scores. The
	// model's self-reported value is kept only when it agrees with the
	// recomputed mean to within 0.5.
	OverallScore float64 `json:"overall_score"`

	// Issues are the model's structured defect reports.
	Issues []QualityIssue `json:"issues,omitempty"`

	// MeetsThreshold is always derived as OverallScore >= threshold,
	// never taken from the model.
	MeetsThreshold bool `json:"meets_threshold"`
}

// maxModelScoreDeviation is how far the model's self-reported overall score
// may drift from the recomputed mean before it is replaced.
const maxModelScoreDeviation = 0.5

// NewQualityAssessment constructs an assessment from raw model output.
// modelOverall is the model's self-reported overall score; it is replaced
// by the recomputed mean when it deviates by more than 0.5. MeetsThreshold
// is derived from the corrected score and the configured threshold.
func NewQualityAssessment(scores Scores, modelOverall float64, issues []QualityIssue, threshold float64) QualityAssessment {
	overall := modelOverall
	if mean := scores.Mean(); math.Abs(modelOverall-mean) > maxModelScoreDeviation {
		overall = mean
	}
	return QualityAssessment{
		Scores:         scores,
		OverallScore:   overall,
		Issues:         issues,
		MeetsThreshold: overall >= threshold,
	}
}
