// Package diagram defines the data model for the diagram generation pipeline.
//
// Every type in this package is scoped to a single generation request: the
// pipeline creates fresh values per call and discards them at the end. There
// is no cross-request caching or shared mutable state here; results are
// constructed once and handed read-only to the next stage.
package diagram

import "strings"

// Type classifies the kind of diagram the analyzer recommends.
type Type string

// Supported diagram types.
const (
	TypeFlowchart      Type = "flowchart"
	TypeConceptMap     Type = "concept_map"
	TypeProcessDiagram Type = "process_diagram"
	TypeHierarchy      Type = "hierarchy"
	TypeComparison     Type = "comparison"
	TypeTimeline       Type = "timeline"
	TypeCycle          Type = "cycle"
)

// Types lists all supported diagram types.
var Types = []Type{
	TypeFlowchart,
	TypeConceptMap,
	TypeProcessDiagram,
	TypeHierarchy,
	TypeComparison,
	TypeTimeline,
	TypeCycle,
}

// Valid reports whether t is one of the supported diagram types.
func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// ParseType normalizes a free-form type string to a Type.
// Unknown values fall back to TypeConceptMap, the most general layout.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return TypeConceptMap
}

// Analysis is the immutable result of content analysis. It is produced once
// per request and read-only afterward.
type Analysis struct {
	// ShouldGenerate indicates whether a diagram is warranted for the content.
	ShouldGenerate bool `json:"should_generate"`

	// DiagramType is the recommended diagram kind.
	DiagramType Type `json:"diagram_type"`

	// Title is a short diagram title (3-8 words).
	Title string `json:"title"`

	// KeyElements are the 1-10 concepts the diagram should show, in order.
	KeyElements []string `json:"key_elements"`

	// Relationships describe how the key elements connect, in order.
	Relationships []string `json:"relationships"`

	// Rationale is the analyzer's free-text justification.
	Rationale string `json:"rationale"`
}

// MaxKeyElements caps how many key elements an analysis may carry.
const MaxKeyElements = 10

// Clamp enforces the analysis field bounds: at most MaxKeyElements key
// elements and a valid diagram type. It returns the receiver for chaining.
func (a *Analysis) Clamp() *Analysis {
	if len(a.KeyElements) > MaxKeyElements {
		a.KeyElements = a.KeyElements[:MaxKeyElements]
	}
	if !a.DiagramType.Valid() {
		a.DiagramType = TypeConceptMap
	}
	return a
}

// BoundingBox is an axis-aligned rectangle in SVG user-space units.
// Boxes are derived per check, never persisted.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Expand returns a copy of the box grown by margin on every side.
func (b BoundingBox) Expand(margin float64) BoundingBox {
	return BoundingBox{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// Intersects reports whether two boxes overlap on both axes.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}

// OverlapPair names two text labels whose boxes intersect.
// Labels are truncated for reporting.
type OverlapPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// OverlapCheckResult reports text-on-text collisions found in an SVG.
// One instance is produced per defect check and is immutable afterward.
type OverlapCheckResult struct {
	// HasOverlaps is true when at least one pair of labels collides.
	HasOverlaps bool `json:"has_overlaps"`

	// OverlapPairs lists colliding label pairs in document order.
	OverlapPairs []OverlapPair `json:"overlap_pairs,omitempty"`

	// Suggestion is an optional human-readable summary, also used to carry
	// parse diagnostics when the SVG was malformed.
	Suggestion string `json:"suggestion,omitempty"`
}

// BoundsViolation names one element that exceeds the canvas.
type BoundsViolation struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// BoundsViolationResult reports elements that extend past the canvas.
type BoundsViolationResult struct {
	HasViolations bool              `json:"has_violations"`
	Violations    []BoundsViolation `json:"violations,omitempty"`
	Suggestion    string            `json:"suggestion,omitempty"`
}

// ObscuredTextResult reports text drawn underneath later opaque shapes.
type ObscuredTextResult struct {
	HasObscured bool     `json:"has_obscured"`
	Findings    []string `json:"findings,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Candidate is one independent generation attempt. Candidates never
// reference one another; each exclusively owns its rendered bytes.
type Candidate struct {
	// ID is the 1-based index of the original request slot. IDs stay stable
	// for the caller even though generation is concurrent.
	ID int

	// SVG is the normalized SVG document text.
	SVG string

	// PNG is the raster render of SVG.
	PNG []byte

	// OverlapCheck is the defect report computed at generation time.
	OverlapCheck OverlapCheckResult
}
