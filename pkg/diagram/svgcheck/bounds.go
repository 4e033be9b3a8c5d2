package svgcheck

import (
	"fmt"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

// CheckBoundsViolations reports text and shape elements whose estimated
// boxes extend past the declared canvas. When the SVG declares no canvas
// extent (neither width/height nor a viewBox), nothing can violate it and
// the result is clean.
func (c *Checker) CheckBoundsViolations(svg string) diagram.BoundsViolationResult {
	doc, err := parse(svg)
	if err != nil {
		return diagram.BoundsViolationResult{Suggestion: parseFailure(err)}
	}
	if doc.width <= 0 || doc.height <= 0 {
		return diagram.BoundsViolationResult{}
	}

	var violations []diagram.BoundsViolation
	for _, t := range doc.texts {
		if v, ok := c.violation(c.box(t), doc.width, doc.height); ok {
			violations = append(violations, diagram.BoundsViolation{
				Label:  truncateLabel(t.content),
				Detail: v,
			})
		}
	}
	for _, s := range doc.shapes {
		if v, ok := c.violation(s.box, doc.width, doc.height); ok {
			violations = append(violations, diagram.BoundsViolation{
				Label:  s.kind,
				Detail: v,
			})
		}
	}

	res := diagram.BoundsViolationResult{
		HasViolations: len(violations) > 0,
		Violations:    violations,
	}
	if res.HasViolations {
		res.Suggestion = fmt.Sprintf("%d element(s) exceed the %gx%g canvas; shrink or reposition them", len(violations), doc.width, doc.height)
	}
	return res
}

// violation describes how box exceeds the canvas, if it does.
func (c *Checker) violation(box diagram.BoundingBox, w, h float64) (string, bool) {
	switch {
	case box.X < 0:
		return fmt.Sprintf("extends %.0f units past the left edge", -box.X), true
	case box.Y < 0:
		return fmt.Sprintf("extends %.0f units past the top edge", -box.Y), true
	case box.X+box.Width > w:
		return fmt.Sprintf("extends %.0f units past the right edge", box.X+box.Width-w), true
	case box.Y+box.Height > h:
		return fmt.Sprintf("extends %.0f units past the bottom edge", box.Y+box.Height-h), true
	}
	return "", false
}

// CheckObscuredText reports text elements that a later opaque shape is
// drawn on top of. SVG paints in document order, so a filled shape that
// appears after a text element and covers its center will hide it.
func (c *Checker) CheckObscuredText(svg string) diagram.ObscuredTextResult {
	doc, err := parse(svg)
	if err != nil {
		return diagram.ObscuredTextResult{Suggestion: parseFailure(err)}
	}

	var findings []string
	for _, t := range doc.texts {
		box := c.box(t)
		cx := box.X + box.Width/2
		cy := box.Y + box.Height/2
		for _, s := range doc.shapes {
			if s.order < t.order || !opaque(s.fill) {
				continue
			}
			if cx >= s.box.X && cx <= s.box.X+s.box.Width &&
				cy >= s.box.Y && cy <= s.box.Y+s.box.Height {
				findings = append(findings, fmt.Sprintf("%q is covered by a later %s", truncateLabel(t.content), s.kind))
				break
			}
		}
	}

	res := diagram.ObscuredTextResult{
		HasObscured: len(findings) > 0,
		Findings:    findings,
	}
	if res.HasObscured {
		res.Suggestion = "move obscured text above its covering shape or reorder the elements"
	}
	return res
}

// opaque reports whether a fill value paints over what is underneath.
func opaque(fill string) bool {
	return fill != "" && fill != "none" && fill != "transparent"
}
