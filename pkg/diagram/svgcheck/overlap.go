package svgcheck

import (
	"fmt"
	"math"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

// CheckTextOverlaps reports pairs of text labels whose estimated boxes
// intersect beyond the allowed margin. All i<j pairs are compared once.
//
// Intentional stacked multi-line labels (near-identical x, vertical gap
// inside the suppression window) are not reported.
//
// Malformed SVG never fails the check: the result carries the diagnostic
// in Suggestion with HasOverlaps=false.
func (c *Checker) CheckTextOverlaps(svg string) diagram.OverlapCheckResult {
	doc, err := parse(svg)
	if err != nil {
		return diagram.OverlapCheckResult{Suggestion: parseFailure(err)}
	}

	var pairs []diagram.OverlapPair
	for i := 0; i < len(doc.texts); i++ {
		for j := i + 1; j < len(doc.texts); j++ {
			a, b := doc.texts[i], doc.texts[j]
			if !c.box(a).Expand(c.Margin).Intersects(c.box(b).Expand(c.Margin)) {
				continue
			}
			if c.isStackedLabel(a, b) {
				continue
			}
			pairs = append(pairs, diagram.OverlapPair{
				A: truncateLabel(a.content),
				B: truncateLabel(b.content),
			})
		}
	}

	res := diagram.OverlapCheckResult{
		HasOverlaps:  len(pairs) > 0,
		OverlapPairs: pairs,
	}
	if res.HasOverlaps {
		res.Suggestion = fmt.Sprintf("%d text label pair(s) overlap; increase spacing or shorten labels", len(pairs))
	}
	return res
}

// isStackedLabel reports whether two overlapping labels look like one
// intentional multi-line label rather than a collision.
func (c *Checker) isStackedLabel(a, b textElement) bool {
	dx := math.Abs(a.x - b.x)
	dy := math.Abs(a.y - b.y)
	return dx < c.StackXTolerance && dy >= c.StackMinDY && dy <= c.StackMaxDY
}
