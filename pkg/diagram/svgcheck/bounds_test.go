package svgcheck

import (
	"strings"
	"testing"
)

func TestBoundsViolationBeyondRightEdge(t *testing.T) {
	c := New()
	// ~34 chars * 14 * 0.6 ≈ 285 units wide starting at x=700 on an
	// 800-unit canvas.
	res := c.CheckBoundsViolations(svgDoc(
		`<text x="700" y="100">a very long label running off canvas</text>`))

	if !res.HasViolations {
		t.Fatal("label extending past the right edge must be reported")
	}
	if !strings.Contains(res.Violations[0].Detail, "right edge") {
		t.Errorf("detail should name the edge, got %q", res.Violations[0].Detail)
	}
}

func TestBoundsViolationShape(t *testing.T) {
	c := New()
	res := c.CheckBoundsViolations(svgDoc(
		`<rect x="750" y="550" width="200" height="100" fill="red"/>`))
	if !res.HasViolations {
		t.Fatal("oversized rect must be reported")
	}
	if res.Violations[0].Label != "rect" {
		t.Errorf("shape violations are labeled by kind, got %q", res.Violations[0].Label)
	}
}

func TestBoundsWithinCanvasClean(t *testing.T) {
	c := New()
	res := c.CheckBoundsViolations(svgDoc(
		`<text x="100" y="100">fits fine</text><circle cx="400" cy="300" r="50" fill="blue"/>`))
	if res.HasViolations {
		t.Errorf("in-bounds elements reported: %+v", res.Violations)
	}
}

func TestBoundsViewBoxFallback(t *testing.T) {
	c := New()
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 300">` +
		`<text x="390" y="100">overflowing label</text></svg>`
	res := c.CheckBoundsViolations(svg)
	if !res.HasViolations {
		t.Error("canvas size should fall back to the viewBox")
	}
}

func TestBoundsNoCanvasDeclared(t *testing.T) {
	c := New()
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><text x="99999" y="99999">far away</text></svg>`
	res := c.CheckBoundsViolations(svg)
	if res.HasViolations {
		t.Error("without a declared canvas nothing can violate it")
	}
}

func TestObscuredTextByLaterShape(t *testing.T) {
	c := New()
	res := c.CheckObscuredText(svgDoc(
		`<text x="100" y="100">hidden label</text>` +
			`<rect x="0" y="50" width="300" height="100" fill="#333"/>`))
	if !res.HasObscured {
		t.Fatal("a later opaque rect over the text must be reported")
	}
	if !strings.Contains(res.Findings[0], "hidden label") {
		t.Errorf("finding should name the label, got %q", res.Findings[0])
	}
}

func TestTextAboveShapeNotObscured(t *testing.T) {
	c := New()
	// Shape first, text second: text paints on top, perfectly normal.
	res := c.CheckObscuredText(svgDoc(
		`<rect x="0" y="50" width="300" height="100" fill="#333"/>` +
			`<text x="100" y="100">node label</text>`))
	if res.HasObscured {
		t.Errorf("text painted after the shape is visible: %+v", res.Findings)
	}
}

func TestTransparentShapeDoesNotObscure(t *testing.T) {
	c := New()
	res := c.CheckObscuredText(svgDoc(
		`<text x="100" y="100">outlined label</text>` +
			`<rect x="0" y="50" width="300" height="100" fill="none"/>`))
	if res.HasObscured {
		t.Error("fill=none shapes do not cover text")
	}
}
