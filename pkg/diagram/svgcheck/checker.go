// Package svgcheck detects geometric defects in SVG diagrams.
//
// The checks are pure functions over SVG text: no I/O, no shared state, safe
// for concurrent use. Bounding boxes are estimated, not measured: glyph
// metrics are approximated from character counts and font size, which is
// accurate enough to flag colliding or out-of-bounds labels without pulling
// in a font stack.
//
// All checks degrade instead of failing: malformed SVG produces a result
// whose Suggestion describes the parse problem, never an error that aborts
// the caller's pipeline.
package svgcheck

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

// Box estimation constants. Glyph width and line height are rough averages
// for proportional fonts at the sizes diagrams use.
const (
	// DefaultMargin is the allowed gap between labels before two boxes
	// count as overlapping.
	DefaultMargin = 5.0

	// DefaultFontSize is assumed when a text element carries no font-size.
	DefaultFontSize = 14.0

	// glyphWidthRatio estimates average glyph width as a fraction of font size.
	glyphWidthRatio = 0.6

	// lineHeightRatio estimates line height as a fraction of font size.
	lineHeightRatio = 1.2

	// baselineRatio shifts the box up from the baseline y coordinate.
	baselineRatio = 0.8

	// labelMaxLen truncates labels in defect reports.
	labelMaxLen = 30
)

// Stacked-label suppression defaults. Two overlapping labels with
// near-identical x and a vertical gap inside this window are treated as one
// intentional multi-line label, not a defect. The window is a heuristic and
// can produce false negatives on very dense layouts.
const (
	DefaultStackXTolerance = 15.0
	DefaultStackMinDY      = 10.0
	DefaultStackMaxDY      = 30.0
)

// Checker holds the tunable constants for defect detection.
// The zero value is not useful; construct with New.
type Checker struct {
	// Margin expands every box before the intersection test.
	Margin float64

	// FontSize is assumed for text elements without an explicit size.
	FontSize float64

	// StackXTolerance, StackMinDY and StackMaxDY define the stacked-label
	// suppression window.
	StackXTolerance float64
	StackMinDY      float64
	StackMaxDY      float64
}

// New returns a Checker with the default constants.
func New() *Checker {
	return &Checker{
		Margin:          DefaultMargin,
		FontSize:        DefaultFontSize,
		StackXTolerance: DefaultStackXTolerance,
		StackMinDY:      DefaultStackMinDY,
		StackMaxDY:      DefaultStackMaxDY,
	}
}

// textElement is one parsed <text> node with its estimated geometry inputs.
type textElement struct {
	x        float64
	y        float64
	fontSize float64
	anchor   string // "start", "middle" or "end"
	content  string // own text plus inline child text, concatenated
	order    int    // document order, used by the obscured-text check
}

// shapeElement is one parsed rect/circle/ellipse with its bounding box.
type shapeElement struct {
	kind  string
	box   diagram.BoundingBox
	fill  string
	order int
}

// document is the parsed geometry view of one SVG.
type document struct {
	width  float64 // canvas width, 0 when undeclared
	height float64
	texts  []textElement
	shapes []shapeElement
}

// parse walks the SVG token stream and collects text and shape geometry.
// It tolerates namespaced and bare element names and unknown entities;
// a hard decode error is returned so callers can degrade.
func parse(svg string) (*document, error) {
	dec := xml.NewDecoder(strings.NewReader(svg))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	doc := &document{}
	order := 0

	// Depth of the <text> element currently being read, -1 when outside.
	textDepth := -1
	depth := 0
	var cur textElement
	var content strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "svg":
				if doc.width == 0 {
					doc.width, doc.height = canvasSize(t.Attr)
				}
			case "text":
				if textDepth < 0 {
					textDepth = depth
					cur = textElement{
						x:        attrFloat(t.Attr, "x", 0),
						y:        attrFloat(t.Attr, "y", 0),
						fontSize: attrFloat(t.Attr, "font-size", 0),
						anchor:   attrString(t.Attr, "text-anchor", "start"),
						order:    order,
					}
					content.Reset()
					order++
				}
			case "rect":
				w := attrFloat(t.Attr, "width", 0)
				h := attrFloat(t.Attr, "height", 0)
				doc.shapes = append(doc.shapes, shapeElement{
					kind: "rect",
					box: diagram.BoundingBox{
						X:      attrFloat(t.Attr, "x", 0),
						Y:      attrFloat(t.Attr, "y", 0),
						Width:  w,
						Height: h,
					},
					fill:  attrString(t.Attr, "fill", ""),
					order: order,
				})
				order++
			case "circle":
				cx := attrFloat(t.Attr, "cx", 0)
				cy := attrFloat(t.Attr, "cy", 0)
				r := attrFloat(t.Attr, "r", 0)
				doc.shapes = append(doc.shapes, shapeElement{
					kind:  "circle",
					box:   diagram.BoundingBox{X: cx - r, Y: cy - r, Width: 2 * r, Height: 2 * r},
					fill:  attrString(t.Attr, "fill", ""),
					order: order,
				})
				order++
			case "ellipse":
				cx := attrFloat(t.Attr, "cx", 0)
				cy := attrFloat(t.Attr, "cy", 0)
				rx := attrFloat(t.Attr, "rx", 0)
				ry := attrFloat(t.Attr, "ry", 0)
				doc.shapes = append(doc.shapes, shapeElement{
					kind:  "ellipse",
					box:   diagram.BoundingBox{X: cx - rx, Y: cy - ry, Width: 2 * rx, Height: 2 * ry},
					fill:  attrString(t.Attr, "fill", ""),
					order: order,
				})
				order++
			}
		case xml.EndElement:
			if textDepth >= 0 && depth == textDepth && t.Name.Local == "text" {
				cur.content = strings.TrimSpace(content.String())
				if cur.content != "" {
					doc.texts = append(doc.texts, cur)
				}
				textDepth = -1
			}
			depth--
		case xml.CharData:
			if textDepth >= 0 {
				content.Write(t)
			}
		}
	}

	return doc, nil
}

// box estimates the axis-aligned bounding box for a text element.
// The SVG y coordinate is the glyph baseline, so the box shifts up.
func (c *Checker) box(t textElement) diagram.BoundingBox {
	size := t.fontSize
	if size <= 0 {
		size = c.FontSize
	}

	w := float64(len([]rune(t.content))) * size * glyphWidthRatio
	h := size * lineHeightRatio

	x := t.x
	switch t.anchor {
	case "middle":
		x -= w / 2
	case "end":
		x -= w
	}

	return diagram.BoundingBox{X: x, Y: t.y - h*baselineRatio, Width: w, Height: h}
}

// truncateLabel shortens a label for defect reports.
func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= labelMaxLen {
		return s
	}
	return string(r[:labelMaxLen])
}

// canvasSize reads the canvas extent from the svg root attributes,
// preferring explicit width/height and falling back to the viewBox.
func canvasSize(attrs []xml.Attr) (w, h float64) {
	w = attrFloat(attrs, "width", 0)
	h = attrFloat(attrs, "height", 0)
	if w > 0 && h > 0 {
		return w, h
	}
	if vb := attrString(attrs, "viewBox", ""); vb != "" {
		parts := strings.Fields(vb)
		if len(parts) == 4 {
			vw, errW := strconv.ParseFloat(parts[2], 64)
			vh, errH := strconv.ParseFloat(parts[3], 64)
			if errW == nil && errH == nil {
				return vw, vh
			}
		}
	}
	return w, h
}

func attrString(attrs []xml.Attr, name, fallback string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return fallback
}

// attrFloat parses a numeric attribute, stripping a trailing unit like "px".
func attrFloat(attrs []xml.Attr, name string, fallback float64) float64 {
	raw := attrString(attrs, name, "")
	if raw == "" {
		return fallback
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// parseFailure builds the degraded suggestion text for unparseable SVG.
func parseFailure(err error) string {
	return fmt.Sprintf("could not parse SVG for geometric checks: %v", err)
}
