package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramsmith/pkg/diagram/svgcheck"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/render"
)

// Shared test fixtures.

const testAnalysisJSON = `{
	"should_generate": true,
	"diagram_type": "flowchart",
	"title": "Water Cycle Overview",
	"key_elements": ["Evaporation", "Condensation", "Precipitation"],
	"relationships": ["Evaporation -> Condensation", "Condensation -> Precipitation"],
	"rationale": "sequential process with clear stages"
}`

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600">` +
	`<text x="100" y="100">Evaporation</text>` +
	`<text x="400" y="100">Condensation</text>` +
	`</svg>`

const testSVGImproved = `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600">` +
	`<text x="100" y="120">Evaporation</text>` +
	`<text x="400" y="120">Condensation</text>` +
	`</svg>`

// testSVGOverlapping has two labels at the same position.
const testSVGOverlapping = `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600">` +
	`<text x="100" y="100">First Label</text>` +
	`<text x="100" y="100">Second Label</text>` +
	`</svg>`

func fenced(svg string) string {
	return "```svg\n" + svg + "\n```"
}

func testDeps(text llm.TextModel, vision llm.VisionModel, r render.Renderer) Deps {
	return Deps{
		Text:     text,
		Vision:   vision,
		Renderer: r,
		Checker:  svgcheck.New(),
		Logger:   log.New(io.Discard),
	}
}
