package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

// ConceptMapSVG builds a deterministic concept-map SVG straight from an
// analysis, without any model call. It backs the --no-model CLI path and
// serves as the generation source of last resort when no text model is
// configured: layout quality is Graphviz's, not a model's, but the output
// always parses and never overlaps.
func ConceptMapSVG(ctx context.Context, analysis *diagram.Analysis, cfg diagram.Config) (string, error) {
	dot := analysisToDOT(analysis, cfg)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return "", fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return string(normalizeRoot(buf.Bytes(), cfg)), nil
}

// analysisToDOT emits a DOT digraph for the analysis. Relationships of the
// form "A -> B" become edges between matching key elements; anything else
// falls back to chaining the elements in order so the graph is never empty.
func analysisToDOT(analysis *diagram.Analysis, cfg diagram.Config) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", cfg.BackgroundColor)
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=%q, fontname=%q, margin=\"0.2,0.1\"];\n",
		cfg.PrimaryColor, firstFont(cfg.FontFamily))
	if analysis.Title != "" {
		fmt.Fprintf(&buf, "  label=%q; labelloc=t; fontsize=18;\n", analysis.Title)
	}
	buf.WriteString("\n")

	for _, el := range analysis.KeyElements {
		fmt.Fprintf(&buf, "  %q;\n", el)
	}
	buf.WriteString("\n")

	edges := 0
	for _, rel := range analysis.Relationships {
		from, to, ok := splitRelationship(rel, analysis.KeyElements)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
		edges++
	}
	if edges == 0 {
		for i := 0; i+1 < len(analysis.KeyElements); i++ {
			fmt.Fprintf(&buf, "  %q -> %q;\n", analysis.KeyElements[i], analysis.KeyElements[i+1])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// splitRelationship matches "A -> B" (optionally with a trailing ": label")
// against the known key elements.
func splitRelationship(rel string, elements []string) (from, to string, ok bool) {
	if idx := strings.Index(rel, ":"); idx >= 0 {
		rel = rel[:idx]
	}
	parts := strings.SplitN(rel, "->", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	from = strings.TrimSpace(parts[0])
	to = strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return "", "", false
	}
	// Only connect known elements; unknown names would add stray nodes.
	if !contains(elements, from) || !contains(elements, to) {
		return "", "", false
	}
	return from, to, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// firstFont picks the first name from a CSS font-family list.
func firstFont(family string) string {
	if idx := strings.IndexByte(family, ','); idx >= 0 {
		family = family[:idx]
	}
	return strings.TrimSpace(family)
}

var rootTagRe = regexp.MustCompile(`<svg[^>]*>`)

// normalizeRoot rewrites the Graphviz root tag to the configured canvas so
// downstream bounds checks see the caller's dimensions.
func normalizeRoot(svg []byte, cfg diagram.Config) []byte {
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	loc := rootTagRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	var out bytes.Buffer
	out.Write(svg[:loc[0]])
	out.WriteString(root)
	out.Write(svg[loc[1]:])
	return out.Bytes()
}
