package llm

import "strings"

// OutputKind tags a ParsedOutput.
type OutputKind int

// Parsed output kinds.
const (
	// OutputText is plain free text with no recognized embedded document.
	OutputText OutputKind = iota

	// OutputSVG is a complete SVG document extracted from the response.
	OutputSVG

	// OutputJSON is a JSON object extracted from the response.
	OutputJSON

	// OutputFailure means no usable content could be extracted.
	OutputFailure
)

// ParsedOutput is the typed view of a raw model response. Model responses
// arrive as loosely structured text; extraction is a fallible parse step
// with an explicit failure mode rather than a silent pass-through of
// malformed content.
type ParsedOutput struct {
	Kind   OutputKind
	Text   string // the extracted document, or the cleaned raw text
	Reason string // failure description when Kind == OutputFailure
}

// StripFences removes a surrounding Markdown code fence, if present.
// Handles ```svg, ```xml, ```json and bare ``` fences; input without a
// fence is returned trimmed but otherwise untouched.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` plus an optional language tag).
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}

	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// ExtractSVG pulls a complete SVG document out of a raw model response.
//
// The response is fence-stripped first. If the remainder does not already
// start with the SVG root tag, the first "<svg" and last "</svg>" are
// located and the span between them is taken. Returns false when no valid
// SVG span exists; callers must treat that as this response's definitive
// failure, not something to retry here.
func ExtractSVG(raw string) (string, bool) {
	s := StripFences(raw)

	if !strings.HasPrefix(s, "<svg") {
		start := strings.Index(s, "<svg")
		end := strings.LastIndex(s, "</svg>")
		if start < 0 || end < 0 || end < start {
			return "", false
		}
		s = s[start : end+len("</svg>")]
	}

	if !strings.HasPrefix(s, "<svg") || !strings.HasSuffix(strings.TrimSpace(s), "</svg>") {
		return "", false
	}
	return s, true
}

// ExtractJSON pulls a JSON object out of a raw model response by slicing
// from the first '{' to the last '}'. The result is not validated here;
// callers unmarshal it and handle their own failure path.
func ExtractJSON(raw string) (string, bool) {
	s := StripFences(raw)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// Parse classifies a raw model response into a tagged ParsedOutput,
// preferring SVG, then JSON, then plain text.
func Parse(raw string) ParsedOutput {
	if svg, ok := ExtractSVG(raw); ok {
		return ParsedOutput{Kind: OutputSVG, Text: svg}
	}
	if js, ok := ExtractJSON(raw); ok {
		return ParsedOutput{Kind: OutputJSON, Text: js}
	}
	if s := StripFences(raw); s != "" {
		return ParsedOutput{Kind: OutputText, Text: s}
	}
	return ParsedOutput{Kind: OutputFailure, Reason: "empty model response"}
}
