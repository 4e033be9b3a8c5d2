package llm

import (
	"strings"
	"testing"
)

const minimalSVG = `<svg xmlns="http://www.w3.org/2000/svg"><text x="1" y="2">hi</text></svg>`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "plain text", "plain text"},
		{"bare fence", "```\ncontent\n```", "content"},
		{"svg fence", "```svg\n<svg/>\n```", "<svg/>"},
		{"xml fence", "```xml\n<svg/>\n```", "<svg/>"},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```\nx\n```\n ", "x"},
		{"single line fence", "```abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractSVGDirect(t *testing.T) {
	got, ok := ExtractSVG(minimalSVG)
	if !ok || got != minimalSVG {
		t.Errorf("direct SVG should pass through, got %q ok=%v", got, ok)
	}
}

func TestExtractSVGFenced(t *testing.T) {
	got, ok := ExtractSVG("```svg\n" + minimalSVG + "\n```")
	if !ok || got != minimalSVG {
		t.Errorf("fenced SVG should be unwrapped, got %q ok=%v", got, ok)
	}
}

func TestExtractSVGEmbeddedInProse(t *testing.T) {
	raw := "Here is your diagram:\n\n" + minimalSVG + "\n\nLet me know if you want changes."
	got, ok := ExtractSVG(raw)
	if !ok {
		t.Fatal("embedded SVG should be sliced out")
	}
	if !strings.HasPrefix(got, "<svg") || !strings.HasSuffix(got, "</svg>") {
		t.Errorf("sliced span is not a complete document: %q", got)
	}
}

func TestExtractSVGFailures(t *testing.T) {
	for _, raw := range []string{
		"",
		"no markup here",
		"<svg unterminated",
		"</svg> before <svg",
	} {
		if _, ok := ExtractSVG(raw); ok {
			t.Errorf("ExtractSVG(%q) should fail", raw)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	raw := "Sure! Here's the analysis:\n```json\n{\"should_generate\": true}\n```"
	got, ok := ExtractJSON(raw)
	if !ok || got != `{"should_generate": true}` {
		t.Errorf("ExtractJSON = %q ok=%v", got, ok)
	}

	if _, ok := ExtractJSON("nothing structured"); ok {
		t.Error("ExtractJSON should fail without braces")
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want OutputKind
	}{
		{"svg wins", "text " + minimalSVG, OutputSVG},
		{"json", `{"a": 1}`, OutputJSON},
		{"plain text", "just words", OutputText},
		{"empty", "   ", OutputFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.in); got.Kind != tt.want {
				t.Errorf("Parse(%q).Kind = %v, want %v", tt.in, got.Kind, tt.want)
			}
		})
	}
}
