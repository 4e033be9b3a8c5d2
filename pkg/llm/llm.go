// Package llm abstracts the generative-model capabilities the diagram
// pipeline depends on.
//
// The pipeline treats models as black boxes with a request/response
// contract: a TextModel produces free text (possibly containing an embedded
// SVG or JSON document), a VisionModel additionally accepts images. The
// OpenAI-backed implementation lives in this package too, along with
// scripted stubs for deterministic tests.
package llm

import "context"

// Part is one piece of multimodal content sent to a vision model.
// Exactly one field is set.
type Part struct {
	// Text content, when non-empty.
	Text string

	// Image is raw PNG bytes, base64-encoded on the wire by the provider.
	Image []byte
}

// TextPart builds a text content part.
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart builds an image content part from PNG bytes.
func ImagePart(png []byte) Part { return Part{Image: png} }

// TextModel generates free text from a prompt. Used for content analysis,
// SVG generation and regeneration.
type TextModel interface {
	// Generate sends one prompt pair and returns the model's text response.
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// VisionModel generates text from mixed text-and-image content. Used for
// candidate selection and quality assessment; a single call may carry
// several images.
type VisionModel interface {
	// GenerateVision sends a system prompt plus ordered content parts and
	// returns the model's text response.
	GenerateVision(ctx context.Context, systemPrompt string, parts []Part, maxTokens int) (string, error)
}
