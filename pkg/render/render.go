// Package render converts SVG diagrams to raster images.
//
// The [Renderer] interface is the pipeline's only rasterization contract:
// deterministic for identical inputs, and failures are reported through the
// error return so degraded pipelines can fall back gracefully. A render
// failure drops one candidate, it never aborts the request.
//
// The default implementation shells out to rsvg-convert (librsvg), the same
// conversion path used for PNG/PDF export. Install with:
//
//	macOS:  brew install librsvg
//	Linux:  apt install librsvg2-bin
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Renderer rasterizes SVG text to an image.
type Renderer interface {
	// SVGToRaster renders svg to PNG bytes at the given dpi with the given
	// background color. Background may be empty for transparency.
	SVGToRaster(ctx context.Context, svg string, dpi int, background string) ([]byte, error)
}

// RSVG renders through the rsvg-convert binary.
type RSVG struct{}

// NewRSVG returns the librsvg-backed renderer.
func NewRSVG() *RSVG {
	return &RSVG{}
}

// SVGToRaster implements Renderer via rsvg-convert.
func (r *RSVG) SVGToRaster(ctx context.Context, svg string, dpi int, background string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("PNG rendering requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	args := []string{"-f", "png"}
	if dpi > 0 {
		args = append(args, "--dpi-x", fmt.Sprint(dpi), "--dpi-y", fmt.Sprint(dpi))
	}
	if background != "" {
		args = append(args, "-b", background)
	}

	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader([]byte(svg))

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}

// Ensure RSVG implements Renderer.
var _ Renderer = (*RSVG)(nil)
