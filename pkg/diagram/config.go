package diagram

import "github.com/matzehuels/diagramsmith/pkg/errors"

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600

	// DefaultDPI is the default raster resolution.
	DefaultDPI = 96

	// DefaultNumCandidates is the default candidate fan-out.
	DefaultNumCandidates = 3

	// DefaultQualityThreshold is the minimum mean score (0-5 scale) to
	// accept a diagram without further refinement.
	DefaultQualityThreshold = 3.5

	// DefaultMaxRefinementIterations bounds the quality refinement loop.
	DefaultMaxRefinementIterations = 3

	// DefaultBackground is the default canvas background color.
	DefaultBackground = "white"

	// DefaultFontFamily is the default label font.
	DefaultFontFamily = "Helvetica, Arial, sans-serif"

	// DefaultPrimaryColor is the default accent color for shapes.
	DefaultPrimaryColor = "#2563eb"
)

// Config is the immutable per-request configuration. It is supplied by the
// caller and never mutated by the pipeline.
type Config struct {
	// Canvas dimensions in pixels.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// DPI controls raster render resolution.
	DPI int `json:"dpi,omitempty"`

	// BackgroundColor fills the canvas behind the diagram.
	BackgroundColor string `json:"background_color,omitempty"`

	// FontFamily is the requested label font.
	FontFamily string `json:"font_family,omitempty"`

	// PrimaryColor is the requested accent color.
	PrimaryColor string `json:"primary_color,omitempty"`

	// NumCandidates is how many independent SVG candidates to generate (>= 1).
	NumCandidates int `json:"num_candidates,omitempty"`

	// EnableRefinementLoop turns on the bounded quality refinement loop.
	EnableRefinementLoop bool `json:"enable_refinement_loop,omitempty"`

	// QualityThreshold is the mean score (0-5) required to stop refining.
	QualityThreshold float64 `json:"quality_threshold,omitempty"`

	// MaxRefinementIterations bounds the refinement loop (>= 1).
	MaxRefinementIterations int `json:"max_refinement_iterations,omitempty"`
}

// DefaultConfig returns a Config populated with all defaults.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in zero-valued fields. It never overrides a value the
// caller set explicitly.
func (c *Config) SetDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.DPI == 0 {
		c.DPI = DefaultDPI
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = DefaultBackground
	}
	if c.FontFamily == "" {
		c.FontFamily = DefaultFontFamily
	}
	if c.PrimaryColor == "" {
		c.PrimaryColor = DefaultPrimaryColor
	}
	if c.NumCandidates == 0 {
		c.NumCandidates = DefaultNumCandidates
	}
	if c.QualityThreshold == 0 {
		c.QualityThreshold = DefaultQualityThreshold
	}
	if c.MaxRefinementIterations == 0 {
		c.MaxRefinementIterations = DefaultMaxRefinementIterations
	}
}

// Validate checks field bounds after defaulting.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.NumCandidates < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "num_candidates must be >= 1, got %d", c.NumCandidates)
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 5 {
		return errors.New(errors.ErrCodeInvalidConfig, "quality_threshold must be in [0,5], got %g", c.QualityThreshold)
	}
	if c.MaxRefinementIterations < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_refinement_iterations must be >= 1, got %d", c.MaxRefinementIterations)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults then validates.
func (c *Config) ValidateAndSetDefaults() error {
	c.SetDefaults()
	return c.Validate()
}
