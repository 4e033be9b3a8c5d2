package diagram

import "testing"

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NumCandidates != 3 {
		t.Errorf("NumCandidates = %d, want 3", cfg.NumCandidates)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("canvas = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
	if cfg.QualityThreshold != 3.5 {
		t.Errorf("QualityThreshold = %g, want 3.5", cfg.QualityThreshold)
	}
	if cfg.MaxRefinementIterations != 3 {
		t.Errorf("MaxRefinementIterations = %d, want 3", cfg.MaxRefinementIterations)
	}
}

func TestSetDefaultsPreservesCallerValues(t *testing.T) {
	cfg := Config{NumCandidates: 5, QualityThreshold: 4.2}
	cfg.SetDefaults()

	if cfg.NumCandidates != 5 {
		t.Errorf("NumCandidates = %d, want caller's 5", cfg.NumCandidates)
	}
	if cfg.QualityThreshold != 4.2 {
		t.Errorf("QualityThreshold = %g, want caller's 4.2", cfg.QualityThreshold)
	}
	if cfg.Width != DefaultWidth {
		t.Errorf("unset Width should default, got %d", cfg.Width)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults are valid", DefaultConfig(), false},
		{"negative candidates", Config{Width: 800, Height: 600, NumCandidates: -1, QualityThreshold: 3, MaxRefinementIterations: 1}, true},
		{"threshold above scale", Config{Width: 800, Height: 600, NumCandidates: 1, QualityThreshold: 6, MaxRefinementIterations: 1}, true},
		{"zero iterations", Config{Width: 800, Height: 600, NumCandidates: 1, QualityThreshold: 3, MaxRefinementIterations: -2}, true},
		{"negative canvas", Config{Width: -10, Height: 600, NumCandidates: 1, QualityThreshold: 3, MaxRefinementIterations: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	if got := ParseType("Flowchart"); got != TypeFlowchart {
		t.Errorf("ParseType(Flowchart) = %q", got)
	}
	if got := ParseType("mindmap"); got != TypeConceptMap {
		t.Errorf("unknown type should fall back to concept_map, got %q", got)
	}
}

func TestAnalysisClamp(t *testing.T) {
	a := &Analysis{DiagramType: "nonsense"}
	for i := 0; i < 15; i++ {
		a.KeyElements = append(a.KeyElements, "elem")
	}
	a.Clamp()

	if len(a.KeyElements) != MaxKeyElements {
		t.Errorf("KeyElements len = %d, want %d", len(a.KeyElements), MaxKeyElements)
	}
	if a.DiagramType != TypeConceptMap {
		t.Errorf("invalid type should clamp to concept_map, got %q", a.DiagramType)
	}
}
