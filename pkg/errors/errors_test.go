package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "num_candidates must be >= 1, got %d", 0)
	want := "INVALID_CONFIG: num_candidates must be >= 1, got 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeModelUnavailable, cause, "calling text model")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got := err.Error(); got != "MODEL_UNAVAILABLE: calling text model: connection refused" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeNoCandidates, "all SVG generation attempts failed")

	if !Is(err, ErrCodeNoCandidates) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeRenderFailed) {
		t.Error("Is should not match a different code")
	}

	// Wrapped in a plain fmt error, the code should still be found.
	wrapped := fmt.Errorf("pipeline: %w", err)
	if !Is(wrapped, ErrCodeNoCandidates) {
		t.Error("Is should unwrap plain wrappers")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "model call timed out")); got != ErrCodeTimeout {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeTimeout)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidConfig, "bad"), 400},
		{New(ErrCodeTimeout, "slow"), 504},
		{New(ErrCodeModelUnavailable, "down"), 503},
		{New(ErrCodeInternal, "boom"), 500},
		{fmt.Errorf("plain"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
