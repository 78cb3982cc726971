package errors

import (
	"errors"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	tests := []struct {
		name string
		code Code
	}{
		{"missing", CodeInputMissing},
		{"corrupt", CodeInputCorrupt},
		{"algorithmic", CodeAlgorithmicFailure},
		{"invariant", CodeInvariantViolation},
		{"internal", CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "tile %d,%d", 3, 4)
			if !Is(err, tt.code) {
				t.Fatalf("Is(%v, %v) = false", err, tt.code)
			}
			if GetCode(err) != tt.code {
				t.Fatalf("GetCode() = %v, want %v", GetCode(err), tt.code)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeInputMissing, cause, "loading tile 1,2")

	if !errors.Is(err, cause) {
		t.Fatal("Wrap should preserve the cause in the errors.Is chain")
	}
	if got := GetCode(err); got != CodeInputMissing {
		t.Fatalf("GetCode() = %v, want %v", got, CodeInputMissing)
	}
}

func TestFatal(t *testing.T) {
	if !Fatal(New(CodeInvariantViolation, "incompatible coordinate systems")) {
		t.Fatal("invariant violations must be fatal")
	}
	if Fatal(New(CodeInputMissing, "tile not found")) {
		t.Fatal("missing input must not be fatal")
	}
	if Fatal(errors.New("plain error")) {
		t.Fatal("a plain error is not fatal by this policy")
	}
}

func TestGetCodeOnPlainError(t *testing.T) {
	if code := GetCode(errors.New("plain")); code != "" {
		t.Fatalf("GetCode() on a plain error = %q, want empty", code)
	}
}
