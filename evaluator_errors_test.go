package env

import (
	"errors"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "flag && missing", "ball", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "flag && missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Object != "ball" {
		t.Fatalf("expected object metadata, got %q", evalErr.Object)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "ball", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Object != "ball" {
		t.Fatalf("object should be filled, got %q", existing.Object)
	}
}

func TestWrapEvaluatorErrorPreservesPrefixedErrors(t *testing.T) {
	if wrapEvaluationError("expr", "rule", "ball", nil) != nil {
		t.Fatalf("nil errors must pass through")
	}

	prefixed := errors.New("env: already labelled")
	if got := wrapEvaluatorError("expr", prefixed); got != prefixed {
		t.Fatalf("prefixed errors must not be double-wrapped, got %v", got)
	}

	plain := errors.New("raw failure")
	wrapped := wrapEvaluatorError("cel", plain)
	if !errors.Is(wrapped, plain) {
		t.Fatalf("expected wrapped error to unwrap to the original")
	}
	if wrapped == plain {
		t.Fatalf("expected plain errors to gain evaluator context")
	}
}
