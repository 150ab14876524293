package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeInvalidIdentifier, "empty fqn")
		if err.Error() != "[INVALID_IDENTIFIER] empty fqn" {
			t.Errorf("expected [INVALID_IDENTIFIER] empty fqn, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeParseError, "parse failure")
		expected := "[PARSE_ERROR] parse failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeUnsupportedFormat, "unknown version")
		if !IsCode(err, CodeUnsupportedFormat) {
			t.Error("expected IsCode to return true for CodeUnsupportedFormat")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeParseError, "bad file"), CtxPath, "pkg/a.py")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxPath] != "pkg/a.py" {
			t.Errorf("expected context path pkg/a.py, got %v", de.Context[CtxPath])
		}
	})

	t.Run("ChainedContext", func(t *testing.T) {
		// Constructors return the concrete type, so context chains directly
		// and the result still travels as a plain error.
		var err error = New(CodeValidationError, "frozen registry").
			WithContext(CtxFQN, "pkg.a.foo").
			WithContext(CtxOperation, "register")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected chained error to keep its code")
		}
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxFQN] != "pkg.a.foo" || de.Context[CtxOperation] != "register" {
			t.Errorf("expected both context keys, got %v", de.Context)
		}

		var wrapped error = Wrap(errors.New("io failure"), CodeParseError, "read").
			WithContext(CtxPath, "pkg/b.py")
		if !IsCode(wrapped, CodeParseError) {
			t.Error("expected wrapped chained error to keep its code")
		}
	})
}
