package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "class not found")
		if err.Error() != "[NOT_FOUND] class not found" {
			t.Errorf("expected [NOT_FOUND] class not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("short read")
		err := Wrap(original, CodeMalformedClass, "cannot parse class")
		expected := "[MALFORMED_CLASS] cannot parse class: short read"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeMalformedDescriptor, "bad descriptor")
		if !IsCode(err, CodeMalformedDescriptor) {
			t.Error("expected IsCode to return true for CodeMalformedDescriptor")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeResolutionFailure, "missing"))
		if !IsCode(err, CodeResolutionFailure) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if CodeOf(err) != CodeResolutionFailure {
			t.Errorf("unexpected code %q", CodeOf(err))
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := AddContext(New(CodeMalformedDescriptor, "bad"), CtxMethod, "run")
		err = AddContext(err, CtxClass, "a/B")
		expected := "[MALFORMED_DESCRIPTOR] bad (class=a/B method=run)"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContextOnPlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxCheck, "Duplication")
		if !IsCode(err, CodeInternal) {
			t.Error("plain errors should be wrapped as internal")
		}
	})
}
