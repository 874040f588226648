package apperror

import (
	"errors"
	"testing"
)

func TestNewAndError(t *testing.T) {
	err := New(KindTimeout, "operation took too long")
	if err.Kind != KindTimeout {
		t.Errorf("expected KindTimeout, got %v", err.Kind)
	}
	if err.Error() != "timeout: operation took too long" {
		t.Errorf("unexpected Error() string: %s", err.Error())
	}
}

func TestNewf(t *testing.T) {
	err := Newf(KindSessionNotFound, "debug session %s not found", "abc123")
	if err.Message != "debug session abc123 not found" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindLSPFailed, cause, "hover request failed")

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the original cause")
	}
}

func TestWithSuggestionsDoesNotMutateTemplate(t *testing.T) {
	base := New(KindDependencyMissing, "pyright is not installed")
	withSug := base.WithSuggestions("install pyright", "add to PATH")

	if len(base.Suggestions) != 0 {
		t.Error("expected base.Suggestions to remain empty")
	}
	if len(withSug.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %d", len(withSug.Suggestions))
	}
}

func TestIs(t *testing.T) {
	err := SessionNotFound("sess-1")
	if !Is(err, KindSessionNotFound) {
		t.Error("expected Is to match KindSessionNotFound")
	}
	if Is(err, KindTimeout) {
		t.Error("expected Is to not match KindTimeout")
	}
	if Is(errors.New("plain error"), KindTimeout) {
		t.Error("expected Is to return false for a non-*Error")
	}
}

func TestAs(t *testing.T) {
	err := InvalidRange("end line before start line")
	ae, ok := As(err)
	if !ok {
		t.Fatal("expected As to succeed")
	}
	if ae.Kind != KindInvalidRange {
		t.Errorf("expected KindInvalidRange, got %v", ae.Kind)
	}

	_, ok = As(errors.New("plain error"))
	if ok {
		t.Error("expected As to fail for a non-*Error")
	}
}

func TestConstructorHelpers(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"DependencyMissing", DependencyMissing("ruff", "install with pip"), KindDependencyMissing},
		{"RuntimeNotResolved", RuntimeNotResolved("python", "/repo"), KindRuntimeNotResolved},
		{"AdapterUnavailable", AdapterUnavailable("go", "delve not found"), KindAdapterUnavailable},
		{"NotOpenOrNotAttached", NotOpenOrNotAttached("buffer /repo/main.go"), KindNotOpenOrNotAttached},
		{"AmbiguousSymbol", AmbiguousSymbol("Run", 3), KindAmbiguousSymbol},
		{"TimeoutErr", TimeoutErr("find_references"), KindTimeout},
		{"NotImplemented", NotImplemented("analyze_dependencies.imported_by"), KindNotImplemented},
		{"ResourceExhausted", ResourceExhausted("debug sessions", 4), KindResourceExhausted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Kind != tc.kind {
				t.Errorf("expected kind %v, got %v", tc.kind, tc.err.Kind)
			}
			if tc.err.Message == "" {
				t.Error("expected a non-empty message")
			}
		})
	}
}

func TestLSPFailedAndDAPFailedWrapCause(t *testing.T) {
	cause := errors.New("rpc: EOF")

	lspErr := LSPFailed(cause, "textDocument/hover")
	if lspErr.Kind != KindLSPFailed {
		t.Errorf("expected KindLSPFailed, got %v", lspErr.Kind)
	}
	if !errors.Is(lspErr, cause) {
		t.Error("expected LSPFailed to wrap cause")
	}

	dapErr := DAPFailed(cause, "setBreakpoints")
	if dapErr.Kind != KindDAPFailed {
		t.Errorf("expected KindDAPFailed, got %v", dapErr.Kind)
	}
	if !errors.Is(dapErr, cause) {
		t.Error("expected DAPFailed to wrap cause")
	}
}
