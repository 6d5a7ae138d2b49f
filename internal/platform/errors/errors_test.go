package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStorageUnavailable, "insert station", cause)
	if got := err.Error(); got != "insert station: disk full" {
		t.Fatalf("Error() = %q", got)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if got := Wrap(CodeUnknown, "", cause).Error(); got != "disk full" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", WithMetadata(CodeNotFound, "station missing", map[string]string{"id": "x"}))
	if !stderrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("expected code match through wrapping")
	}
	if stderrors.Is(err, New(CodeDuplicateKey, "")) {
		t.Fatal("unexpected match for a different code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", New(CodeFilterInvalid, "bad"))); got != CodeFilterInvalid {
		t.Fatalf("CodeOf = %s", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain = %s", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := map[Code]int{
		CodeInvalidFormat:          ExitInvalidInput,
		CodeReviewInvalidFecha:     ExitInvalidInput,
		CodeNotFound:               ExitNotFound,
		CodeDuplicateKey:           ExitConflict,
		CodeAuthPermissionDenied:   ExitDenied,
		CodeCascadeInconsistent:    ExitStorage,
		CodeUnknown:                ExitInternal,
		Code("SOMETHING_ELSE"):     ExitInternal,
		CodeAuthInvalidCredentials: ExitDenied,
	}
	for code, want := range tests {
		if got := code.ExitCode(); got != want {
			t.Fatalf("%s.ExitCode() = %d, want %d", code, got, want)
		}
	}
}

func TestLocalizedMessage(t *testing.T) {
	err := WrapWithMetadata(CodeAuthPermissionDenied, "deny", map[string]string{"user": "ver", "permission": "delete"}, nil)
	if got := LocalizedMessage(err, "es-PE"); got != "ver no tiene permiso para delete" {
		t.Fatalf("es-PE = %q", got)
	}
	if got := LocalizedMessage(stderrors.New("boom"), "en-US"); got != "An unexpected error occurred" {
		t.Fatalf("unknown = %q", got)
	}
	if got := LocalizedMessage(nil, "en-US"); got != "" {
		t.Fatalf("nil = %q", got)
	}
}
