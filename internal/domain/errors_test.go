package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestMalformedRowError_Unwrap(t *testing.T) {
	err := NewMalformedRow(2, "EditorOwsUser", "expected account|name")

	if !errors.Is(err, ErrMalformedRow) {
		t.Fatal("expected errors.Is(err, ErrMalformedRow)")
	}

	var mre *MalformedRowError
	if !errors.As(err, &mre) {
		t.Fatal("expected *MalformedRowError")
	}
	if mre.Index != 2 || mre.Field != "EditorOwsUser" {
		t.Errorf("unexpected fields: %+v", mre)
	}

	want := `malformed row: row 2 field "EditorOwsUser": expected account|name`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMalformedRowError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("map row: %w", NewMalformedRow(0, "Title", "missing"))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatal("wrapped error should match ErrMalformedRow")
	}
	if errors.Is(err, ErrSearchUnavailable) {
		t.Fatal("wrapped error should not match ErrSearchUnavailable")
	}
}

func TestBackendFailure(t *testing.T) {
	down := BackendFailure("trending search", errors.New("connection refused"))
	if !errors.Is(down, ErrSearchUnavailable) {
		t.Errorf("expected ErrSearchUnavailable, got %v", down)
	}

	refused := BackendFailure("list site members", fmt.Errorf("%w: host not allowed", ErrInvalidArgument))
	if !errors.Is(refused, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", refused)
	}
	if errors.Is(refused, ErrSearchUnavailable) {
		t.Errorf("refused call reported as backend outage: %v", refused)
	}
}
