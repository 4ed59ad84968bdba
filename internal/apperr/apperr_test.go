package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"notFound", NotFound("video %s not found", "v1"), ErrNotFound, true},
		{"notFoundVsConflict", NotFound("video %s not found", "v1"), ErrConflict, false},
		{"wrapped", fmt.Errorf("outer: %w", InvalidArgument("bad sortBy")), ErrInvalidArgument, true},
		{"conflict", Conflict(nil, "already a member"), ErrConflict, true},
		{"permission", PermissionDenied("not owner"), ErrPermissionDenied, true},
		{"internal", Internal(errors.New("boom"), "list videos"), ErrInternal, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errors.Is(tc.err, tc.target); got != tc.want {
				t.Fatalf("errors.Is = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "count subscribers")

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable through errors.Is")
	}
	if err.Error() != "count subscribers: connection reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Fatalf("expected plain errors to be internal, got %q", got)
	}
	if got := KindOf(fmt.Errorf("wrap: %w", NotFound("x"))); got != KindNotFound {
		t.Fatalf("expected not_found, got %q", got)
	}
}

func TestRequireID(t *testing.T) {
	const canonical = "3f8a3a7e-5d1c-4a55-9c67-6f1c3f3c2b10"
	cases := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", canonical, false},
		{"uppercase", "3F8A3A7E-5D1C-4A55-9C67-6F1C3F3C2B10", false},
		{"urn", "urn:uuid:" + canonical, false},
		{"braced", "{" + canonical + "}", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"malformed", "not-an-id", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RequireID("videoId", tc.id)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != canonical {
				t.Fatalf("expected canonical id %s, got %s", canonical, got)
			}
		})
	}
}
