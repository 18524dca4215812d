package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrTransport, "itunes", "search", "request failed", base)

	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport in chain, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected base error in chain, got %v", err)
	}
	want := "transport error: itunes: search: request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrParse, "deezer", "decode", "unexpected payload", nil)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse in chain, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("nil marker should default to ErrTransport, got %v", err)
	}
	if err.Error() != "transport error: service failure: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrCancelled, true},
		{"wrapped sentinel", fmt.Errorf("item 3: %w", ErrCancelled), true},
		{"context canceled", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, true},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancelled(tt.err); got != tt.want {
				t.Errorf("IsCancelled(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
