package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExecution, "encoding", "run ffmpeg", "encode failed", base)
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("expected execution marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "encoding", "run ffmpeg", "", nil)
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("expected default execution marker, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrExecution, "encoding", "run", "", nil), true},
		{Wrap(ErrVerification, "verify", "classify", "", nil), true},
		{Wrap(ErrProbe, "probe", "inspect", "", nil), false},
		{Wrap(ErrTerminal, "encoding", "sw encode", "", nil), false},
		{Wrap(ErrConfiguration, "config", "load", "", nil), false},
		{fmt.Errorf("process died unexpectedly"), true},
		{nil, false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestDetails(t *testing.T) {
	if Details(nil).Message != "" {
		t.Fatal("expected empty details for nil error")
	}
	err := Wrap(ErrProbe, "probe", "inspect", "unparseable output", nil)
	if Details(err).Message == "" {
		t.Fatal("expected populated details")
	}
}
