package preflight

import (
	"path/filepath"
	"testing"

	"directplay/internal/testsupport"
)

func TestRunAllPass(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StubBinaries(t, "ffmpeg", "ffprobe")

	result := Run(cfg)
	if !result.Ok() {
		t.Fatalf("expected all checks to pass, failures: %+v", result.Failures())
	}
	if len(result.Checks) != 5 {
		t.Fatalf("expected 5 checks, got %d", len(result.Checks))
	}
}

func TestRunMissingBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StubBinaries(t)

	result := Run(cfg)
	if result.Ok() {
		t.Fatal("expected binary checks to fail")
	}
	failures := result.Failures()
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", failures)
	}
}

func TestRunMissingInputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.InputDir = filepath.Join(t.TempDir(), "absent")
	testsupport.StubBinaries(t, "ffmpeg", "ffprobe")

	result := Run(cfg)
	if result.Ok() {
		t.Fatal("expected input directory check to fail")
	}
	if failures := result.Failures(); len(failures) != 1 || failures[0].Name != "input directory readable" {
		t.Fatalf("unexpected failures %+v", failures)
	}
}
