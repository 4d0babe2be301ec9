package deps

import (
	"testing"

	"directplay/internal/config"
	"directplay/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	testsupport.StubBinaries(t, "ffmpeg")

	statuses := CheckBinaries([]Requirement{
		{Name: "FFmpeg", Command: "ffmpeg"},
		{Name: "FFprobe", Command: "ffprobe"},
		{Name: "Blank", Command: "  "},
	})

	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("ffmpeg stub should be found: %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatal("ffprobe should be missing")
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("blank command mishandled: %+v", statuses[2])
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Available: false},
		{Name: "Extra", Available: false, Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "FFprobe" {
		t.Fatalf("unexpected missing set %v", missing)
	}
}

func TestForUsesConfiguredBinaries(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"

	reqs := For(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg override lost: %q", reqs[0].Command)
	}
	if reqs[1].Command != "ffprobe" {
		t.Fatalf("default ffprobe expected, got %q", reqs[1].Command)
	}
}
