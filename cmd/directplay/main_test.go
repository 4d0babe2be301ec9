package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	help := out.String()
	for _, name := range []string{"convert", "check", "status", "queue", "config"} {
		if !strings.Contains(help, name) {
			t.Fatalf("help output missing %q:\n%s", name, help)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out.String(), target) {
		t.Fatalf("expected target path in output, got %q", out.String())
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	first := newRootCommand()
	first.SetOut(&bytes.Buffer{})
	first.SetArgs([]string{"config", "init", "--path", target})
	if err := first.Execute(); err != nil {
		t.Fatalf("first init: %v", err)
	}

	second := newRootCommand()
	second.SetOut(&bytes.Buffer{})
	second.SetErr(&bytes.Buffer{})
	second.SetArgs([]string{"config", "init", "--path", target})
	if err := second.Execute(); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/videos/the_big_movie.mkv", "The Big Movie"},
		{"/videos/clip-01.sample.mp4", "Clip 01 Sample"},
		{"", "Unknown File"},
	}
	for _, tc := range cases {
		if got := displayTitle(tc.path); got != tc.want {
			t.Fatalf("displayTitle(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestStatusNamesListsAllStatuses(t *testing.T) {
	names := statusNames()
	for _, want := range []string{"pending", "probing", "planning", "encoding", "verifying", "completed", "skipped", "failed"} {
		if !strings.Contains(names, want) {
			t.Fatalf("status list missing %q: %s", want, names)
		}
	}
}

func TestRenderTable(t *testing.T) {
	output := renderTable(
		[]string{"Outcome", "Files"},
		[][]string{{"Skipped", "2"}, {"Failed"}},
		1,
	)
	for _, want := range []string{"Outcome", "Files", "Skipped", "2", "Failed"} {
		if !strings.Contains(output, want) {
			t.Fatalf("table missing %q:\n%s", want, output)
		}
	}
	// Short rows pad out to the header width instead of rendering nil cells.
	if strings.Contains(output, "nil") {
		t.Fatalf("missing cell rendered literally:\n%s", output)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("headerless table should render nothing")
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncateLabel("a very long label indeed", 10); got != "a very ..." {
		t.Fatalf("unexpected %q", got)
	}
}
