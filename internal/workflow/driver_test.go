package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"directplay/internal/config"
	"directplay/internal/encoding"
	"directplay/internal/media/ffprobe"
	"directplay/internal/queue"
	"directplay/internal/testsupport"
)

func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, testsupport.WriteVideoFixture(t, dir, name))
	}
	return paths
}

func TestScanInputDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.mkv", "a.mp4", "notes.txt", "c.WEBM")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := ScanInputDir(dir, []string{".mp4", ".mkv", ".webm"})
	if err != nil {
		t.Fatalf("ScanInputDir: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.mkv"),
		filepath.Join(dir, "c.WEBM"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i, path := range want {
		if files[i] != path {
			t.Fatalf("files[%d] = %s, want %s", i, files[i], path)
		}
	}
}

func TestScanInputDirMissing(t *testing.T) {
	if _, err := ScanInputDir(filepath.Join(t.TempDir(), "absent"), []string{".mp4"}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestDriverRunTallies(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.WorkDir = t.TempDir()

	sources := writeFiles(t, cfg.Paths.InputDir, "compat.mp4", "broken.mkv", "convert.mkv")

	prober := &fakeProber{results: map[string]ffprobe.Result{}, errs: map[string]error{}}
	prober.results[sources[0]] = parsePayload(t, compatiblePayload)
	prober.results[sources[2]] = parsePayload(t, encodePayload)
	prober.results[sources[1]] = parsePayload(t, noVideoPayload)
	// Encoded artifact and its retry artifact both verify clean.
	outputPath := encoding.OutputPath(cfg.Paths.OutputDir, sources[2])
	prober.results[outputPath] = parsePayload(t, compatiblePayload)

	runner := &fakeRunner{}
	orch := NewOrchestrator(&cfg, nil, nvencCaps(), prober, runner, nil, nil)
	driver := NewDriver(&cfg, nil, orch, nil)

	tally, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tally.Converted != 1 || tally.Skipped != 1 || tally.Failed != 1 {
		t.Fatalf("unexpected tally %+v", tally)
	}
	if tally.Hardware != 1 || tally.Remuxed != 0 || tally.Software != 0 {
		t.Fatalf("unexpected strategy breakdown %+v", tally)
	}
	if tally.Total() != 3 {
		t.Fatalf("expected total 3, got %d", tally.Total())
	}
}

func TestDriverRunEmptyDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.WorkDir = t.TempDir()

	orch := NewOrchestrator(&cfg, nil, nvencCaps(), &fakeProber{}, &fakeRunner{}, nil, nil)
	tally, err := NewDriver(&cfg, nil, orch, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tally.Total() != 0 {
		t.Fatalf("expected empty tally, got %+v", tally)
	}
}

func TestDriverRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.WorkDir = t.TempDir()
	writeFiles(t, cfg.Paths.InputDir, "a.mkv", "b.mkv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := NewOrchestrator(&cfg, nil, nvencCaps(), &fakeProber{}, &fakeRunner{}, nil, nil)
	tally, err := NewDriver(&cfg, nil, orch, nil).Run(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if tally.Total() != 0 {
		t.Fatalf("cancelled run must not tally files, got %+v", tally)
	}
}

func TestDriverPersistsOutcomes(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.WorkDir = t.TempDir()
	sources := writeFiles(t, cfg.Paths.InputDir, "compat.mp4")

	store := testsupport.NewStore(t)

	prober := &fakeProber{results: map[string]ffprobe.Result{
		sources[0]: parsePayload(t, compatiblePayload),
	}}
	orch := NewOrchestrator(&cfg, store, nvencCaps(), prober, &fakeRunner{}, nil, nil)

	tally, err := NewDriver(&cfg, store, orch, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tally.Skipped != 1 {
		t.Fatalf("unexpected tally %+v", tally)
	}

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 persisted item, got %d", len(items))
	}
	if items[0].Status != queue.StatusSkipped {
		t.Fatalf("expected skipped, got %s", items[0].Status)
	}
	if items[0].RequestID == "" {
		t.Fatal("request id must be assigned")
	}
}
