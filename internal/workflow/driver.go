package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"directplay/internal/config"
	"directplay/internal/encoding"
	"directplay/internal/logging"
	"directplay/internal/queue"
	"directplay/internal/services"
)

// Tally counts per-file outcomes for one batch run. Converted is further
// broken down by the strategy that produced the artifact.
type Tally struct {
	Converted int
	Remuxed   int
	Hardware  int
	Software  int
	Skipped   int
	Failed    int
}

// Total returns the number of files the run touched.
func (t Tally) Total() int {
	return t.Converted + t.Skipped + t.Failed
}

// Driver walks the input directory and feeds each video file through the
// orchestrator sequentially. Per-file failures are tallied and the run
// continues; only cancellation stops the batch early.
type Driver struct {
	cfg    *config.Config
	store  *queue.Store
	orch   *Orchestrator
	logger *slog.Logger
}

// NewDriver wires a batch driver.
func NewDriver(cfg *config.Config, store *queue.Store, orch *Orchestrator, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{cfg: cfg, store: store, orch: orch, logger: logger}
}

// Run converts every recognized video file in the input directory in sorted
// order. The returned tally covers files attempted before any cancellation.
func (d *Driver) Run(ctx context.Context) (Tally, error) {
	var tally Tally

	files, err := ScanInputDir(d.cfg.Paths.InputDir, d.cfg.Workflow.Extensions)
	if err != nil {
		return tally, err
	}
	if len(files) == 0 {
		d.logger.Info("no video files found", logging.String("input_dir", d.cfg.Paths.InputDir))
		return tally, nil
	}

	d.logger.Info("starting batch run",
		logging.Int("file_count", len(files)),
		logging.String("input_dir", d.cfg.Paths.InputDir),
		logging.String("output_dir", d.cfg.Paths.OutputDir),
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		item, err := d.enqueue(ctx, file)
		if err != nil {
			return tally, err
		}

		processErr := d.orch.Process(ctx, item)
		if processErr != nil && (errors.Is(processErr, context.Canceled) || errors.Is(processErr, context.DeadlineExceeded)) {
			return tally, processErr
		}

		switch item.Status {
		case queue.StatusCompleted:
			tally.Converted++
			switch item.Strategy {
			case string(encoding.StrategyRemux):
				tally.Remuxed++
			case string(encoding.StrategyHardware):
				tally.Hardware++
			case string(encoding.StrategySoftware):
				tally.Software++
			}
		case queue.StatusSkipped:
			tally.Skipped++
		default:
			tally.Failed++
		}
	}

	d.logger.Info("batch run finished",
		logging.Int("converted", tally.Converted),
		logging.Int("skipped", tally.Skipped),
		logging.Int("failed", tally.Failed),
	)
	return tally, nil
}

func (d *Driver) enqueue(ctx context.Context, path string) (*queue.Item, error) {
	requestID := uuid.NewString()
	if d.store == nil {
		return &queue.Item{SourcePath: path, RequestID: requestID, Status: queue.StatusPending}, nil
	}
	item, err := d.store.NewFile(ctx, path, requestID)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "enqueue", "queue", fmt.Sprintf("enqueue %s", filepath.Base(path)), err)
	}
	return item, nil
}

// ScanInputDir returns the sorted list of files directly under dir whose
// extension matches the configured set. Subdirectories are not descended.
func ScanInputDir(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
