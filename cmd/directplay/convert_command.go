package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"directplay/internal/config"
	"directplay/internal/encoding"
	"directplay/internal/logging"
	"directplay/internal/media/ffprobe"
	"directplay/internal/preflight"
	"directplay/internal/queue"
	"directplay/internal/workflow"
)

func newConvertCommand(cmdCtx *commandContext) *cobra.Command {
	var disableHardware bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert every video in the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if disableHardware {
				cfg.Encoder.HardwareEnabled = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runConvert(ctx, cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&disableHardware, "no-hardware", false, "Force the software encoder even when hardware is available")
	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	if result := preflight.Run(cfg); !result.Ok() {
		for _, failure := range result.Failures() {
			fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", failure.Name, failure.Detail)
		}
		return errors.New("preflight checks failed")
	}

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "directplay.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return errors.New("another directplay run is already in progress")
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "directplay.log")},
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	caps := encoding.DetectHardware(ctx, cfg.FFmpegBinary(), cfg.Encoder.HardwareEnabled)
	fmt.Fprintf(out, "Encoder: %s\n", caps.Label)

	prober := workflow.ProberFunc(func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
	})
	runner := encoding.NewRunner(cfg.FFmpegBinary(), time.Duration(cfg.TerminationGrace())*time.Second, logger)

	var (
		reporter     *progressReporter
		progressFunc workflow.ProgressFunc
	)
	if isInteractive(out) {
		reporter = newProgressReporter(out)
		reporter.start()
		defer reporter.stop()
		progressFunc = reporter.update
	}

	orch := workflow.NewOrchestrator(cfg, store, caps, prober, runner, logger, progressFunc)
	driver := workflow.NewDriver(cfg, store, orch, logger)

	tally, runErr := driver.Run(ctx)
	if reporter != nil {
		reporter.stop()
	}
	if runErr != nil && errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(out, "Run interrupted; partial artifacts were removed.")
	}

	printTally(cmd, tally)
	if runErr != nil {
		return runErr
	}
	if tally.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to convert", tally.Failed)
	}
	return nil
}

func printTally(cmd *cobra.Command, tally workflow.Tally) {
	rows := [][]string{
		{"Remuxed", strconv.Itoa(tally.Remuxed)},
		{"Hardware encoded", strconv.Itoa(tally.Hardware)},
		{"Software encoded", strconv.Itoa(tally.Software)},
		{"Skipped", strconv.Itoa(tally.Skipped)},
		{"Failed", strconv.Itoa(tally.Failed)},
		{"Total", strconv.Itoa(tally.Total())},
	}
	output := renderTable([]string{"Outcome", "Files"}, rows, 1)
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(output, "\n"))
}
