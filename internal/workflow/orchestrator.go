package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"directplay/internal/config"
	"directplay/internal/encoding"
	"directplay/internal/fileutil"
	"directplay/internal/logging"
	"directplay/internal/media/compat"
	"directplay/internal/media/ffprobe"
	"directplay/internal/queue"
	"directplay/internal/services"
)

// Prober inspects a media file and returns its stream metadata.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (ffprobe.Result, error)

func (f ProberFunc) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return f(ctx, path)
}

// CommandRunner executes one ffmpeg invocation to completion.
type CommandRunner interface {
	Run(ctx context.Context, args []string, monitor *encoding.Monitor) error
}

// ProgressFunc receives latched percentage updates for the item in flight.
type ProgressFunc func(item *queue.Item, percent int)

// Orchestrator drives a single file through probe, classification, planning,
// execution, and verification, persisting state transitions to the queue.
type Orchestrator struct {
	cfg      *config.Config
	store    *queue.Store
	caps     encoding.Capabilities
	prober   Prober
	runner   CommandRunner
	logger   *slog.Logger
	progress ProgressFunc
}

// NewOrchestrator wires an orchestrator. store may be nil, in which case
// transitions are not persisted. progress may be nil.
func NewOrchestrator(
	cfg *config.Config,
	store *queue.Store,
	caps encoding.Capabilities,
	prober Prober,
	runner CommandRunner,
	logger *slog.Logger,
	progress ProgressFunc,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		caps:     caps,
		prober:   prober,
		runner:   runner,
		logger:   logger,
		progress: progress,
	}
}

// Process converts one queue item. The item is mutated in place and
// persisted at every status transition. A context cancellation propagates
// out after partial artifacts have been removed.
func (o *Orchestrator) Process(ctx context.Context, item *queue.Item) error {
	ctx = services.WithItemID(ctx, item.ID)
	if item.RequestID != "" {
		ctx = services.WithRequestID(ctx, item.RequestID)
	}
	logger := logging.WithContext(ctx, o.logger)
	start := time.Now()
	defer func() {
		item.ElapsedSeconds = time.Since(start).Seconds()
		o.persist(ctx, item)
	}()

	result, verdict, err := o.probeAndClassify(ctx, item, logger)
	if err != nil {
		return o.fail(ctx, item, logger, err)
	}

	o.setStatus(ctx, item, queue.StatusPlanning)
	plan := encoding.BuildPlan(verdict, o.caps)
	item.Strategy = string(plan.Strategy)
	item.Diagnostic = plan.Reason

	if plan.Strategy == encoding.StrategySkip {
		item.SetSkipped("already compatible")
		logger.Info("skipping compatible file", logging.String("source", item.SourcePath))
		return nil
	}

	outputPath := encoding.OutputPath(o.cfg.Paths.OutputDir, item.SourcePath)
	item.OutputPath = outputPath
	if !o.cfg.Workflow.OverwriteExisting {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			item.SetSkipped("output already exists")
			logger.Info("output exists, skipping", logging.String("output", outputPath))
			return nil
		}
	}

	duration := result.DurationSeconds()
	tempPath := encoding.SoftwareTempPath(outputPath)
	cleanup := func() {
		removeIfPresent(outputPath, logger)
		removeIfPresent(tempPath, logger)
	}

	if plan.Strategy == encoding.StrategyRemux {
		done, remuxErr := o.tryRemux(ctx, item, logger, duration, outputPath, cleanup)
		if remuxErr != nil {
			return remuxErr
		}
		if done {
			return o.finish(ctx, item, logger, "remuxed to mp4")
		}
		// Remux produced a non-compliant or broken file; fall through to a
		// full encode with whatever encoder is available.
		plan = encoding.BuildPlan(incompatibleForEncode(verdict), o.caps)
		plan.CopyAudio = verdict.AudioOK
		item.Strategy = string(plan.Strategy)
	}

	if err := o.encodeWithRetry(ctx, item, logger, plan, duration, outputPath, tempPath, cleanup); err != nil {
		return err
	}
	return o.finish(ctx, item, logger, describeSuccess(item))
}

func (o *Orchestrator) probeAndClassify(ctx context.Context, item *queue.Item, logger *slog.Logger) (ffprobe.Result, compat.Verdict, error) {
	o.setStatus(ctx, item, queue.StatusProbing)
	result, err := o.prober.Inspect(ctx, item.SourcePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ffprobe.Result{}, compat.Verdict{}, ctxErr
		}
		return ffprobe.Result{}, compat.Verdict{}, services.Wrap(services.ErrProbe, "probe", "ffprobe", "inspect source file", err)
	}
	item.ProbeJSON = string(result.RawJSON())

	verdict := compat.Classify(result, o.target())
	if len(verdict.Issues) > 0 {
		logger.Debug("compatibility issues",
			logging.String("source", item.SourcePath),
			logging.Int("issue_count", len(verdict.Issues)),
		)
	}
	if hasCategory(verdict, compat.CategoryNoVideoStream) {
		return result, verdict, services.Wrap(services.ErrTerminal, "classify", "compat", "file contains no video stream", nil)
	}
	return result, verdict, nil
}

// tryRemux runs a stream-copy remux and verifies the artifact. It returns
// done=true on verified success; a false return with nil error means the
// caller should fall back to encoding.
func (o *Orchestrator) tryRemux(
	ctx context.Context,
	item *queue.Item,
	logger *slog.Logger,
	duration float64,
	outputPath string,
	cleanup func(),
) (bool, error) {
	o.setStatus(ctx, item, queue.StatusEncoding)
	args := encoding.BuildRemuxArgs(item.SourcePath, outputPath)
	if err := o.runAttempt(ctx, item, args, duration); err != nil {
		cleanup()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		logger.Warn("remux failed, falling back to encode", logging.Error(err))
		return false, nil
	}

	o.setStatus(ctx, item, queue.StatusVerifying)
	if err := o.verify(ctx, outputPath); err != nil {
		cleanup()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		logger.Warn("remuxed file failed verification, falling back to encode", logging.Error(err))
		return false, nil
	}
	return true, nil
}

// encodeWithRetry performs the first encode and, when needed, exactly one
// forced-software retry through a temp artifact. A failed retry is terminal.
func (o *Orchestrator) encodeWithRetry(
	ctx context.Context,
	item *queue.Item,
	logger *slog.Logger,
	plan encoding.Plan,
	duration float64,
	outputPath string,
	tempPath string,
	cleanup func(),
) error {
	opts := o.commandOptions()

	o.setStatus(ctx, item, queue.StatusEncoding)
	args := encoding.BuildEncodeArgs(plan, opts, item.SourcePath, outputPath)
	firstErr := o.runAttempt(ctx, item, args, duration)
	if firstErr == nil {
		o.setStatus(ctx, item, queue.StatusVerifying)
		firstErr = o.verify(ctx, outputPath)
		if firstErr == nil {
			return nil
		}
	}
	cleanup()
	if errors.Is(firstErr, context.Canceled) || errors.Is(firstErr, context.DeadlineExceeded) {
		return firstErr
	}
	if plan.Strategy != encoding.StrategyHardware || !services.Retryable(firstErr) {
		return o.fail(ctx, item, logger, services.Wrap(services.ErrTerminal, "encode", "ffmpeg", "encode failed with no retry tier left", firstErr))
	}
	logger.Warn("encode attempt failed, retrying with software encoder",
		logging.String("encoder", plan.Encoder),
		logging.Error(firstErr),
	)

	item.Retried = true
	retryPlan := plan.ForceSoftware()
	item.Strategy = string(retryPlan.Strategy)
	o.setStatus(ctx, item, queue.StatusEncoding)
	item.ProgressPercent = 0

	args = encoding.BuildEncodeArgs(retryPlan, opts, item.SourcePath, tempPath)
	if err := o.runAttempt(ctx, item, args, duration); err != nil {
		cleanup()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return o.fail(ctx, item, logger, services.Wrap(services.ErrTerminal, "encode", "ffmpeg", "software retry failed", err))
	}

	o.setStatus(ctx, item, queue.StatusVerifying)
	if err := o.verify(ctx, tempPath); err != nil {
		cleanup()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return o.fail(ctx, item, logger, services.Wrap(services.ErrTerminal, "verify", "compat", "software retry produced non-compliant output", err))
	}

	removeIfPresent(outputPath, logger)
	if err := fileutil.MoveFile(tempPath, outputPath); err != nil {
		cleanup()
		return o.fail(ctx, item, logger, services.Wrap(services.ErrTerminal, "finalize", "rename", "promote retry artifact", err))
	}
	return nil
}

func (o *Orchestrator) runAttempt(ctx context.Context, item *queue.Item, args []string, duration float64) error {
	monitor := encoding.NewMonitor(duration, func(percent int) {
		item.SetProgress(float64(percent))
		if o.progress != nil {
			o.progress(item, percent)
		}
		o.persist(ctx, item)
	})
	return o.runner.Run(ctx, args, monitor)
}

// verify re-probes the artifact and classifies it against the same target
// profile; an artifact that fails classification is treated as a failure
// even though ffmpeg exited cleanly.
func (o *Orchestrator) verify(ctx context.Context, path string) error {
	result, err := o.prober.Inspect(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrVerification, "verify", "ffprobe", "inspect output artifact", err)
	}
	verdict := compat.Classify(result, o.target())
	if !verdict.Compatible {
		return services.Wrap(services.ErrVerification, "verify", "compat", "artifact is not compliant: "+summarize(verdict), nil)
	}
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, item *queue.Item, logger *slog.Logger, message string) error {
	item.SetCompleted(message)
	logger.Info("conversion complete",
		logging.String("source", item.SourcePath),
		logging.String("output", item.OutputPath),
		logging.String("strategy", item.Strategy),
	)

	if o.cfg.Workflow.DeleteOriginals {
		if err := os.Remove(item.SourcePath); err != nil {
			logger.Warn("could not delete original", logging.Error(err))
		}
	}
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, item *queue.Item, logger *slog.Logger, err error) error {
	details := services.Details(err)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = err.Error()
	}
	item.SetFailed(message)
	logger.Error("conversion failed",
		logging.String("source", item.SourcePath),
		logging.String("strategy", item.Strategy),
		logging.Error(err),
	)
	return err
}

func (o *Orchestrator) setStatus(ctx context.Context, item *queue.Item, status queue.Status) {
	item.Status = status
	o.persist(ctx, item)
}

func (o *Orchestrator) persist(ctx context.Context, item *queue.Item) {
	if o.store == nil {
		return
	}
	if err := o.store.Update(context.WithoutCancel(ctx), item); err != nil {
		o.logger.Debug("queue update failed", logging.Error(err))
	}
}

func (o *Orchestrator) target() compat.Target {
	profile := o.cfg.Profile
	return compat.Target{
		Containers:        profile.Containers,
		VideoCodec:        profile.VideoCodec,
		PixelFormat:       profile.PixelFmt,
		Profiles:          profile.Profiles,
		MaxLevel:          profile.MaxLevel,
		MaxWidth:          profile.MaxWidth,
		MaxHeight:         profile.MaxHeight,
		AudioCodec:        profile.AudioCodec,
		TolerateSubtitles: profile.TolerateSubtitles,
	}
}

func (o *Orchestrator) commandOptions() encoding.CommandOptions {
	encoder := o.cfg.Encoder
	profile := o.cfg.Profile
	target := "high"
	if len(profile.Profiles) > 0 {
		target = profile.Profiles[len(profile.Profiles)-1]
	}
	return encoding.CommandOptions{
		CRF:           encoder.CRF,
		HWQuality:     encoder.HWQuality,
		HWMaxRate:     encoder.HWMaxRate,
		HWBufSize:     encoder.HWBufSize,
		SWPreset:      encoder.SWPreset,
		HWPreset:      encoder.HWPreset,
		AudioBitrate:  encoder.AudioBitrate,
		AudioChannels: encoder.AudioChannels,
		MaxWidth:      profile.MaxWidth,
		MaxHeight:     profile.MaxHeight,
		MaxLevel:      profile.MaxLevel,
		Profile:       target,
	}
}

func hasCategory(verdict compat.Verdict, category compat.Category) bool {
	for _, issue := range verdict.Issues {
		if issue.Category == category {
			return true
		}
	}
	return false
}

func summarize(verdict compat.Verdict) string {
	parts := make([]string, 0, len(verdict.Issues))
	for _, issue := range verdict.Issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}

// incompatibleForEncode converts a remux-sufficient verdict into one that
// forces the encode branch of the planner after a remux has failed.
func incompatibleForEncode(verdict compat.Verdict) compat.Verdict {
	verdict.VideoOK = false
	verdict.Compatible = false
	return verdict
}

func removeIfPresent(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("could not remove artifact", logging.String("path", path), logging.Error(err))
	}
}

func describeSuccess(item *queue.Item) string {
	if item.Retried {
		return "software encoded after retry"
	}
	return "encoded"
}
