package encoding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"directplay/internal/logging"
	"directplay/internal/services"
)

const stderrTailLimit = 4096

// Runner executes ffmpeg invocations in their own process group so that
// cancellation can terminate ffmpeg together with any children it forked.
type Runner struct {
	binary string
	grace  time.Duration
	logger *slog.Logger
}

// NewRunner builds a Runner. grace bounds how long a signalled ffmpeg gets
// to exit cleanly before it is killed outright.
func NewRunner(binary string, grace time.Duration, logger *slog.Logger) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if grace <= 0 {
		grace = 2 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{binary: binary, grace: grace, logger: logger}
}

// Run starts ffmpeg with the given arguments, streams stdout through the
// monitor, and waits for exit. On context cancellation the whole process
// group receives SIGTERM, then SIGKILL after the grace window, and the
// context error is returned so callers can distinguish interruption from
// encode failure.
func (r *Runner) Run(ctx context.Context, args []string, monitor *Monitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(r.binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExecution, "encode", "ffmpeg", "open stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return services.Wrap(services.ErrExecution, "encode", "ffmpeg", "open stderr pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExecution, "encode", "ffmpeg", "start process", err)
	}
	pgid := cmd.Process.Pid

	var wg sync.WaitGroup
	var stderrTail string
	wg.Add(2)
	go func() {
		defer wg.Done()
		if monitor != nil {
			_ = monitor.Consume(stdout)
			return
		}
		drain(stdout)
	}()
	go func() {
		defer wg.Done()
		stderrTail = readTail(stderr, stderrTailLimit)
	}()

	waitCh := make(chan error, 1)
	go func() {
		wg.Wait()
		waitCh <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		r.terminate(pgid)
		<-waitCh
		return ctx.Err()
	case waitErr := <-waitCh:
		if waitErr == nil {
			return nil
		}
		message := fmt.Sprintf("ffmpeg exited: %v", waitErr)
		if tail := strings.TrimSpace(stderrTail); tail != "" {
			message = fmt.Sprintf("%s: %s", message, tail)
		}
		return services.Wrap(services.ErrExecution, "encode", "ffmpeg", message, waitErr)
	}
}

// terminate signals the process group: SIGTERM first, SIGKILL once the
// grace window lapses without a clean exit.
func (r *Runner) terminate(pgid int) {
	if err := unix.Kill(-pgid, unix.SIGTERM); err != nil {
		r.logger.Debug("ffmpeg SIGTERM failed", logging.Error(err))
		return
	}
	deadline := time.After(r.grace)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			if err := unix.Kill(-pgid, unix.SIGKILL); err != nil {
				r.logger.Debug("ffmpeg SIGKILL failed", logging.Error(err))
			}
			return
		case <-ticker.C:
			// Signal 0 probes for group liveness without delivering anything.
			if err := unix.Kill(-pgid, 0); err != nil {
				return
			}
		}
	}
}

func drain(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
	}
}

// readTail keeps the last limit bytes of the stream; ffmpeg's useful error
// text is at the end.
func readTail(r io.Reader, limit int) string {
	var builder strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			builder.Write(buf[:n])
			if builder.Len() > limit*2 {
				trimmed := builder.String()
				builder.Reset()
				builder.WriteString(trimmed[len(trimmed)-limit:])
			}
		}
		if err != nil {
			break
		}
	}
	out := builder.String()
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
