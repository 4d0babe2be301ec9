package main

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"directplay/internal/queue"
)

// progressReporter renders one go-pretty tracker per in-flight file. It is
// only attached when stdout is a terminal.
type progressReporter struct {
	writer progress.Writer

	mu       sync.Mutex
	trackers map[int64]*progress.Tracker
}

func newProgressReporter(out io.Writer) *progressReporter {
	writer := progress.NewWriter()
	writer.SetOutputWriter(out)
	writer.SetTrackerLength(30)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.SetStyle(progress.StyleDefault)
	writer.Style().Visibility.ETA = false
	writer.Style().Visibility.Time = true
	return &progressReporter{
		writer:   writer,
		trackers: make(map[int64]*progress.Tracker),
	}
}

func (r *progressReporter) start() {
	go r.writer.Render()
}

func (r *progressReporter) stop() {
	r.mu.Lock()
	for _, tracker := range r.trackers {
		if !tracker.IsDone() {
			tracker.MarkAsDone()
		}
	}
	r.mu.Unlock()
	r.writer.Stop()
}

func (r *progressReporter) update(item *queue.Item, percent int) {
	r.mu.Lock()
	tracker, ok := r.trackers[item.ID]
	if !ok {
		tracker = &progress.Tracker{
			Message: truncateLabel(displayTitle(item.SourcePath), 40),
			Total:   100,
			Units:   progress.UnitsDefault,
		}
		r.trackers[item.ID] = tracker
		r.writer.AppendTracker(tracker)
	}
	r.mu.Unlock()

	tracker.SetValue(int64(percent))
	if percent >= 100 {
		tracker.MarkAsDone()
	}
}
