package encoding

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// Monitor translates ffmpeg -progress key=value output into a latched
// percentage. Percent values never decrease, and when the total duration is
// unknown no intermediate percentages are emitted at all; the end sentinel
// still reports 100 so callers always see completion.
type Monitor struct {
	durationSeconds float64
	percent         int
	onUpdate        func(percent int)
}

// NewMonitor builds a monitor for one ffmpeg invocation. durationSeconds of
// zero means "unknown". onUpdate may be nil.
func NewMonitor(durationSeconds float64, onUpdate func(percent int)) *Monitor {
	if durationSeconds < 0 || math.IsNaN(durationSeconds) {
		durationSeconds = 0
	}
	return &Monitor{durationSeconds: durationSeconds, onUpdate: onUpdate}
}

// Percent returns the highest percentage observed so far.
func (m *Monitor) Percent() int {
	return m.percent
}

// Consume drains the reader until EOF, feeding each line through the
// progress parser. The stream is always drained fully even when duration is
// unknown, so ffmpeg never blocks on a full stdout pipe.
func (m *Monitor) Consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.ObserveLine(scanner.Text())
	}
	return scanner.Err()
}

// ObserveLine processes a single progress line. Unknown keys and malformed
// values are ignored.
func (m *Monitor) ObserveLine(line string) {
	line = strings.TrimSpace(line)
	key, value, found := strings.Cut(line, "=")
	if !found {
		return
	}
	value = strings.TrimSpace(value)

	switch key {
	case "out_time_ms", "out_time_us":
		// Both keys carry microseconds; ffmpeg's out_time_ms label is a
		// historical misnomer.
		micros, err := strconv.ParseInt(value, 10, 64)
		if err != nil || micros < 0 {
			return
		}
		m.advance(float64(micros) / 1e6)
	case "out_time":
		seconds, ok := parseClock(value)
		if !ok {
			return
		}
		m.advance(seconds)
	case "progress":
		if value == "end" {
			m.set(100)
		}
	}
}

func (m *Monitor) advance(elapsedSeconds float64) {
	if m.durationSeconds <= 0 {
		return
	}
	fraction := elapsedSeconds / m.durationSeconds
	if fraction > 1 {
		fraction = 1
	}
	m.set(int(fraction * 100))
}

func (m *Monitor) set(percent int) {
	if percent <= m.percent {
		return
	}
	m.percent = percent
	if m.onUpdate != nil {
		m.onUpdate(percent)
	}
}

// parseClock parses ffmpeg's HH:MM:SS.frac out_time form. Hours may exceed
// two digits for very long media.
func parseClock(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	total := hours*3600 + minutes*60 + seconds
	if total < 0 || math.IsNaN(total) {
		return 0, false
	}
	return total, true
}
