package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queued transcode item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProbing   Status = "probing"
	StatusPlanning  Status = "planning"
	StatusEncoding  Status = "encoding"
	StatusVerifying Status = "verifying"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProbing,
	StatusPlanning,
	StatusEncoding,
	StatusVerifying,
	StatusCompleted,
	StatusSkipped,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Item represents one source file tracked through a conversion run.
type Item struct {
	ID              int64
	SourcePath      string
	OutputPath      string
	RequestID       string
	Status          Status
	Strategy        string
	Retried         bool
	ProbeJSON       string
	Diagnostic      string
	ErrorMessage    string
	ProgressPercent float64
	ElapsedSeconds  float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary aggregates item counts per terminal outcome.
type Summary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Skipped    int
	Failed     int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// SetProgress records the latest percentage for an in-flight item.
func (i *Item) SetProgress(percent float64) {
	if percent < i.ProgressPercent {
		return
	}
	if percent > 100 {
		percent = 100
	}
	i.ProgressPercent = percent
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
}

// SetCompleted marks the item as successfully converted.
func (i *Item) SetCompleted(diagnostic string) {
	i.Status = StatusCompleted
	i.Diagnostic = diagnostic
	i.ErrorMessage = ""
	i.ProgressPercent = 100
}

// SetSkipped marks the item as already compatible.
func (i *Item) SetSkipped(diagnostic string) {
	i.Status = StatusSkipped
	i.Diagnostic = diagnostic
	i.ErrorMessage = ""
	i.ProgressPercent = 100
}
