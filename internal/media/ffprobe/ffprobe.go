package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container. Numeric fields
// that ffprobe reports as JSON strings stay strings here; use the helpers
// for converted values.
type Stream struct {
	Index     int     `json:"index"`
	CodecName string  `json:"codec_name"`
	CodecType string  `json:"codec_type"`
	Profile   string  `json:"profile"`
	PixFmt    string  `json:"pix_fmt"`
	Level     float64 `json:"level"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Duration  string  `json:"duration"`
	BitRate   string  `json:"bit_rate"`
	Channels  int     `json:"channels"`
	Tags      Tags    `json:"tags"`
}

// Tags carries the stream metadata tags the pipeline cares about.
type Tags struct {
	Language string `json:"language"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response. A non-zero exit or unparseable payload is an error; callers must
// treat such files as incompatible, never compatible-by-default.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, detail)
	}

	return Parse(output)
}

// Parse decodes raw ffprobe JSON. Exported so classifiers can be tested
// against captured payloads without a real ffprobe binary.
func Parse(output []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// FirstVideo returns the first video stream, mirroring the evaluation rule
// that exactly one (the first) video stream is classified.
func (r Result) FirstVideo() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// AudioStreams returns every audio stream in container order.
func (r Result) AudioStreams() []Stream {
	return r.streamsOfType("audio")
}

// SubtitleStreams returns every subtitle stream in container order.
func (r Result) SubtitleStreams() []Stream {
	return r.streamsOfType("subtitle")
}

func (r Result) streamsOfType(kind string) []Stream {
	var out []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			out = append(out, stream)
		}
	}
	return out
}

// HasAudioCodec reports whether any audio stream uses the given codec.
func (r Result) HasAudioCodec(codec string) bool {
	for _, stream := range r.AudioStreams() {
		if strings.EqualFold(stream.CodecName, codec) {
			return true
		}
	}
	return false
}

// DurationSeconds returns the container duration in seconds, or 0 when
// unavailable. Progress reporting degrades gracefully on 0.
func (r Result) DurationSeconds() float64 {
	parsed := parseFloat(r.Format.Duration)
	if math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

// NormalizedLevel converts the raw codec level into tenths: ffprobe usually
// reports an integer (41 for 4.1) but some muxers surface the decimal form
// (4.1), which is scaled up before comparison. Zero means "not reported".
func (s Stream) NormalizedLevel() int {
	if s.Level <= 0 {
		return 0
	}
	if s.Level < 10 {
		return int(math.Round(s.Level * 10))
	}
	return int(math.Round(s.Level))
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
