package encoding

import (
	"strings"

	"directplay/internal/media/compat"
)

// Strategy names the cheapest action that makes a file compatible.
type Strategy string

const (
	StrategySkip     Strategy = "skip"
	StrategyRemux    Strategy = "remux"
	StrategyHardware Strategy = "hw-encode"
	StrategySoftware Strategy = "sw-encode"
)

const (
	EncoderVideoToolbox = "h264_videotoolbox"
	EncoderNVENC        = "h264_nvenc"
	EncoderSoftware     = "libx264"
)

// Capabilities reports which hardware encoder (if any) the local ffmpeg
// build exposes. An empty Encoder means software only.
type Capabilities struct {
	Encoder string
	Label   string
}

// Hardware reports whether a usable hardware encoder was detected.
func (c Capabilities) Hardware() bool {
	return c.Encoder != ""
}

// Plan is a pure description of the work one file needs. Building a plan
// touches no processes and no filesystem state.
type Plan struct {
	Strategy       Strategy
	Encoder        string
	EncoderLabel   string
	Scale          bool
	CopyAudio      bool
	StripSubtitles bool
	Reason         string
}

// NeedsEncode reports whether the plan runs a re-encode (as opposed to a
// skip or a stream-copy remux).
func (p Plan) NeedsEncode() bool {
	return p.Strategy == StrategyHardware || p.Strategy == StrategySoftware
}

// ForceSoftware returns a copy of the plan downgraded to libx264. Used for
// the single retry after a failed or non-compliant first encode; applying
// it to an already-software plan is a no-op on every field but the label.
func (p Plan) ForceSoftware() Plan {
	p.Strategy = StrategySoftware
	p.Encoder = EncoderSoftware
	p.EncoderLabel = "software libx264"
	return p
}

// BuildPlan maps a classification verdict onto the cheapest sufficient
// strategy. The ladder is fixed: skip when nothing is wrong, remux when only
// the container is wrong, otherwise encode with hardware when available.
func BuildPlan(verdict compat.Verdict, caps Capabilities) Plan {
	if verdict.Compatible {
		return Plan{Strategy: StrategySkip, Reason: "already compatible"}
	}
	if verdict.RemuxSufficient() {
		return Plan{
			Strategy:  StrategyRemux,
			CopyAudio: true,
			Reason:    "streams compatible, container is not",
		}
	}

	plan := Plan{
		CopyAudio:      verdict.AudioOK,
		Scale:          hasIssue(verdict, compat.CategoryResolution),
		StripSubtitles: !verdict.SubtitlesOK,
		Reason:         summarizeIssues(verdict),
	}
	if caps.Hardware() {
		plan.Strategy = StrategyHardware
		plan.Encoder = caps.Encoder
		plan.EncoderLabel = caps.Label
	} else {
		plan = plan.ForceSoftware()
	}
	return plan
}

func hasIssue(verdict compat.Verdict, category compat.Category) bool {
	for _, issue := range verdict.Issues {
		if issue.Category == category {
			return true
		}
	}
	return false
}

func summarizeIssues(verdict compat.Verdict) string {
	parts := make([]string, 0, len(verdict.Issues))
	for _, issue := range verdict.Issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}
