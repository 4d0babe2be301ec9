package compat

import (
	"strconv"
	"strings"

	"directplay/internal/media/ffprobe"
)

// Category identifies which classification rule produced an issue.
type Category string

const (
	CategoryNoVideoStream Category = "no-video-stream"
	CategoryContainer     Category = "container"
	CategoryVideoCodec    Category = "video-codec"
	CategoryPixelFormat   Category = "pix-fmt"
	CategoryProfile       Category = "profile"
	CategoryLevel         Category = "level"
	CategoryResolution    Category = "resolution"
	CategoryAudioCodec    Category = "audio-codec"
	CategorySubtitles     Category = "subtitle-present"
)

// Issue is a single human-readable incompatibility finding.
type Issue struct {
	Category Category
	Detail   string
}

func (i Issue) String() string {
	return string(i.Category) + ": " + i.Detail
}

// Target describes the playback profile media is classified against.
// MaxLevel is expressed in tenths (41 for level 4.1).
type Target struct {
	Containers        []string
	VideoCodec        string
	PixelFormat       string
	Profiles          []string
	MaxLevel          int
	MaxWidth          int
	MaxHeight         int
	AudioCodec        string
	TolerateSubtitles bool
}

// Verdict is the full classification outcome for one probed file.
// ContainerOK is tracked separately from Compatible because a file whose
// only problem is the container can be remuxed instead of re-encoded.
type Verdict struct {
	Compatible   bool
	ContainerOK  bool
	VideoOK      bool
	AudioOK      bool
	SubtitlesOK  bool
	HasSubtitles bool
	Issues       []Issue
}

// NeedsVideoEncode reports whether the video stream must be re-encoded.
func (v Verdict) NeedsVideoEncode() bool {
	return !v.VideoOK
}

// NeedsAudioEncode reports whether audio must be re-encoded.
func (v Verdict) NeedsAudioEncode() bool {
	return !v.AudioOK
}

// RemuxSufficient reports whether a stream copy into a new container would
// produce a compatible file.
func (v Verdict) RemuxSufficient() bool {
	return !v.ContainerOK && v.VideoOK && v.AudioOK && v.SubtitlesOK
}

// Classify evaluates probed media against the target profile. The result is
// deterministic: the same probe and target always yield the same verdict.
// A file with no video stream short-circuits to a single terminal issue.
func Classify(result ffprobe.Result, target Target) Verdict {
	verdict := Verdict{}

	video, ok := result.FirstVideo()
	if !ok {
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryNoVideoStream,
			Detail:   "file contains no video stream",
		})
		return verdict
	}

	verdict.ContainerOK = containerMatches(result.Format.FormatName, target.Containers)
	if !verdict.ContainerOK {
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryContainer,
			Detail:   "container " + result.Format.FormatName + " is not " + strings.Join(target.Containers, "/"),
		})
	}

	verdict.VideoOK = true
	if !strings.EqualFold(video.CodecName, target.VideoCodec) {
		verdict.VideoOK = false
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryVideoCodec,
			Detail:   "video codec " + video.CodecName + " is not " + target.VideoCodec,
		})
	}
	// ffprobe omits pix_fmt for some sources; only a reported mismatch counts.
	if video.PixFmt != "" && !strings.EqualFold(video.PixFmt, target.PixelFormat) {
		verdict.VideoOK = false
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryPixelFormat,
			Detail:   "pixel format " + video.PixFmt + " is not " + target.PixelFormat,
		})
	}
	if !profileAllowed(video.Profile, target.Profiles) {
		verdict.VideoOK = false
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryProfile,
			Detail:   "profile " + video.Profile + " is not one of " + strings.Join(target.Profiles, "/"),
		})
	}
	if level := video.NormalizedLevel(); target.MaxLevel > 0 && level > target.MaxLevel {
		verdict.VideoOK = false
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryLevel,
			Detail:   "level " + formatLevel(level) + " exceeds " + formatLevel(target.MaxLevel),
		})
	}
	if exceeds(video.Width, target.MaxWidth) || exceeds(video.Height, target.MaxHeight) {
		verdict.VideoOK = false
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategoryResolution,
			Detail:   "resolution exceeds maximum",
		})
	}

	audio := result.AudioStreams()
	if len(audio) == 0 {
		verdict.AudioOK = true
	} else {
		verdict.AudioOK = result.HasAudioCodec(target.AudioCodec)
		if !verdict.AudioOK {
			verdict.Issues = append(verdict.Issues, Issue{
				Category: CategoryAudioCodec,
				Detail:   "no " + target.AudioCodec + " audio stream present",
			})
		}
	}

	verdict.HasSubtitles = len(result.SubtitleStreams()) > 0
	verdict.SubtitlesOK = !verdict.HasSubtitles || target.TolerateSubtitles
	if !verdict.SubtitlesOK {
		verdict.Issues = append(verdict.Issues, Issue{
			Category: CategorySubtitles,
			Detail:   "embedded subtitle streams present",
		})
	}

	verdict.Compatible = verdict.ContainerOK && verdict.VideoOK && verdict.AudioOK && verdict.SubtitlesOK
	return verdict
}

// containerMatches checks whether any allowed container name appears inside
// ffprobe's comma-separated format_name (for example "mov,mp4,m4a,3gp").
func containerMatches(formatName string, allowed []string) bool {
	name := strings.ToLower(strings.TrimSpace(formatName))
	if name == "" {
		return false
	}
	for _, container := range allowed {
		container = strings.ToLower(strings.TrimSpace(container))
		if container != "" && strings.Contains(name, container) {
			return true
		}
	}
	return false
}

func profileAllowed(profile string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(profile, candidate) {
			return true
		}
	}
	return false
}

func exceeds(value, max int) bool {
	return max > 0 && value > max
}

func formatLevel(tenths int) string {
	return strconv.Itoa(tenths/10) + "." + strconv.Itoa(tenths%10)
}
