package compat

import (
	"reflect"
	"testing"

	"directplay/internal/media/ffprobe"
)

func defaultTarget() Target {
	return Target{
		Containers:        []string{"mp4", "mov"},
		VideoCodec:        "h264",
		PixelFormat:       "yuv420p",
		Profiles:          []string{"baseline", "main", "high"},
		MaxLevel:          41,
		MaxWidth:          3840,
		MaxHeight:         2160,
		AudioCodec:        "aac",
		TolerateSubtitles: false,
	}
}

func compliantResult() ffprobe.Result {
	result, err := ffprobe.Parse([]byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 41, "width": 1920, "height": 1080},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2}
		],
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
	}`))
	if err != nil {
		panic(err)
	}
	return result
}

func mutate(t *testing.T, payload string) ffprobe.Result {
	t.Helper()
	result, err := ffprobe.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return result
}

func TestClassifyCompatible(t *testing.T) {
	verdict := Classify(compliantResult(), defaultTarget())
	if !verdict.Compatible {
		t.Fatalf("expected compatible, issues: %v", verdict.Issues)
	}
	if len(verdict.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", verdict.Issues)
	}
}

func TestClassifyNoVideoStream(t *testing.T) {
	result := mutate(t, `{"streams": [{"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`)
	verdict := Classify(result, defaultTarget())
	if verdict.Compatible {
		t.Fatal("expected incompatible")
	}
	if len(verdict.Issues) != 1 || verdict.Issues[0].Category != CategoryNoVideoStream {
		t.Fatalf("expected single no-video-stream issue, got %v", verdict.Issues)
	}
}

func TestClassifyContainerMismatchOnly(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "Main", "pix_fmt": "yuv420p", "level": 40, "width": 1280, "height": 720},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"format_name": "matroska,webm"}
	}`)
	verdict := Classify(result, defaultTarget())
	if verdict.Compatible {
		t.Fatal("expected incompatible")
	}
	if !verdict.RemuxSufficient() {
		t.Fatalf("expected remux to suffice, verdict %+v", verdict)
	}
	if verdict.NeedsVideoEncode() || verdict.NeedsAudioEncode() {
		t.Fatal("stream copies should be acceptable")
	}
}

func TestClassifyVideoRules(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		category Category
	}{
		{
			"wrong codec",
			`{"streams": [{"codec_type": "video", "codec_name": "hevc", "profile": "Main", "pix_fmt": "yuv420p", "level": 40}, {"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`,
			CategoryVideoCodec,
		},
		{
			"ten bit pixels",
			`{"streams": [{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p10le", "level": 40}, {"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`,
			CategoryPixelFormat,
		},
		{
			"disallowed profile",
			`{"streams": [{"codec_type": "video", "codec_name": "h264", "profile": "High 10", "pix_fmt": "yuv420p", "level": 40}, {"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`,
			CategoryProfile,
		},
		{
			"level too high integer",
			`{"streams": [{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 50}, {"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`,
			CategoryLevel,
		},
		{
			"level too high decimal",
			`{"streams": [{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 5.1}, {"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`,
			CategoryLevel,
		},
		{
			"oversized width",
			`{"streams": [{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 41, "width": 7680, "height": 2160}, {"codec_type": "audio", "codec_name": "aac"}], "format": {"format_name": "mp4"}}`,
			CategoryResolution,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := Classify(mutate(t, tc.payload), defaultTarget())
			if verdict.Compatible {
				t.Fatal("expected incompatible")
			}
			if !verdict.NeedsVideoEncode() {
				t.Fatal("expected video re-encode to be required")
			}
			found := false
			for _, issue := range verdict.Issues {
				if issue.Category == tc.category {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s issue, got %v", tc.category, verdict.Issues)
			}
		})
	}
}

func TestClassifyPixelFormatAbsentIsAcceptable(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "High", "level": 40, "width": 1920, "height": 1080},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"format_name": "mp4"}
	}`)
	verdict := Classify(result, defaultTarget())
	if !verdict.Compatible {
		t.Fatalf("unreported pix_fmt must not count against the file, issues: %v", verdict.Issues)
	}
	for _, issue := range verdict.Issues {
		if issue.Category == CategoryPixelFormat {
			t.Fatalf("unexpected pixel format issue: %v", issue)
		}
	}
}

func TestClassifyLevelDecimalWithinBound(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 4.1, "width": 1920, "height": 1080},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"format_name": "mp4"}
	}`)
	verdict := Classify(result, defaultTarget())
	if !verdict.Compatible {
		t.Fatalf("level 4.1 should equal the 41 bound, issues: %v", verdict.Issues)
	}
}

func TestClassifyAudioAnyMatchingStream(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 40},
			{"codec_type": "audio", "codec_name": "ac3", "channels": 6},
			{"codec_type": "audio", "codec_name": "aac", "channels": 2}
		],
		"format": {"format_name": "mp4"}
	}`)
	verdict := Classify(result, defaultTarget())
	if !verdict.AudioOK {
		t.Fatalf("one aac stream should satisfy audio, issues: %v", verdict.Issues)
	}
}

func TestClassifyAudioAbsentIsAcceptable(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 40}
		],
		"format": {"format_name": "mp4"}
	}`)
	verdict := Classify(result, defaultTarget())
	if !verdict.Compatible {
		t.Fatalf("video-only file should pass, issues: %v", verdict.Issues)
	}
}

func TestClassifySubtitlePresence(t *testing.T) {
	payload := `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 40},
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "subtitle", "codec_name": "mov_text"}
		],
		"format": {"format_name": "mp4"}
	}`

	strict := Classify(mutate(t, payload), defaultTarget())
	if strict.Compatible {
		t.Fatal("subtitles should force incompatibility when not tolerated")
	}
	if !strict.HasSubtitles || strict.SubtitlesOK {
		t.Fatalf("unexpected subtitle flags %+v", strict)
	}

	tolerant := defaultTarget()
	tolerant.TolerateSubtitles = true
	relaxed := Classify(mutate(t, payload), tolerant)
	if !relaxed.Compatible {
		t.Fatalf("tolerated subtitles should pass, issues: %v", relaxed.Issues)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "hevc", "profile": "Main", "pix_fmt": "yuv420p10le", "level": 120},
			{"codec_type": "audio", "codec_name": "dts"}
		],
		"format": {"format_name": "matroska,webm"}
	}`)
	first := Classify(result, defaultTarget())
	second := Classify(result, defaultTarget())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification is not deterministic: %+v vs %+v", first, second)
	}
}

func TestClassifyOnlyFirstVideoStreamEvaluated(t *testing.T) {
	result := mutate(t, `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "profile": "High", "pix_fmt": "yuv420p", "level": 40},
			{"codec_type": "video", "codec_name": "mjpeg", "profile": "", "pix_fmt": "yuvj420p", "level": 0},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"format_name": "mp4"}
	}`)
	verdict := Classify(result, defaultTarget())
	if !verdict.Compatible {
		t.Fatalf("cover-art secondary video must be ignored, issues: %v", verdict.Issues)
	}
}
