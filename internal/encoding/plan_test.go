package encoding

import (
	"testing"

	"directplay/internal/media/compat"
)

func hwCaps() Capabilities {
	return Capabilities{Encoder: EncoderNVENC, Label: "NVIDIA NVENC (hw)"}
}

func TestBuildPlanSkip(t *testing.T) {
	verdict := compat.Verdict{Compatible: true, ContainerOK: true, VideoOK: true, AudioOK: true, SubtitlesOK: true}
	plan := BuildPlan(verdict, hwCaps())
	if plan.Strategy != StrategySkip {
		t.Fatalf("expected skip, got %s", plan.Strategy)
	}
	if plan.NeedsEncode() {
		t.Fatal("skip must not encode")
	}
}

func TestBuildPlanRemux(t *testing.T) {
	verdict := compat.Verdict{
		VideoOK:     true,
		AudioOK:     true,
		SubtitlesOK: true,
		Issues:      []compat.Issue{{Category: compat.CategoryContainer, Detail: "container matroska,webm is not mp4/mov"}},
	}
	plan := BuildPlan(verdict, hwCaps())
	if plan.Strategy != StrategyRemux {
		t.Fatalf("expected remux, got %s", plan.Strategy)
	}
	if !plan.CopyAudio {
		t.Fatal("remux always copies audio")
	}
}

func TestBuildPlanHardwareEncode(t *testing.T) {
	verdict := compat.Verdict{
		ContainerOK: true,
		AudioOK:     true,
		SubtitlesOK: true,
		Issues:      []compat.Issue{{Category: compat.CategoryVideoCodec, Detail: "video codec hevc is not h264"}},
	}
	plan := BuildPlan(verdict, hwCaps())
	if plan.Strategy != StrategyHardware {
		t.Fatalf("expected hw-encode, got %s", plan.Strategy)
	}
	if plan.Encoder != EncoderNVENC {
		t.Fatalf("expected nvenc, got %s", plan.Encoder)
	}
	if !plan.CopyAudio {
		t.Fatal("compatible audio should be copied")
	}
	if plan.StripSubtitles {
		t.Fatal("no subtitles to strip")
	}
}

func TestBuildPlanSoftwareWithoutHardware(t *testing.T) {
	verdict := compat.Verdict{
		ContainerOK: true,
		SubtitlesOK: true,
		Issues:      []compat.Issue{{Category: compat.CategoryVideoCodec, Detail: "video codec vp9 is not h264"}},
	}
	plan := BuildPlan(verdict, Capabilities{Label: "software libx264"})
	if plan.Strategy != StrategySoftware {
		t.Fatalf("expected sw-encode, got %s", plan.Strategy)
	}
	if plan.Encoder != EncoderSoftware {
		t.Fatalf("expected libx264, got %s", plan.Encoder)
	}
	if plan.CopyAudio {
		t.Fatal("incompatible audio must be re-encoded")
	}
}

func TestBuildPlanScaleAndSubtitleStrip(t *testing.T) {
	verdict := compat.Verdict{
		ContainerOK:  true,
		AudioOK:      true,
		HasSubtitles: true,
		Issues: []compat.Issue{
			{Category: compat.CategoryResolution, Detail: "resolution exceeds maximum"},
			{Category: compat.CategorySubtitles, Detail: "embedded subtitle streams present"},
		},
	}
	plan := BuildPlan(verdict, hwCaps())
	if !plan.Scale {
		t.Fatal("oversized video must be scaled")
	}
	if !plan.StripSubtitles {
		t.Fatal("untolerated subtitles must be stripped")
	}
}

func TestForceSoftwarePreservesFlags(t *testing.T) {
	plan := Plan{
		Strategy:       StrategyHardware,
		Encoder:        EncoderVideoToolbox,
		Scale:          true,
		CopyAudio:      true,
		StripSubtitles: true,
	}
	forced := plan.ForceSoftware()
	if forced.Strategy != StrategySoftware || forced.Encoder != EncoderSoftware {
		t.Fatalf("unexpected forced plan %+v", forced)
	}
	if !forced.Scale || !forced.CopyAudio || !forced.StripSubtitles {
		t.Fatal("ForceSoftware must only change the encoder")
	}
	if again := forced.ForceSoftware(); again.Strategy != StrategySoftware {
		t.Fatal("ForceSoftware must be idempotent")
	}
}
