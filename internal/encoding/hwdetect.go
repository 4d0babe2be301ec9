package encoding

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

// DetectHardware probes the local ffmpeg build for a usable hardware H.264
// encoder. VideoToolbox is only trusted on macOS and NVENC only on Linux and
// Windows; detection failure quietly falls back to software.
func DetectHardware(ctx context.Context, ffmpegBinary string, enabled bool) Capabilities {
	if !enabled {
		return Capabilities{Label: "software libx264"}
	}
	return capabilitiesFromEncoderList(listEncoders(ctx, ffmpegBinary), runtime.GOOS)
}

func listEncoders(ctx context.Context, ffmpegBinary string) string {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	output, err := exec.CommandContext(ctx, ffmpegBinary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return ""
	}
	return string(output)
}

func capabilitiesFromEncoderList(encoders string, goos string) Capabilities {
	lowered := strings.ToLower(encoders)
	switch goos {
	case "darwin":
		if strings.Contains(lowered, EncoderVideoToolbox) {
			return Capabilities{Encoder: EncoderVideoToolbox, Label: "Apple VideoToolbox (hw)"}
		}
	case "linux", "windows":
		if strings.Contains(lowered, EncoderNVENC) {
			return Capabilities{Encoder: EncoderNVENC, Label: "NVIDIA NVENC (hw)"}
		}
	}
	return Capabilities{Label: "software libx264"}
}
