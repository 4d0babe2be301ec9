package encoding

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// CommandOptions carries the tunables the argument builder needs. Values
// come from configuration; the builder itself never reads config directly.
type CommandOptions struct {
	CRF           int
	HWQuality     int
	HWMaxRate     string
	HWBufSize     string
	SWPreset      string
	HWPreset      string
	AudioBitrate  string
	AudioChannels int
	MaxWidth      int
	MaxHeight     int
	MaxLevel      int
	Profile       string
}

// BuildEncodeArgs assembles the full ffmpeg argument list for an encode
// plan. The output always lands in an mp4 with faststart, and progress is
// streamed as key=value pairs on stdout.
func BuildEncodeArgs(plan Plan, opts CommandOptions, inputPath, outputPath string) []string {
	args := []string{"-hide_banner", "-y", "-i", inputPath}

	if plan.StripSubtitles {
		args = append(args, "-map", "0:v:0", "-map", "0:a?", "-sn")
	}

	switch plan.Encoder {
	case EncoderVideoToolbox:
		args = append(args,
			"-c:v", EncoderVideoToolbox,
			"-pix_fmt", "yuv420p",
			"-profile:v", opts.Profile,
			"-level", levelString(opts.MaxLevel),
			"-q:v", strconv.Itoa(opts.HWQuality),
			"-b:v", opts.HWMaxRate,
			"-maxrate", opts.HWMaxRate,
			"-bufsize", opts.HWBufSize,
		)
	case EncoderNVENC:
		args = append(args,
			"-c:v", EncoderNVENC,
			"-pix_fmt", "yuv420p",
			"-profile:v", opts.Profile,
			"-level", levelString(opts.MaxLevel),
			"-preset", opts.HWPreset,
			"-rc", "vbr",
			"-cq", strconv.Itoa(opts.HWQuality),
			"-b:v", "0",
			"-maxrate", opts.HWMaxRate,
			"-bufsize", opts.HWBufSize,
		)
	default:
		args = append(args,
			"-c:v", EncoderSoftware,
			"-preset", opts.SWPreset,
			"-crf", strconv.Itoa(opts.CRF),
			"-pix_fmt", "yuv420p",
			"-profile:v", opts.Profile,
			"-level", levelString(opts.MaxLevel),
		)
	}

	if plan.Scale {
		args = append(args, "-vf", scaleFilter(opts.MaxWidth, opts.MaxHeight))
	}

	if plan.CopyAudio {
		args = append(args, "-c:a", "copy")
	} else {
		args = append(args,
			"-c:a", "aac",
			"-b:a", opts.AudioBitrate,
			"-ac", strconv.Itoa(opts.AudioChannels),
		)
	}

	args = append(args, "-movflags", "+faststart", "-f", "mp4")
	return append(args, progressArgs(outputPath)...)
}

// BuildRemuxArgs assembles a stream-copy remux into mp4.
func BuildRemuxArgs(inputPath, outputPath string) []string {
	args := []string{
		"-hide_banner", "-y", "-i", inputPath,
		"-c", "copy",
		"-movflags", "+faststart",
		"-f", "mp4",
	}
	return append(args, progressArgs(outputPath)...)
}

func progressArgs(outputPath string) []string {
	return []string{"-progress", "pipe:1", "-nostats", "-loglevel", "error", outputPath}
}

// scaleFilter downscales while preserving aspect ratio. The -2 placeholder
// keeps the computed dimension divisible by two, which H.264 requires.
func scaleFilter(maxWidth, maxHeight int) string {
	ratio := float64(maxWidth) / float64(maxHeight)
	return fmt.Sprintf(
		"scale='if(gt(iw/ih,%s),%d,-2)':'if(gt(iw/ih,%s),-2,%d)'",
		formatRatio(ratio), maxWidth, formatRatio(ratio), maxHeight,
	)
}

func formatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'g', -1, 64)
}

func levelString(tenths int) string {
	return strconv.Itoa(tenths/10) + "." + strconv.Itoa(tenths%10)
}

// OutputPath returns the final artifact path for an input: the input's stem
// with an .mp4 extension under the output directory.
func OutputPath(outputDir, inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".mp4")
}

// SoftwareTempPath returns the staging path the retry encode writes before
// renaming over the final output.
func SoftwareTempPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".sw.tmp.mp4"
}
