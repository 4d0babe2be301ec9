package config

const (
	defaultInputDir  = "~/videos"
	defaultOutputDir = "~/videos/converted"
	defaultWorkDir   = "~/.local/share/directplay/work"
	defaultLogDir    = "~/.local/share/directplay/logs"

	defaultVideoCodec = "h264"
	defaultPixelFmt   = "yuv420p"
	defaultMaxLevel   = 41
	defaultMaxWidth   = 3840
	defaultMaxHeight  = 2160
	defaultAudioCodec = "aac"

	defaultCRF                     = 18
	defaultHWQuality               = 19
	defaultHWMaxRate               = "12M"
	defaultHWBufSize               = "24M"
	defaultSWPreset                = "slow"
	defaultHWPreset                = "p4"
	defaultAudioBitrate            = "128k"
	defaultAudioChannels           = 2
	defaultTerminationGraceSeconds = 2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultContainers() []string {
	return []string{"mp4", "mov"}
}

func defaultProfiles() []string {
	return []string{"baseline", "main", "high"}
}

func defaultExtensions() []string {
	return []string{".mp4", ".mkv", ".mov", ".avi", ".m4v", ".webm"}
}

// Default returns a Config populated with repository defaults. The profile
// defaults describe broad direct-play targets (H.264 high @ level 4.1,
// yuv420p, AAC audio, MP4 container, no embedded subtitles).
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Profile: Profile{
			Containers:        defaultContainers(),
			VideoCodec:        defaultVideoCodec,
			PixelFmt:          defaultPixelFmt,
			Profiles:          defaultProfiles(),
			MaxLevel:          defaultMaxLevel,
			MaxWidth:          defaultMaxWidth,
			MaxHeight:         defaultMaxHeight,
			AudioCodec:        defaultAudioCodec,
			TolerateSubtitles: false,
		},
		Encoder: Encoder{
			HardwareEnabled: true,
			CRF:             defaultCRF,
			HWQuality:       defaultHWQuality,
			HWMaxRate:       defaultHWMaxRate,
			HWBufSize:       defaultHWBufSize,
			SWPreset:        defaultSWPreset,
			HWPreset:        defaultHWPreset,
			AudioBitrate:    defaultAudioBitrate,
			AudioChannels:   defaultAudioChannels,
		},
		Workflow: Workflow{
			Extensions:              defaultExtensions(),
			TerminationGraceSeconds: defaultTerminationGraceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
