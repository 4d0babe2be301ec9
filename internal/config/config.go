package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// Profile describes the direct-play target the classifier enforces. All
// comparisons against it are read-only after startup.
type Profile struct {
	// Containers lists substrings accepted inside ffprobe's format_name
	// (ffprobe reports compound names such as "mov,mp4,m4a,3gp").
	Containers []string `toml:"containers"`
	VideoCodec string   `toml:"video_codec"`
	PixelFmt   string   `toml:"pixel_format"`
	// Profiles is matched case-insensitively against the stream profile.
	Profiles []string `toml:"profiles"`
	// MaxLevel is expressed in tenths: 41 means level 4.1.
	MaxLevel          int    `toml:"max_level"`
	MaxWidth          int    `toml:"max_width"`
	MaxHeight         int    `toml:"max_height"`
	AudioCodec        string `toml:"audio_codec"`
	TolerateSubtitles bool   `toml:"tolerate_subtitles"`
}

// Encoder contains external encoder tuning and binary selection.
type Encoder struct {
	HardwareEnabled bool   `toml:"hardware_enabled"`
	CRF             int    `toml:"crf"`
	HWQuality       int    `toml:"hw_quality"`
	HWMaxRate       string `toml:"hw_maxrate"`
	HWBufSize       string `toml:"hw_bufsize"`
	SWPreset        string `toml:"sw_preset"`
	HWPreset        string `toml:"hw_preset"`
	AudioBitrate    string `toml:"audio_bitrate"`
	AudioChannels   int    `toml:"audio_channels"`
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
}

// Workflow contains batch processing behavior.
type Workflow struct {
	Extensions              []string `toml:"extensions"`
	TerminationGraceSeconds int      `toml:"termination_grace_seconds"`
	DeleteOriginals         bool     `toml:"delete_originals"`
	OverwriteExisting       bool     `toml:"overwrite_existing"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for directplay.
//
// Configuration sections by subsystem:
//   - Paths: input/output/work/log directories
//   - Profile: the direct-play compatibility target
//   - Encoder: ffmpeg/ffprobe selection and quality settings
//   - Workflow: batch extensions, cancellation grace, post-success handling
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Profile  Profile  `toml:"profile"`
	Encoder  Encoder  `toml:"encoder"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/directplay/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("directplay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for batch operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for encode and remux runs.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Encoder.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Encoder.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// TerminationGrace returns how long a cancelled encode may take to exit
// before its process group is force-killed.
func (c *Config) TerminationGrace() int {
	if c.Workflow.TerminationGraceSeconds <= 0 {
		return defaultTerminationGraceSeconds
	}
	return c.Workflow.TerminationGraceSeconds
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
