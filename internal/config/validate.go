package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration problems that would break a batch run.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.InputDir) == "" {
		problems = append(problems, "paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if c.Paths.InputDir != "" && c.Paths.InputDir == c.Paths.OutputDir {
		problems = append(problems, "paths.output_dir must differ from paths.input_dir")
	}

	if len(c.Profile.Containers) == 0 {
		problems = append(problems, "profile.containers must not be empty")
	}
	if strings.TrimSpace(c.Profile.VideoCodec) == "" {
		problems = append(problems, "profile.video_codec must be set")
	}
	if strings.TrimSpace(c.Profile.AudioCodec) == "" {
		problems = append(problems, "profile.audio_codec must be set")
	}
	if c.Profile.MaxLevel <= 0 {
		problems = append(problems, "profile.max_level must be positive (tenths, e.g. 41 for 4.1)")
	}
	if c.Profile.MaxWidth <= 0 || c.Profile.MaxHeight <= 0 {
		problems = append(problems, "profile.max_width and profile.max_height must be positive")
	}

	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		problems = append(problems, "encoder.crf must be in [0, 51]")
	}
	if c.Encoder.AudioChannels <= 0 {
		problems = append(problems, "encoder.audio_channels must be positive")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
