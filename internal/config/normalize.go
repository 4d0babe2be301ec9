package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProfile()
	c.normalizeEncoder()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProfile() {
	c.Profile.Containers = normalizeLowerList(c.Profile.Containers, defaultContainers())
	c.Profile.VideoCodec = lowerOr(c.Profile.VideoCodec, defaultVideoCodec)
	c.Profile.PixelFmt = lowerOr(c.Profile.PixelFmt, defaultPixelFmt)
	c.Profile.Profiles = normalizeLowerList(c.Profile.Profiles, defaultProfiles())
	c.Profile.AudioCodec = lowerOr(c.Profile.AudioCodec, defaultAudioCodec)
	if c.Profile.MaxLevel <= 0 {
		c.Profile.MaxLevel = defaultMaxLevel
	}
	if c.Profile.MaxWidth <= 0 {
		c.Profile.MaxWidth = defaultMaxWidth
	}
	if c.Profile.MaxHeight <= 0 {
		c.Profile.MaxHeight = defaultMaxHeight
	}
}

func (c *Config) normalizeEncoder() {
	if c.Encoder.CRF <= 0 {
		c.Encoder.CRF = defaultCRF
	}
	if c.Encoder.HWQuality <= 0 {
		c.Encoder.HWQuality = defaultHWQuality
	}
	c.Encoder.HWMaxRate = strings.TrimSpace(c.Encoder.HWMaxRate)
	if c.Encoder.HWMaxRate == "" {
		c.Encoder.HWMaxRate = defaultHWMaxRate
	}
	c.Encoder.HWBufSize = strings.TrimSpace(c.Encoder.HWBufSize)
	if c.Encoder.HWBufSize == "" {
		c.Encoder.HWBufSize = defaultHWBufSize
	}
	c.Encoder.SWPreset = lowerOr(c.Encoder.SWPreset, defaultSWPreset)
	c.Encoder.HWPreset = lowerOr(c.Encoder.HWPreset, defaultHWPreset)
	c.Encoder.AudioBitrate = strings.TrimSpace(c.Encoder.AudioBitrate)
	if c.Encoder.AudioBitrate == "" {
		c.Encoder.AudioBitrate = defaultAudioBitrate
	}
	if c.Encoder.AudioChannels <= 0 {
		c.Encoder.AudioChannels = defaultAudioChannels
	}
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
}

func (c *Config) normalizeWorkflow() {
	exts := make([]string, 0, len(c.Workflow.Extensions))
	for _, ext := range c.Workflow.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Workflow.Extensions = exts
	if c.Workflow.TerminationGraceSeconds <= 0 {
		c.Workflow.TerminationGraceSeconds = defaultTerminationGraceSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
}

func normalizeLowerList(values []string, fallback []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
