package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"directplay/internal/config"
	"directplay/internal/encoding"
	"directplay/internal/media/compat"
	"directplay/internal/media/ffprobe"
	"directplay/internal/workflow"
)

func newCheckCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Report compatibility without converting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			files := args
			if len(files) == 0 {
				files, err = workflow.ScanInputDir(cfg.Paths.InputDir, cfg.Workflow.Extensions)
				if err != nil {
					return err
				}
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No video files found.")
				return nil
			}

			return runCheck(cmd.Context(), cmd, cfg, files)
		},
	}
}

func runCheck(ctx context.Context, cmd *cobra.Command, cfg *config.Config, files []string) error {
	caps := encoding.DetectHardware(ctx, cfg.FFmpegBinary(), cfg.Encoder.HardwareEnabled)
	target := compatTarget(cfg)

	rows := make([][]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows = append(rows, checkRow(ctx, cfg, caps, target, file))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Encoder: %s\n", caps.Label)
	output := renderTable([]string{"File", "Compatible", "Strategy", "Issues"}, rows)
	fmt.Fprintln(out, strings.TrimRight(output, "\n"))
	return nil
}

func checkRow(ctx context.Context, cfg *config.Config, caps encoding.Capabilities, target compat.Target, file string) []string {
	label := truncateLabel(displayTitle(file), 42)

	result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), file)
	if err != nil {
		return []string{label, "no", "-", "probe failed: " + err.Error()}
	}

	verdict := compat.Classify(result, target)
	plan := encoding.BuildPlan(verdict, caps)

	issues := make([]string, 0, len(verdict.Issues))
	for _, issue := range verdict.Issues {
		issues = append(issues, issue.Detail)
	}
	detail := strings.Join(issues, "; ")
	if detail == "" {
		detail = "-"
	}
	return []string{label, yesNo(verdict.Compatible), string(plan.Strategy), detail}
}

func compatTarget(cfg *config.Config) compat.Target {
	profile := cfg.Profile
	return compat.Target{
		Containers:        profile.Containers,
		VideoCodec:        profile.VideoCodec,
		PixelFormat:       profile.PixelFmt,
		Profiles:          profile.Profiles,
		MaxLevel:          profile.MaxLevel,
		MaxWidth:          profile.MaxWidth,
		MaxHeight:         profile.MaxHeight,
		AudioCodec:        profile.AudioCodec,
		TolerateSubtitles: profile.TolerateSubtitles,
	}
}
