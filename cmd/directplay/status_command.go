package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"directplay/internal/encoding"
	"directplay/internal/preflight"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment readiness and encoder capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			caps := encoding.DetectHardware(cmd.Context(), cfg.FFmpegBinary(), cfg.Encoder.HardwareEnabled)
			fmt.Fprintf(out, "Encoder: %s\n", caps.Label)
			fmt.Fprintf(out, "Input: %s\n", cfg.Paths.InputDir)
			fmt.Fprintf(out, "Output: %s\n", cfg.Paths.OutputDir)

			rows := make([][]string, 0, 8)
			for _, check := range preflight.Run(cfg).Checks {
				detail := check.Detail
				if detail == "" {
					detail = "-"
				}
				rows = append(rows, []string{check.Name, yesNo(check.Passed), detail})
			}
			output := renderTable([]string{"Check", "Ok", "Detail"}, rows)
			fmt.Fprintln(out, strings.TrimRight(output, "\n"))
			return nil
		},
	}
}
