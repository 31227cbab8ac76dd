package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bandfinder/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and request counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := apiClient.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("BandFinder Daemon", colorize) {
				fmt.Fprintln(out, line)
			}

			runningKind := statusError
			runningMsg := "not running"
			if status.Running {
				runningKind = statusOK
				runningMsg = fmt.Sprintf("pid %d", status.PID)
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, runningMsg, colorize))
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
			fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

			open := status.RequestStats[api.StatusOpen]
			closed := status.RequestStats[api.StatusClosed]
			fmt.Fprintln(out, renderStatusLine("Open requests", statusInfo, fmt.Sprintf("%d", open), colorize))
			fmt.Fprintln(out, renderStatusLine("Filled requests", statusInfo, fmt.Sprintf("%d", closed), colorize))
			return nil
		},
	}
}
