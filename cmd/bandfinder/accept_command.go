package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAcceptCommand(ctx *commandContext) *cobra.Command {
	var musicianID int64

	cmd := &cobra.Command{
		Use:   "accept <request-id>",
		Short: "Accept a band request as a musician",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if musicianID <= 0 {
				return fmt.Errorf("--id is required")
			}
			requestID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || requestID <= 0 {
				return fmt.Errorf("invalid request id %q", args[0])
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			outcome, err := apiClient.Accept(cmd.Context(), requestID, musicianID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outcome.Accepted {
				fmt.Fprintf(out, "You got the spot! Request #%d is now filled.\n", outcome.RequestID)
				return nil
			}
			fmt.Fprintf(out, "Too late: request #%d is already filled or gone.\n", outcome.RequestID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&musicianID, "id", 0, "Your musician id")
	return cmd
}
