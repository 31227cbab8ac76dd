package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var recipientID int64

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to a recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			if recipientID <= 0 {
				return fmt.Errorf("--recipient is required")
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			if err := apiClient.NotifyTest(cmd.Context(), recipientID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent.")
			return nil
		},
	}

	cmd.Flags().Int64Var(&recipientID, "recipient", 0, "Recipient id for the test message")
	return cmd
}
