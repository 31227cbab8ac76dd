package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var instrument string
	var minExperience int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search musician profiles by instrument and experience",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minExperience < 0 {
				return fmt.Errorf("--min-experience must be non-negative")
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			musicians, err := apiClient.SearchMusicians(cmd.Context(), instrument, minExperience)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(musicians) == 0 {
				fmt.Fprintln(out, "No musicians matched.")
				return nil
			}

			rows := make([][]string, 0, len(musicians))
			for _, m := range musicians {
				rows = append(rows, []string{
					strconv.FormatInt(m.ID, 10),
					m.Instrument,
					strconv.Itoa(m.Experience),
					m.Genres,
					m.Location,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Instrument", "Years", "Genres", "Location"},
				rows, 1, 3,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&instrument, "instrument", "", "Instrument to search for (substring match)")
	cmd.Flags().IntVar(&minExperience, "min-experience", 0, "Minimum years of experience")
	return cmd
}
