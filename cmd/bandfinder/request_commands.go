package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bandfinder/internal/api"
	"bandfinder/internal/intake"
)

func newRequestCommand(ctx *commandContext) *cobra.Command {
	requestCmd := &cobra.Command{
		Use:   "request",
		Short: "Create and manage band requests",
	}
	requestCmd.AddCommand(newRequestCreateCommand(ctx))
	requestCmd.AddCommand(newRequestListCommand(ctx))
	requestCmd.AddCommand(newRequestCancelCommand(ctx))
	return requestCmd
}

func newRequestCreateCommand(ctx *commandContext) *cobra.Command {
	var bandID int64
	var instrument, location, description string
	var minExperience int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a band request and notify matching musicians",
		Long: "Create a band request. With --instrument the request is submitted\n" +
			"directly from flags; without it an interactive form collects the fields.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bandID <= 0 {
				return fmt.Errorf("--band is required")
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}

			if instrument == "" {
				sink := remoteSink{api: apiClient}
				manager, err := intake.NewManager(sink, sink, nil)
				if err != nil {
					return err
				}
				return runForm(cmd, manager, bandID, manager.StartRequest(bandID))
			}

			if minExperience < 0 {
				return fmt.Errorf("--min-experience must be non-negative")
			}
			resp, err := apiClient.SubmitRequest(cmd.Context(), api.SubmitRequest{
				BandID:        bandID,
				Instrument:    instrument,
				MinExperience: minExperience,
				Location:      location,
				Description:   description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request #%d created. Genre: %s. Candidates notified: %d.\n",
				resp.Request.ID, resp.Genre, resp.Candidates)
			return nil
		},
	}

	cmd.Flags().Int64Var(&bandID, "band", 0, "Band id submitting the request")
	cmd.Flags().StringVar(&instrument, "instrument", "", "Instrument the band is looking for")
	cmd.Flags().IntVar(&minExperience, "min-experience", 0, "Minimum years of experience")
	cmd.Flags().StringVar(&location, "location", "", "City or district")
	cmd.Flags().StringVar(&description, "description", "", "Free-text description of the band")
	return cmd
}

func newRequestListCommand(ctx *commandContext) *cobra.Command {
	var bandID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a band's requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bandID <= 0 {
				return fmt.Errorf("--band is required")
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			requests, err := apiClient.ListRequests(cmd.Context(), bandID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(requests) == 0 {
				fmt.Fprintln(out, "No requests yet.")
				return nil
			}

			rows := make([][]string, 0, len(requests))
			for _, r := range requests {
				acceptedBy := ""
				if r.AcceptedBy != nil {
					acceptedBy = strconv.FormatInt(*r.AcceptedBy, 10)
				}
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Instrument,
					r.Genre,
					strconv.Itoa(r.MinExperience),
					r.Status,
					acceptedBy,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Instrument", "Genre", "Min years", "Status", "Accepted by"},
				rows, 1, 4, 6,
			))
			return nil
		},
	}

	cmd.Flags().Int64Var(&bandID, "band", 0, "Band id")
	return cmd
}

func newRequestCancelCommand(ctx *commandContext) *cobra.Command {
	var bandID int64

	cmd := &cobra.Command{
		Use:   "cancel <request-id>",
		Short: "Delete one of your open requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bandID <= 0 {
				return fmt.Errorf("--band is required")
			}
			requestID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || requestID <= 0 {
				return fmt.Errorf("invalid request id %q", args[0])
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			if err := apiClient.CancelRequest(cmd.Context(), requestID, bandID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request #%d cancelled.\n", requestID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&bandID, "band", 0, "Band id that owns the request")
	return cmd
}
