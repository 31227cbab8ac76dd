package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bandfinder/internal/api"
	"bandfinder/internal/intake"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register or update your musician profile interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--id is required")
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			sink := remoteSink{api: apiClient}
			manager, err := intake.NewManager(sink, sink, nil)
			if err != nil {
				return err
			}
			return runForm(cmd, manager, userID, manager.StartProfile(userID))
		},
	}

	cmd.Flags().Int64Var(&userID, "id", 0, "Your musician id")
	return cmd
}

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and edit musician profiles",
	}
	profileCmd.AddCommand(newProfileShowCommand(ctx))
	profileCmd.AddCommand(newProfileEditCommand(ctx))
	return profileCmd
}

func newProfileShowCommand(ctx *commandContext) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a musician profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--id is required")
			}
			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			musician, err := apiClient.GetMusician(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Musician #%d\n", musician.ID)
			fmt.Fprintf(out, "  Instrument:  %s\n", musician.Instrument)
			fmt.Fprintf(out, "  Experience:  %d years\n", musician.Experience)
			fmt.Fprintf(out, "  Genres:      %s\n", musician.Genres)
			fmt.Fprintf(out, "  Location:    %s\n", musician.Location)
			fmt.Fprintf(out, "  About:       %s\n", musician.About)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "id", 0, "Musician id")
	return cmd
}

func newProfileEditCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	var instrument, genres, location, about string
	var experience int

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update individual profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--id is required")
			}
			patch := api.MusicianPatch{}
			if cmd.Flags().Changed("instrument") {
				patch.Instrument = &instrument
			}
			if cmd.Flags().Changed("experience") {
				patch.Experience = &experience
			}
			if cmd.Flags().Changed("genres") {
				patch.Genres = &genres
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}
			if cmd.Flags().Changed("about") {
				patch.About = &about
			}
			if patch == (api.MusicianPatch{}) {
				return fmt.Errorf("nothing to update; pass at least one field flag")
			}

			apiClient, err := ctx.client()
			if err != nil {
				return err
			}
			musician, err := apiClient.PatchMusician(cmd.Context(), userID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile #%d updated: %s, %d years, %s\n",
				musician.ID, musician.Instrument, musician.Experience, musician.Genres)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "id", 0, "Musician id")
	cmd.Flags().StringVar(&instrument, "instrument", "", "Instrument (vocal, guitar, bass, drums, keys, other)")
	cmd.Flags().IntVar(&experience, "experience", 0, "Years of experience")
	cmd.Flags().StringVar(&genres, "genres", "", "Comma-separated genres")
	cmd.Flags().StringVar(&location, "location", "", "City or district")
	cmd.Flags().StringVar(&about, "about", "", "Short bio")
	return cmd
}
