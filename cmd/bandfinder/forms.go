package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bandfinder/internal/api"
	"bandfinder/internal/intake"
	"bandfinder/internal/matching"
	"bandfinder/internal/store"
)

// remoteSink feeds completed intake forms into the daemon API instead of a
// local store.
type remoteSink struct {
	api *client
}

func (r remoteSink) UpsertMusician(ctx context.Context, m *store.Musician) error {
	_, err := r.api.UpsertMusician(ctx, m.TelegramID, api.Musician{
		Instrument: m.Instrument,
		Experience: m.Experience,
		Genres:     m.Genres,
		Location:   m.Location,
		About:      m.About,
	})
	return err
}

func (r remoteSink) Submit(ctx context.Context, req matching.NewRequest) (matching.SubmitResult, error) {
	resp, err := r.api.SubmitRequest(ctx, api.SubmitRequest{
		BandID:        req.BandID,
		Instrument:    req.Instrument,
		MinExperience: req.MinExperience,
		Location:      req.Location,
		Description:   req.Description,
	})
	if err != nil {
		return matching.SubmitResult{}, err
	}
	return matching.SubmitResult{
		RequestID:  resp.Request.ID,
		Genre:      resp.Genre,
		Candidates: resp.Candidates,
	}, nil
}

// runForm drives one intake form over the command's stdin and stdout until
// the form submits or input runs out.
func runForm(cmd *cobra.Command, manager *intake.Manager, userID int64, first intake.Reply) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, first.Prompt)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		reply, err := manager.Advance(cmd.Context(), userID, scanner.Text())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply.Prompt)
		if reply.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	manager.Cancel(userID)
	return fmt.Errorf("form aborted before completion")
}
