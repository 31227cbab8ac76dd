package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"bandfinder/internal/classify"
	"bandfinder/internal/logging"
	"bandfinder/internal/notify"
	"bandfinder/internal/store"
)

// NewRequest carries the already-validated fields of a band's submission.
type NewRequest struct {
	BandID        int64
	Instrument    string
	MinExperience int
	Location      string
	Description   string
}

// SubmitResult reports the outcome of a submission back to the band.
type SubmitResult struct {
	RequestID  int64
	Genre      string
	Candidates int
}

// AcceptOutcome reports the result of a musician's acceptance attempt.
// Accepted is false when the request was already closed or never existed;
// that is an expected outcome under contention, not an error.
type AcceptOutcome struct {
	Accepted  bool
	RequestID int64
	BandID    int64
}

// Coordinator orchestrates request creation, candidate fan-out, and claim
// resolution. It is stateless: all shared state lives in the store, so any
// number of events may run concurrently.
type Coordinator struct {
	store      *store.Store
	classifier classify.Classifier
	notifier   notify.Service
	logger     *slog.Logger
}

// NewCoordinator wires the coordinator's collaborators.
func NewCoordinator(st *store.Store, classifier classify.Classifier, notifier notify.Service, logger *slog.Logger) (*Coordinator, error) {
	if st == nil || classifier == nil || notifier == nil {
		return nil, errors.New("coordinator requires store, classifier, and notifier")
	}
	return &Coordinator{
		store:      st,
		classifier: classifier,
		notifier:   notifier,
		logger:     logging.WithComponent(logger, "matching"),
	}, nil
}

// Submit handles a band's new request: classify the description, persist the
// request, find candidates, and fan out one invitation per candidate.
// Notification delivery is fire-and-forget; a failed delivery is logged and
// never aborts the other deliveries or rolls back the request. Zero
// candidates is a valid outcome.
func (c *Coordinator) Submit(ctx context.Context, req NewRequest) (SubmitResult, error) {
	correlationID := uuid.NewString()
	log := c.logger.With(
		slog.String("correlation_id", correlationID),
		slog.Int64("band_id", req.BandID),
	)

	genre := c.classifier.Classify(ctx, req.Description)

	created, err := c.store.CreateRequest(ctx, req.BandID, req.Instrument, genre, req.Description, req.Location, req.MinExperience)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("create request: %w", err)
	}

	candidates, err := c.store.FindMusicians(ctx, req.Instrument, req.Location, req.MinExperience)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("find candidates: %w", err)
	}

	log.Info("request created",
		slog.Int64("request_id", created.ID),
		slog.String("instrument", req.Instrument),
		slog.String("genre", genre),
		slog.Int("candidates", len(candidates)),
	)

	invite := notify.CandidateInvite{
		RequestID:     created.ID,
		Instrument:    created.Instrument,
		Genre:         genre,
		Location:      created.Location,
		Description:   created.Description,
		MinExperience: created.MinExperience,
		CorrelationID: correlationID,
	}

	var wg sync.WaitGroup
	for _, candidate := range candidates {
		wg.Add(1)
		go func(musicianID int64) {
			defer wg.Done()
			if err := c.notifier.NotifyCandidate(ctx, musicianID, invite); err != nil {
				log.Warn("candidate notification failed",
					slog.Int64("musician_id", musicianID),
					slog.String("error", err.Error()),
				)
			}
		}(candidate.TelegramID)
	}
	wg.Wait()

	return SubmitResult{
		RequestID:  created.ID,
		Genre:      genre,
		Candidates: len(candidates),
	}, nil
}

// Accept handles a musician's acceptance of a request. The store's atomic
// claim is the source of truth: once it succeeds the request is closed and
// the follow-up notifications are a best-effort echo, never a two-phase
// commit.
func (c *Coordinator) Accept(ctx context.Context, requestID, musicianID int64) (AcceptOutcome, error) {
	accepted, err := c.store.Claim(ctx, requestID, musicianID)
	if err != nil {
		return AcceptOutcome{}, fmt.Errorf("claim: %w", err)
	}
	if !accepted {
		c.logger.Info("acceptance refused, request closed or missing",
			slog.Int64("request_id", requestID),
			slog.Int64("musician_id", musicianID),
		)
		return AcceptOutcome{Accepted: false, RequestID: requestID}, nil
	}

	request, err := c.store.GetRequest(ctx, requestID)
	if err != nil {
		// The claim is already durable; report the acceptance and let the
		// owner discover it through the request listing.
		c.logger.Error("lookup after successful claim failed",
			slog.Int64("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return AcceptOutcome{Accepted: true, RequestID: requestID}, nil
	}

	c.logger.Info("request claimed",
		slog.Int64("request_id", requestID),
		slog.Int64("musician_id", musicianID),
		slog.Int64("band_id", request.BandID),
	)

	filled := notify.RequestFilled{
		RequestID:  request.ID,
		Instrument: request.Instrument,
		Genre:      request.Genre,
		MusicianID: musicianID,
	}
	if err := c.notifier.NotifyRequestFilled(ctx, request.BandID, filled); err != nil {
		c.logger.Warn("band notification failed",
			slog.Int64("band_id", request.BandID),
			slog.String("error", err.Error()),
		)
	}
	if err := c.notifier.NotifyAcceptanceConfirmed(ctx, musicianID, filled); err != nil {
		c.logger.Warn("musician confirmation failed",
			slog.Int64("musician_id", musicianID),
			slog.String("error", err.Error()),
		)
	}

	return AcceptOutcome{Accepted: true, RequestID: requestID, BandID: request.BandID}, nil
}

// SearchMusicians runs the standalone musician search: same filter predicate
// as candidate matching, no notification side effects. The instrument query
// may be free text and is matched by substring.
func (c *Coordinator) SearchMusicians(ctx context.Context, instrument string, minExperience int) ([]*store.Musician, error) {
	return c.store.FindMusicians(ctx, instrument, "", minExperience)
}
