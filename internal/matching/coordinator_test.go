package matching_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bandfinder/internal/matching"
	"bandfinder/internal/notify"
	"bandfinder/internal/store"
	"bandfinder/internal/testsupport"
)

type stubClassifier struct {
	genre string
}

func (s stubClassifier) Classify(context.Context, string) string { return s.genre }

type recordingNotifier struct {
	mu         sync.Mutex
	invites    map[int64]notify.CandidateInvite
	filled     map[int64]notify.RequestFilled
	confirmed  map[int64]notify.RequestFilled
	inviteErrs map[int64]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		invites:    make(map[int64]notify.CandidateInvite),
		filled:     make(map[int64]notify.RequestFilled),
		confirmed:  make(map[int64]notify.RequestFilled),
		inviteErrs: make(map[int64]error),
	}
}

func (r *recordingNotifier) NotifyCandidate(_ context.Context, musicianID int64, invite notify.CandidateInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites[musicianID] = invite
	return r.inviteErrs[musicianID]
}

func (r *recordingNotifier) NotifyRequestFilled(_ context.Context, bandID int64, filled notify.RequestFilled) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filled[bandID] = filled
	return nil
}

func (r *recordingNotifier) NotifyAcceptanceConfirmed(_ context.Context, musicianID int64, filled notify.RequestFilled) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed[musicianID] = filled
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context, int64) error { return nil }

func newCoordinator(t *testing.T, st *store.Store, notifier notify.Service) *matching.Coordinator {
	t.Helper()
	coordinator, err := matching.NewCoordinator(st, stubClassifier{genre: "Rock"}, notifier, nil)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	return coordinator
}

func TestSubmitNotifiesOnlyMatchingCandidates(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := newRecordingNotifier()
	coordinator := newCoordinator(t, st, notifier)
	ctx := context.Background()

	testsupport.SeedMusician(t, st, 1, store.InstrumentGuitar, 5)
	testsupport.SeedMusician(t, st, 2, store.InstrumentGuitar, 1)
	testsupport.SeedMusician(t, st, 3, store.InstrumentDrums, 10)

	result, err := coordinator.Submit(ctx, matching.NewRequest{
		BandID:        100,
		Instrument:    store.InstrumentGuitar,
		MinExperience: 2,
		Location:      "Berlin",
		Description:   "Looking for a rock guitarist",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.RequestID == 0 {
		t.Fatal("expected assigned request id")
	}
	if result.Genre != "Rock" {
		t.Fatalf("unexpected genre: %q", result.Genre)
	}
	if result.Candidates != 1 {
		t.Fatalf("expected one candidate, got %d", result.Candidates)
	}

	invite, ok := notifier.invites[1]
	if !ok {
		t.Fatal("matching musician was not notified")
	}
	if invite.RequestID != result.RequestID || invite.Genre != "Rock" {
		t.Fatalf("unexpected invite payload: %+v", invite)
	}
	if _, ok := notifier.invites[2]; ok {
		t.Fatal("musician below experience floor must not be notified")
	}
	if _, ok := notifier.invites[3]; ok {
		t.Fatal("musician on another instrument must not be notified")
	}

	persisted, err := st.GetRequest(ctx, result.RequestID)
	if err != nil || persisted == nil {
		t.Fatalf("request not persisted: %v", err)
	}
	if persisted.Genre != "Rock" || !persisted.Open() {
		t.Fatalf("unexpected persisted request: %+v", persisted)
	}
}

func TestSubmitZeroCandidatesIsNotError(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	coordinator := newCoordinator(t, st, newRecordingNotifier())

	result, err := coordinator.Submit(context.Background(), matching.NewRequest{
		BandID:     5,
		Instrument: store.InstrumentKeys,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Candidates != 0 {
		t.Fatalf("expected zero candidates, got %d", result.Candidates)
	}
	if result.RequestID == 0 {
		t.Fatal("request must still be created")
	}
}

func TestSubmitDeliveryFailureDoesNotAbortOthers(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := newRecordingNotifier()
	notifier.inviteErrs[1] = errors.New("chat not found")
	coordinator := newCoordinator(t, st, notifier)

	testsupport.SeedMusician(t, st, 1, store.InstrumentGuitar, 5)
	testsupport.SeedMusician(t, st, 2, store.InstrumentGuitar, 5)

	result, err := coordinator.Submit(context.Background(), matching.NewRequest{
		BandID:     9,
		Instrument: store.InstrumentGuitar,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Candidates != 2 {
		t.Fatalf("expected both candidates counted, got %d", result.Candidates)
	}
	if _, ok := notifier.invites[2]; !ok {
		t.Fatal("second candidate must be notified despite first failing")
	}
	if got, _ := st.GetRequest(context.Background(), result.RequestID); got == nil {
		t.Fatal("request must survive delivery failure")
	}
}

func TestAcceptFirstWinsAndNotifiesBothSides(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := newRecordingNotifier()
	coordinator := newCoordinator(t, st, notifier)
	ctx := context.Background()

	request := testsupport.SeedRequest(t, st, 200, store.InstrumentGuitar, 0)

	first, err := coordinator.Accept(ctx, request.ID, 31)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !first.Accepted || first.BandID != 200 {
		t.Fatalf("unexpected first outcome: %+v", first)
	}

	second, err := coordinator.Accept(ctx, request.ID, 32)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if second.Accepted {
		t.Fatal("second acceptance must be refused")
	}

	if filled, ok := notifier.filled[200]; !ok || filled.MusicianID != 31 {
		t.Fatalf("band not notified of the winner: %+v", notifier.filled)
	}
	if _, ok := notifier.confirmed[31]; !ok {
		t.Fatal("winner not confirmed")
	}
	if _, ok := notifier.confirmed[32]; ok {
		t.Fatal("loser must not receive a confirmation")
	}

	got, _ := st.GetRequest(ctx, request.ID)
	if got.AcceptedBy == nil || *got.AcceptedBy != 31 {
		t.Fatalf("unexpected acceptor: %+v", got)
	}
}

func TestAcceptMissingRequest(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	coordinator := newCoordinator(t, st, newRecordingNotifier())

	outcome, err := coordinator.Accept(context.Background(), 4242, 1)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if outcome.Accepted {
		t.Fatal("acceptance of a missing request must be refused")
	}
}

func TestEndToEndScenario(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := newRecordingNotifier()
	coordinator := newCoordinator(t, st, notifier)
	ctx := context.Background()

	// M1 matches, M2 is below the floor, M3 plays another instrument but
	// will attempt to claim anyway.
	testsupport.SeedMusician(t, st, 1, store.InstrumentGuitar, 5)
	testsupport.SeedMusician(t, st, 2, store.InstrumentGuitar, 1)
	testsupport.SeedMusician(t, st, 3, store.InstrumentBass, 8)

	result, err := coordinator.Submit(ctx, matching.NewRequest{
		BandID:        77,
		Instrument:    store.InstrumentGuitar,
		MinExperience: 2,
		Description:   "Looking for a rock guitarist",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Candidates != 1 {
		t.Fatalf("expected only M1 as candidate, got %d", result.Candidates)
	}

	// M1 and M3 race. Exactly one wins, regardless of scheduling.
	outcomes := make([]matching.AcceptOutcome, 2)
	var wg sync.WaitGroup
	for i, musicianID := range []int64{1, 3} {
		wg.Add(1)
		go func(i int, musicianID int64) {
			defer wg.Done()
			outcome, err := coordinator.Accept(ctx, result.RequestID, musicianID)
			if err != nil {
				t.Errorf("Accept by %d failed: %v", musicianID, err)
				return
			}
			outcomes[i] = outcome
		}(i, musicianID)
	}
	wg.Wait()

	if outcomes[0].Accepted == outcomes[1].Accepted {
		t.Fatalf("exactly one acceptance must win: %+v", outcomes)
	}

	got, err := st.GetRequest(ctx, result.RequestID)
	if err != nil || got == nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	winner := int64(1)
	if outcomes[1].Accepted {
		winner = 3
	}
	if got.AcceptedBy == nil || *got.AcceptedBy != winner {
		t.Fatalf("stored acceptor %v does not match winner %d", got.AcceptedBy, winner)
	}

	// Any further claim is refused.
	late, err := coordinator.Accept(ctx, result.RequestID, 2)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if late.Accepted {
		t.Fatal("late claim must be refused")
	}
}

func TestSearchMusiciansHasNoSideEffects(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := newRecordingNotifier()
	coordinator := newCoordinator(t, st, notifier)

	testsupport.SeedMusician(t, st, 1, store.InstrumentGuitar, 5)

	found, err := coordinator.SearchMusicians(context.Background(), "guitar", 3)
	if err != nil {
		t.Fatalf("SearchMusicians failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected one result, got %d", len(found))
	}
	if len(notifier.invites) != 0 {
		t.Fatal("search must not notify anyone")
	}
}
