package intake_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bandfinder/internal/intake"
	"bandfinder/internal/matching"
	"bandfinder/internal/store"
)

type recordingProfiles struct {
	saved []store.Musician
	err   error
}

func (r *recordingProfiles) UpsertMusician(_ context.Context, m *store.Musician) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, *m)
	return nil
}

type recordingRequests struct {
	submitted []matching.NewRequest
	result    matching.SubmitResult
	err       error
}

func (r *recordingRequests) Submit(_ context.Context, req matching.NewRequest) (matching.SubmitResult, error) {
	if r.err != nil {
		return matching.SubmitResult{}, r.err
	}
	r.submitted = append(r.submitted, req)
	return r.result, nil
}

func newManager(t *testing.T, profiles *recordingProfiles, requests *recordingRequests) *intake.Manager {
	t.Helper()
	manager, err := intake.NewManager(profiles, requests, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return manager
}

func advance(t *testing.T, manager *intake.Manager, userID int64, input string) intake.Reply {
	t.Helper()
	reply, err := manager.Advance(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("Advance(%q) failed: %v", input, err)
	}
	return reply
}

func TestProfileFormCollectsAllFields(t *testing.T) {
	profiles := &recordingProfiles{}
	manager := newManager(t, profiles, &recordingRequests{})

	manager.StartProfile(42)
	advance(t, manager, 42, "Guitar")
	advance(t, manager, 42, "7")
	advance(t, manager, 42, "rock, funk")
	advance(t, manager, 42, "Been gigging for years")
	reply := advance(t, manager, 42, "Berlin, Kreuzberg")

	if !reply.Done {
		t.Fatal("expected terminal reply after final field")
	}
	if len(profiles.saved) != 1 {
		t.Fatalf("expected one saved profile, got %d", len(profiles.saved))
	}
	got := profiles.saved[0]
	if got.TelegramID != 42 || got.Instrument != store.InstrumentGuitar {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if got.Experience != 7 || got.Genres != "rock, funk" || got.Location != "Berlin, Kreuzberg" {
		t.Fatalf("unexpected profile fields: %+v", got)
	}
	if _, ok := manager.InProgress(42); ok {
		t.Fatal("session must be gone after submit")
	}
}

func TestProfileFormNormalizesUnknownInstrument(t *testing.T) {
	profiles := &recordingProfiles{}
	manager := newManager(t, profiles, &recordingRequests{})

	manager.StartProfile(1)
	advance(t, manager, 1, "theremin")
	advance(t, manager, 1, "2")
	advance(t, manager, 1, "ambient")
	advance(t, manager, 1, "experimental electronics")
	advance(t, manager, 1, "Hamburg")

	if profiles.saved[0].Instrument != store.InstrumentOther {
		t.Fatalf("unknown instrument must map to %q, got %q", store.InstrumentOther, profiles.saved[0].Instrument)
	}
}

func TestInvalidExperienceRepromptsWithoutAdvancing(t *testing.T) {
	profiles := &recordingProfiles{}
	manager := newManager(t, profiles, &recordingRequests{})

	manager.StartProfile(7)
	advance(t, manager, 7, "drums")

	for _, bad := range []string{"many", "-3", "1.5"} {
		reply := advance(t, manager, 7, bad)
		if reply.Done {
			t.Fatalf("input %q must not complete the form", bad)
		}
		if reply.Prompt != "Please enter a whole number of years." {
			t.Fatalf("input %q: unexpected prompt %q", bad, reply.Prompt)
		}
	}

	// Still on the experience step: a valid number moves on to genres.
	reply := advance(t, manager, 7, "3")
	if reply.Prompt != "Which genres do you play? (comma-separated)" {
		t.Fatalf("valid input did not advance: %q", reply.Prompt)
	}
}

func TestRequestFormSubmitsToCoordinator(t *testing.T) {
	requests := &recordingRequests{result: matching.SubmitResult{RequestID: 12, Genre: "Jazz", Candidates: 3}}
	manager := newManager(t, &recordingProfiles{}, requests)

	manager.StartRequest(900)
	advance(t, manager, 900, "keys")
	advance(t, manager, 900, "4")
	advance(t, manager, 900, "Munich")
	reply := advance(t, manager, 900, "Jazz trio looking for a pianist")

	if !reply.Done || reply.Submitted == nil {
		t.Fatalf("expected terminal reply with result, got %+v", reply)
	}
	if reply.Submitted.RequestID != 12 {
		t.Fatalf("unexpected request id: %d", reply.Submitted.RequestID)
	}
	if len(requests.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(requests.submitted))
	}
	got := requests.submitted[0]
	if got.BandID != 900 || got.Instrument != store.InstrumentKeys || got.MinExperience != 4 {
		t.Fatalf("unexpected submission: %+v", got)
	}
	if got.Location != "Munich" || got.Description != "Jazz trio looking for a pianist" {
		t.Fatalf("unexpected submission fields: %+v", got)
	}
}

func TestEmptyDescriptionGetsPlaceholder(t *testing.T) {
	requests := &recordingRequests{}
	manager := newManager(t, &recordingProfiles{}, requests)

	manager.StartRequest(5)
	advance(t, manager, 5, "bass")
	advance(t, manager, 5, "0")
	advance(t, manager, 5, "Cologne")
	advance(t, manager, 5, "   ")

	if requests.submitted[0].Description != "No description" {
		t.Fatalf("unexpected description: %q", requests.submitted[0].Description)
	}
}

func TestSubmitFailureKeepsSession(t *testing.T) {
	requests := &recordingRequests{err: errors.New("db locked")}
	manager := newManager(t, &recordingProfiles{}, requests)

	manager.StartRequest(8)
	advance(t, manager, 8, "guitar")
	advance(t, manager, 8, "1")
	advance(t, manager, 8, "Leipzig")

	if _, err := manager.Advance(context.Background(), 8, "punk band"); err == nil {
		t.Fatal("expected submit error to surface")
	}

	// The form survives so the user can retry the final input.
	requests.err = nil
	reply := advance(t, manager, 8, "punk band")
	if !reply.Done {
		t.Fatal("retry after transient failure must complete the form")
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	manager := newManager(t, &recordingProfiles{}, &recordingRequests{})

	manager.StartProfile(3)
	if !manager.Cancel(3) {
		t.Fatal("cancel of an active form must report true")
	}
	if manager.Cancel(3) {
		t.Fatal("second cancel must report false")
	}
	if _, err := manager.Advance(context.Background(), 3, "guitar"); !errors.Is(err, intake.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestConcurrentInputsDoNotCorruptSession(t *testing.T) {
	profiles := &recordingProfiles{}
	manager := newManager(t, profiles, &recordingRequests{})

	manager.StartProfile(77)

	// Fire the same non-numeric input from several goroutines. The first one
	// moves the form from instrument to experience; the rest must re-prompt
	// on the experience step rather than interleave half-applied steps.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.Advance(context.Background(), 77, "guitar"); err != nil {
				t.Errorf("Advance failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if kind, ok := manager.InProgress(77); !ok || kind != intake.FormProfile {
		t.Fatalf("expected profile form still in progress, got %q ok=%v", kind, ok)
	}

	// The form resumes cleanly from the experience step.
	advance(t, manager, 77, "5")
	advance(t, manager, 77, "rock")
	advance(t, manager, 77, "bio")
	reply := advance(t, manager, 77, "Bremen")
	if !reply.Done {
		t.Fatal("form must complete after concurrent inputs")
	}
	if profiles.saved[0].Instrument != store.InstrumentGuitar || profiles.saved[0].Experience != 5 {
		t.Fatalf("unexpected profile: %+v", profiles.saved[0])
	}
}

func TestStartReplacesExistingSession(t *testing.T) {
	requests := &recordingRequests{}
	manager := newManager(t, &recordingProfiles{}, requests)

	manager.StartProfile(6)
	advance(t, manager, 6, "drums")

	// Starting the request form mid-profile abandons the profile form.
	manager.StartRequest(6)
	if kind, _ := manager.InProgress(6); kind != intake.FormRequest {
		t.Fatalf("unexpected active form: %q", kind)
	}
	advance(t, manager, 6, "vocal")
	advance(t, manager, 6, "2")
	advance(t, manager, 6, "Dresden")
	reply := advance(t, manager, 6, "metal band needs a singer")
	if !reply.Done {
		t.Fatal("request form must complete after replacing profile form")
	}
}
