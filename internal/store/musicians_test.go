package store_test

import (
	"context"
	"testing"

	"bandfinder/internal/store"
	"bandfinder/internal/testsupport"
)

func TestUpsertGetRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	want := &store.Musician{
		TelegramID: 42,
		Instrument: store.InstrumentDrums,
		Experience: 5,
		Genres:     "rock,funk",
		Location:   "Berlin",
		About:      "bio",
	}
	if err := st.UpsertMusician(ctx, want); err != nil {
		t.Fatalf("UpsertMusician failed: %v", err)
	}

	got, err := st.GetMusician(ctx, 42)
	if err != nil {
		t.Fatalf("GetMusician failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected profile, got nil")
	}
	if *got != *want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestUpsertReplacesExistingProfile(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedMusician(t, st, 7, store.InstrumentGuitar, 3)

	replacement := &store.Musician{
		TelegramID: 7,
		Instrument: store.InstrumentBass,
		Experience: 1,
	}
	if err := st.UpsertMusician(ctx, replacement); err != nil {
		t.Fatalf("UpsertMusician failed: %v", err)
	}

	got, err := st.GetMusician(ctx, 7)
	if err != nil {
		t.Fatalf("GetMusician failed: %v", err)
	}
	if got.Instrument != store.InstrumentBass || got.Experience != 1 {
		t.Fatalf("expected full replacement, got %+v", got)
	}
	if got.Genres != "" || got.Location != "" || got.About != "" {
		t.Fatalf("expected free-text fields cleared by replacement, got %+v", got)
	}
}

func TestGetMusicianMissingReturnsNil(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	got, err := st.GetMusician(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetMusician failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing profile, got %+v", got)
	}
}

func TestFieldEditsMutateSingleColumns(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedMusician(t, st, 11, store.InstrumentKeys, 2)

	if err := st.SetInstrument(ctx, 11, store.InstrumentVocal); err != nil {
		t.Fatalf("SetInstrument failed: %v", err)
	}
	if err := st.SetExperience(ctx, 11, 9); err != nil {
		t.Fatalf("SetExperience failed: %v", err)
	}
	if err := st.SetGenres(ctx, 11, "jazz"); err != nil {
		t.Fatalf("SetGenres failed: %v", err)
	}
	if err := st.SetBio(ctx, 11, "new bio"); err != nil {
		t.Fatalf("SetBio failed: %v", err)
	}
	if err := st.SetLocation(ctx, 11, "Hamburg"); err != nil {
		t.Fatalf("SetLocation failed: %v", err)
	}

	got, err := st.GetMusician(ctx, 11)
	if err != nil {
		t.Fatalf("GetMusician failed: %v", err)
	}
	if got.Instrument != store.InstrumentVocal || got.Experience != 9 ||
		got.Genres != "jazz" || got.About != "new bio" || got.Location != "Hamburg" {
		t.Fatalf("unexpected profile after edits: %+v", got)
	}
}

func TestFieldEditWithoutProfileIsSilentNoop(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.SetExperience(ctx, 404, 10); err != nil {
		t.Fatalf("expected silent no-op, got error: %v", err)
	}
	got, err := st.GetMusician(ctx, 404)
	if err != nil {
		t.Fatalf("GetMusician failed: %v", err)
	}
	if got != nil {
		t.Fatalf("edit must not create a profile, got %+v", got)
	}
}

func TestFindMusiciansFilterBoundary(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedMusician(t, st, 1, store.InstrumentGuitar, 5)
	testsupport.SeedMusician(t, st, 2, store.InstrumentGuitar, 3)
	testsupport.SeedMusician(t, st, 3, store.InstrumentGuitar, 2)
	testsupport.SeedMusician(t, st, 4, store.InstrumentDrums, 10)

	found, err := st.FindMusicians(ctx, "guitar", "", 3)
	if err != nil {
		t.Fatalf("FindMusicians failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(found))
	}
	for _, m := range found {
		if m.Instrument != store.InstrumentGuitar {
			t.Fatalf("wrong instrument in result: %+v", m)
		}
		if m.Experience < 3 {
			t.Fatalf("experience floor not applied: %+v", m)
		}
	}
}

func TestFindMusiciansSubstringMatch(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedMusician(t, st, 1, store.InstrumentGuitar, 4)

	found, err := st.FindMusicians(ctx, "uita", "", 0)
	if err != nil {
		t.Fatalf("FindMusicians failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected substring match, got %d results", len(found))
	}

	// Matching is case-sensitive.
	found, err = st.FindMusicians(ctx, "GUITAR", "", 0)
	if err != nil {
		t.Fatalf("FindMusicians failed: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no case-insensitive match, got %d results", len(found))
	}
}

func TestFindMusiciansEmptyResultIsNotError(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	found, err := st.FindMusicians(context.Background(), "theremin", "anywhere", 0)
	if err != nil {
		t.Fatalf("FindMusicians failed: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected empty result, got %d", len(found))
	}
}

func TestNormalizeInstrument(t *testing.T) {
	if got := store.NormalizeInstrument("guitar"); got != store.InstrumentGuitar {
		t.Fatalf("unexpected code: %q", got)
	}
	if got := store.NormalizeInstrument("hurdy-gurdy"); got != store.InstrumentOther {
		t.Fatalf("expected fallback to other, got %q", got)
	}
}
