// Package intake runs the conversational forms that collect profile and
// request fields one input at a time.
//
// Each user has at most one in-progress form, held as a typed session record
// keyed by user id and advanced one field per incoming input. Invalid input
// re-prompts without advancing. Terminal states are submit (the accumulated
// record is handed to the store or the matching coordinator) and cancel (the
// session is discarded).
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"bandfinder/internal/logging"
	"bandfinder/internal/matching"
	"bandfinder/internal/store"
)

// FormKind identifies which form a session is collecting.
type FormKind string

const (
	FormProfile FormKind = "profile"
	FormRequest FormKind = "request"
)

// step enumerates form progress. Profile and request forms share the enum;
// each form only ever visits its own steps.
type step int

const (
	stepInstrument step = iota
	stepExperience
	stepGenres
	stepBio
	stepProfileLocation

	stepRequestInstrument
	stepMinExperience
	stepRequestLocation
	stepDescription
)

// Reply is what the caller should show the user after an input.
type Reply struct {
	Prompt string
	// Done marks a terminal submit; the session is gone.
	Done bool
	// Submitted holds the coordinator result for a completed request form.
	Submitted *matching.SubmitResult
}

// ErrNoSession is returned when an input arrives for a user without an
// in-progress form.
var ErrNoSession = errors.New("no form in progress")

type session struct {
	kind    FormKind
	step    step
	profile store.Musician
	request matching.NewRequest
}

// profileWriter is the store surface the profile form needs.
type profileWriter interface {
	UpsertMusician(ctx context.Context, m *store.Musician) error
}

// requestSubmitter is the coordinator surface the request form needs.
type requestSubmitter interface {
	Submit(ctx context.Context, req matching.NewRequest) (matching.SubmitResult, error)
}

// Manager tracks in-progress forms and feeds completed ones into the core.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session

	profiles profileWriter
	requests requestSubmitter
	logger   *slog.Logger
}

// NewManager constructs a form manager over the given collaborators.
func NewManager(profiles profileWriter, requests requestSubmitter, logger *slog.Logger) (*Manager, error) {
	if profiles == nil || requests == nil {
		return nil, errors.New("intake requires profile and request sinks")
	}
	return &Manager{
		sessions: make(map[int64]*session),
		profiles: profiles,
		requests: requests,
		logger:   logging.WithComponent(logger, "intake"),
	}, nil
}

// StartProfile begins (or restarts) the musician registration form.
func (m *Manager) StartProfile(userID int64) Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &session{
		kind:    FormProfile,
		step:    stepInstrument,
		profile: store.Musician{TelegramID: userID},
	}
	return Reply{Prompt: promptInstrument}
}

// StartRequest begins (or restarts) the band request form.
func (m *Manager) StartRequest(userID int64) Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &session{
		kind:    FormRequest,
		step:    stepRequestInstrument,
		request: matching.NewRequest{BandID: userID},
	}
	return Reply{Prompt: promptWantedInstrument}
}

// Cancel discards the user's in-progress form and reports whether one
// existed.
func (m *Manager) Cancel(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	delete(m.sessions, userID)
	return ok
}

// InProgress reports the kind of form the user is filling, if any.
func (m *Manager) InProgress(userID int64) (FormKind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return "", false
	}
	return sess.kind, true
}

// Advance feeds one input into the user's form and returns the next prompt.
// Submitting a completed form calls into the store or coordinator; on
// submission failure the session is kept so the user can retry the last
// input. The lock is held for the whole transition, submit included, so
// concurrent inputs for the same user cannot interleave a step.
func (m *Manager) Advance(ctx context.Context, userID int64, input string) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return Reply{}, ErrNoSession
	}

	input = strings.TrimSpace(input)

	switch sess.step {
	case stepInstrument:
		sess.profile.Instrument = store.NormalizeInstrument(strings.ToLower(input))
		sess.step = stepExperience
		return Reply{Prompt: promptExperience}, nil

	case stepExperience:
		years, err := parseYears(input)
		if err != nil {
			return Reply{Prompt: promptExperienceRetry}, nil
		}
		sess.profile.Experience = years
		sess.step = stepGenres
		return Reply{Prompt: promptGenres}, nil

	case stepGenres:
		sess.profile.Genres = input
		sess.step = stepBio
		return Reply{Prompt: promptBio}, nil

	case stepBio:
		sess.profile.About = input
		sess.step = stepProfileLocation
		return Reply{Prompt: promptLocation}, nil

	case stepProfileLocation:
		if input == "" {
			return Reply{Prompt: promptLocation}, nil
		}
		sess.profile.Location = input
		if err := m.profiles.UpsertMusician(ctx, &sess.profile); err != nil {
			return Reply{}, fmt.Errorf("save profile: %w", err)
		}
		delete(m.sessions, userID)
		m.logger.Info("profile registered", slog.Int64("musician_id", userID))
		return Reply{Prompt: promptProfileSaved, Done: true}, nil

	case stepRequestInstrument:
		sess.request.Instrument = store.NormalizeInstrument(strings.ToLower(input))
		sess.step = stepMinExperience
		return Reply{Prompt: promptMinExperience}, nil

	case stepMinExperience:
		years, err := parseYears(input)
		if err != nil {
			return Reply{Prompt: promptMinExperienceRetry}, nil
		}
		sess.request.MinExperience = years
		sess.step = stepRequestLocation
		return Reply{Prompt: promptLocation}, nil

	case stepRequestLocation:
		if input == "" {
			return Reply{Prompt: promptLocation}, nil
		}
		sess.request.Location = input
		sess.step = stepDescription
		return Reply{Prompt: promptDescription}, nil

	case stepDescription:
		if input == "" {
			input = "No description"
		}
		sess.request.Description = input
		result, err := m.requests.Submit(ctx, sess.request)
		if err != nil {
			return Reply{}, fmt.Errorf("submit request: %w", err)
		}
		delete(m.sessions, userID)
		return Reply{
			Prompt:    fmt.Sprintf(promptRequestCreated, result.RequestID, result.Genre, result.Candidates),
			Done:      true,
			Submitted: &result,
		}, nil
	}

	return Reply{}, fmt.Errorf("form in unknown step %d", sess.step)
}

func parseYears(input string) (int, error) {
	years, err := strconv.Atoi(input)
	if err != nil {
		return 0, err
	}
	if years < 0 {
		return 0, errors.New("negative years")
	}
	return years, nil
}

const (
	promptInstrument         = "Which instrument do you play? (vocal, guitar, bass, drums, keys, other)"
	promptWantedInstrument   = "Which instrument are you looking for? (vocal, guitar, bass, drums, keys, other)"
	promptExperience         = "How many years have you been playing?"
	promptExperienceRetry    = "Please enter a whole number of years."
	promptMinExperience      = "Minimum years of experience required?"
	promptMinExperienceRetry = "Please enter a whole number of years."
	promptGenres             = "Which genres do you play? (comma-separated)"
	promptBio                = "Tell us a bit about yourself:"
	promptLocation           = "Where are you located? (city, district)"
	promptDescription        = "Describe the band (genre, experience, goals):"
	promptProfileSaved       = "Your musician profile has been saved."
	promptRequestCreated     = "Request #%d created. Genre: %s. Candidates notified: %d."
)
