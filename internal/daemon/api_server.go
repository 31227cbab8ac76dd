package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bandfinder/internal/api"
	"bandfinder/internal/config"
	"bandfinder/internal/matching"
	"bandfinder/internal/services"
	"bandfinder/internal/store"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := cfg.Paths.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.withAuth(token, srv.handleStatus))
	mux.HandleFunc("/api/musicians", srv.withAuth(token, srv.handleMusicians))
	mux.HandleFunc("/api/musicians/", srv.withAuth(token, srv.handleMusician))
	mux.HandleFunc("/api/requests", srv.withAuth(token, srv.handleRequests))
	mux.HandleFunc("/api/requests/", srv.withAuth(token, srv.handleRequest))
	mux.HandleFunc("/api/notify/test", srv.withAuth(token, srv.handleNotifyTest))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		RequestStats: map[string]int{
			api.StatusOpen:   status.OpenRequests,
			api.StatusClosed: status.ClosedCount,
		},
	})
}

// handleMusicians serves the collection route: GET with instrument and
// min_experience query parameters runs the musician search.
func (s *apiServer) handleMusicians(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	instrument := strings.TrimSpace(query.Get("instrument"))
	minExperience := 0
	if raw := strings.TrimSpace(query.Get("min_experience")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "min_experience must be a non-negative integer")
			return
		}
		minExperience = parsed
	}

	musicians, err := s.daemon.coordinator.SearchMusicians(r.Context(), instrument, minExperience)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.MusicianListResponse{Musicians: api.FromMusicians(musicians)})
}

func (s *apiServer) handleMusician(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, strings.TrimPrefix(r.URL.Path, "/api/musicians/"), "musician")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		musician, err := s.daemon.store.GetMusician(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if musician == nil {
			s.writeError(w, http.StatusNotFound, "musician not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromMusician(musician))

	case http.MethodPut:
		var body api.Musician
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Experience < 0 {
			s.writeError(w, http.StatusBadRequest, "experience must be non-negative")
			return
		}
		musician := &store.Musician{
			TelegramID: id,
			Instrument: store.NormalizeInstrument(strings.ToLower(body.Instrument)),
			Experience: body.Experience,
			Genres:     body.Genres,
			Location:   body.Location,
			About:      body.About,
		}
		if err := s.daemon.store.UpsertMusician(r.Context(), musician); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromMusician(musician))

	case http.MethodPatch:
		s.patchMusician(w, r, id)

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) patchMusician(w http.ResponseWriter, r *http.Request, id int64) {
	var patch api.MusicianPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	existing, err := s.daemon.store.GetMusician(ctx, id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		s.writeError(w, http.StatusNotFound, "musician not found")
		return
	}

	if patch.Experience != nil && *patch.Experience < 0 {
		s.writeError(w, http.StatusBadRequest, "experience must be non-negative")
		return
	}

	type fieldUpdate struct {
		apply func() error
	}
	var updates []fieldUpdate
	if patch.Instrument != nil {
		instrument := store.NormalizeInstrument(strings.ToLower(*patch.Instrument))
		updates = append(updates, fieldUpdate{func() error { return s.daemon.store.SetInstrument(ctx, id, instrument) }})
	}
	if patch.Experience != nil {
		updates = append(updates, fieldUpdate{func() error { return s.daemon.store.SetExperience(ctx, id, *patch.Experience) }})
	}
	if patch.Genres != nil {
		updates = append(updates, fieldUpdate{func() error { return s.daemon.store.SetGenres(ctx, id, *patch.Genres) }})
	}
	if patch.Location != nil {
		updates = append(updates, fieldUpdate{func() error { return s.daemon.store.SetLocation(ctx, id, *patch.Location) }})
	}
	if patch.About != nil {
		updates = append(updates, fieldUpdate{func() error { return s.daemon.store.SetBio(ctx, id, *patch.About) }})
	}
	for _, update := range updates {
		if err := update.apply(); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	musician, err := s.daemon.store.GetMusician(ctx, id)
	if err != nil || musician == nil {
		s.writeError(w, http.StatusInternalServerError, "reload updated profile failed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromMusician(musician))
}

// handleRequests serves the collection route: POST submits a request, GET
// lists a band's own requests.
func (s *apiServer) handleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body api.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.BandID <= 0 {
			s.writeError(w, http.StatusBadRequest, "bandId is required")
			return
		}
		if body.MinExperience < 0 {
			s.writeError(w, http.StatusBadRequest, "minExperience must be non-negative")
			return
		}
		result, err := s.daemon.coordinator.Submit(r.Context(), matching.NewRequest{
			BandID:        body.BandID,
			Instrument:    store.NormalizeInstrument(strings.ToLower(body.Instrument)),
			MinExperience: body.MinExperience,
			Location:      body.Location,
			Description:   body.Description,
		})
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		created, err := s.daemon.store.GetRequest(r.Context(), result.RequestID)
		if err != nil || created == nil {
			s.writeError(w, http.StatusInternalServerError, "reload created request failed")
			return
		}
		s.writeJSON(w, http.StatusCreated, api.SubmitResponse{
			Request:    api.FromRequest(created),
			Genre:      result.Genre,
			Candidates: result.Candidates,
		})

	case http.MethodGet:
		bandID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("band_id")), 10, 64)
		if err != nil || bandID <= 0 {
			s.writeError(w, http.StatusBadRequest, "band_id is required")
			return
		}
		requests, err := s.daemon.store.ListRequestsByOwner(r.Context(), bandID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.RequestListResponse{Requests: api.FromRequests(requests)})

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/requests/")
	if idStr, ok := strings.CutSuffix(rest, "/accept"); ok {
		id, valid := s.parseID(w, idStr, "request")
		if !valid {
			return
		}
		s.acceptRequest(w, r, id)
		return
	}

	id, ok := s.parseID(w, rest, "request")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		request, err := s.daemon.store.GetRequest(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if request == nil {
			s.writeError(w, http.StatusNotFound, "request not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.RequestResponse{Request: api.FromRequest(request)})

	case http.MethodDelete:
		bandID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("band_id")), 10, 64)
		if err != nil || bandID <= 0 {
			s.writeError(w, http.StatusBadRequest, "band_id is required")
			return
		}
		deleted, err := s.daemon.store.DeleteRequestByOwner(r.Context(), id, bandID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !deleted {
			// Either the request does not exist, belongs to another band, or
			// has already been filled. Filled requests stay on record.
			s.writeError(w, http.StatusNotFound, "open request not found for this band")
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) acceptRequest(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body api.AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MusicianID <= 0 {
		s.writeError(w, http.StatusBadRequest, "musicianId is required")
		return
	}
	outcome, err := s.daemon.coordinator.Accept(r.Context(), id, body.MusicianID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// A refused claim is a normal outcome, reported in the payload rather
	// than as an HTTP error.
	s.writeJSON(w, http.StatusOK, api.AcceptResponse{
		Accepted:  outcome.Accepted,
		RequestID: outcome.RequestID,
		BandID:    outcome.BandID,
	})
}

func (s *apiServer) handleNotifyTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body api.NotifyTestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.RecipientID <= 0 {
		s.writeError(w, http.StatusBadRequest, "recipientId is required")
		return
	}
	if err := s.daemon.TestNotification(r.Context(), body.RecipientID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrExternal) {
			status = http.StatusBadGateway
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (s *apiServer) parseID(w http.ResponseWriter, idStr, kind string) (int64, bool) {
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, kind+" not found")
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid "+kind+" id")
		return 0, false
	}
	return id, true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
