package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dreamware/penguins/internal/api"
	"github.com/dreamware/penguins/internal/config"
	"github.com/dreamware/penguins/internal/dataset"
	"github.com/dreamware/penguins/internal/filter"
	"github.com/dreamware/penguins/internal/logging"
	"github.com/dreamware/penguins/internal/metrics"
	"github.com/dreamware/penguins/internal/session"
)

type server struct {
	registry *session.Registry
	controls api.Controls
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func newServer(cfg *config.Config, ds *dataset.Dataset, m *metrics.Metrics, logger *zap.Logger) *server {
	species := cfg.Controls.Species
	if len(species) == 0 {
		species = ds.Species()
	}
	m.DatasetRecords.Set(float64(ds.Len()))

	return &server{
		registry: session.NewRegistry(ds,
			session.WithLogger(logging.Component(logger, "sessions")),
			session.WithEngineOptions(filter.WithRecomputeHook(m.RecomputeHook()))),
		controls: api.NewControls(species, api.Slider{
			Min:   cfg.Controls.MassMin,
			Max:   cfg.Controls.MassMax,
			Step:  cfg.Controls.MassStep,
			Value: cfg.Controls.MassDefault,
		}),
		metrics: m,
		logger:  logging.Component(logger, "http"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.metrics.Instrument("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("/controls", s.metrics.Instrument("/controls", s.handleControls))
	mux.HandleFunc("/sessions", s.metrics.Instrument("/sessions", s.handleSessions))
	mux.HandleFunc("/sessions/", s.handleSession)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *server) handleControls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.controls)
}

// handleSessions lists sessions (GET) or opens one (POST)
func (s *server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.NewSessionList(s.registry.List()))
	case http.MethodPost:
		var req api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		sess := s.registry.Create(req.Resolve(s.controls.Defaults()))
		s.metrics.SessionOpened()
		writeJSON(w, http.StatusCreated, sessionResponse(sess))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSession routes /sessions/{id} and /sessions/{id}/{view}
func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(sub, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var h sessionHandler
	var method string
	switch sub {
	case "":
		h, method = s.handleSessionRoot, ""
	case "species":
		h, method = s.handleSetSpecies, http.MethodPut
	case "mass":
		h, method = s.handleSetMass, http.MethodPut
	case "summary":
		h, method = s.read(func(e *filter.Engine) any { return api.SummaryOf(e) }), http.MethodGet
	case "table":
		h, method = s.read(func(e *filter.Engine) any { return api.TableOf(e) }), http.MethodGet
	case "scatter":
		h, method = s.read(func(e *filter.Engine) any { return api.ScatterOf(e) }), http.MethodGet
	case "stats":
		h, method = s.read(func(e *filter.Engine) any { return api.FromStats(e.Stats()) }), http.MethodGet
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	route := "/sessions/{id}"
	if sub != "" {
		route += "/" + sub
	}
	s.metrics.Instrument(route, func(w http.ResponseWriter, r *http.Request) {
		if method != "" && r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		sess, err := s.registry.Get(id)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		h(w, r, sess)
	})(w, r)
}

// sessionHandler serves a request for an existing session
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *server) handleSessionRoot(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, sessionResponse(sess))
	case http.MethodDelete:
		if err := s.registry.Delete(sess.ID); err != nil {
			writeSessionError(w, err)
			return
		}
		s.metrics.SessionClosed()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *server) handleSetSpecies(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req api.SpeciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	params := sess.Engine().SetSpecies(req.Species)
	s.logger.Debug("species updated", zap.String("session", sess.ID), zap.Strings("species", req.Species))
	writeJSON(w, http.StatusOK, api.SessionResponse{ID: sess.ID, Params: api.FromParams(params)})
}

func (s *server) handleSetMass(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req api.MassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.MaxMass == nil {
		writeError(w, http.StatusBadRequest, "max_mass required")
		return
	}
	params := sess.Engine().SetMaxMass(*req.MaxMass)
	s.logger.Debug("mass updated", zap.String("session", sess.ID), zap.Float64("max_mass", *req.MaxMass))
	writeJSON(w, http.StatusOK, api.SessionResponse{ID: sess.ID, Params: api.FromParams(params)})
}

// read serves one display value of the session's engine
func (s *server) read(get func(*filter.Engine) any) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		writeJSON(w, http.StatusOK, get(sess.Engine()))
	}
}

func sessionResponse(sess *session.Session) api.SessionResponse {
	return api.SessionResponse{ID: sess.ID, Params: api.FromParams(sess.Engine().Params())}
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(api.Error{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.Error{Error: msg})
}
