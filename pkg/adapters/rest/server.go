package rest

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"github.com/aretw0/cirrus/pkg/core"
)

// DefaultPrefix is the collection path served when none is configured.
const DefaultPrefix = "/notes"

// ServerConfig holds the configuration for the reference server.
type ServerConfig struct {
	Backend core.Remote // where notes are kept, usually a memory.Remote
	Prefix  string      // collection path, defaults to DefaultPrefix
	APIKey  string      // when set, requests must carry it as a bearer token
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Server exposes a core.Remote over HTTP with the routes Client expects.
type Server struct {
	backend core.Remote
	prefix  string
	apiKey  string
	logger  *slog.Logger
	now     func() time.Time
	hub     *Hub
	router  *mux.Router
}

type mutationIDKeyType struct{}

var mutationIDKey = mutationIDKeyType{}

// NewServer creates a new Server.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	s := &Server{
		backend: cfg.Backend,
		prefix:  "/" + strings.Trim(cfg.Prefix, "/"),
		apiKey:  cfg.APIKey,
		logger:  cfg.Logger,
		now:     cfg.Clock,
		hub:     NewHub(cfg.Logger),
	}

	r := mux.NewRouter()
	r.Use(s.logRequests, s.auth)

	r.Methods(http.MethodGet).Path(s.prefix + "/events").Handler(s.hub)
	r.Methods(http.MethodGet, http.MethodHead).Path(s.prefix).HandlerFunc(s.list)

	m := r.NewRoute().Subrouter()
	m.Use(mutationMiddleware)
	m.Methods(http.MethodPost).Path(s.prefix).HandlerFunc(s.create)
	m.Methods(http.MethodPut).Path(s.prefix + "/{id}").HandlerFunc(s.update)
	m.Methods(http.MethodDelete).Path(s.prefix + "/{id}").HandlerFunc(s.delete)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the event stream hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Prefix returns the collection path.
func (s *Server) Prefix() string {
	return s.prefix
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled", "method", r.Method, "url", r.URL, "duration", m.Duration, "status", m.Code)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func mutationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(MutationHeader)
		if raw == "" {
			http.Error(w, MutationHeader+" header is required", http.StatusBadRequest)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid "+MutationHeader, http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), mutationIDKey, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func mutationID(ctx context.Context) string {
	id, _ := ctx.Value(mutationIDKey).(string)
	return id
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	notes, err := s.backend.FetchAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	records := make([]Record, 0, len(notes))
	for _, n := range notes {
		records = append(records, toRecord(n))
	}
	s.write(w, http.StatusOK, records)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decode(w, r)
	if !ok {
		return
	}
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	s.stamp(&rec)

	n, err := s.backend.Create(r.Context(), rec.note())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("note created", "id", n.ID, "mutation_id", mutationID(r.Context()))
	s.hub.Broadcast(Change{Type: ChangeCreated, ID: n.ID, At: s.now()})
	s.write(w, http.StatusCreated, toRecord(n))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decode(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	rec.ID = id
	s.stamp(&rec)

	n, err := s.backend.Update(r.Context(), id, rec.note())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("note updated", "id", id, "mutation_id", mutationID(r.Context()))
	s.hub.Broadcast(Change{Type: ChangeUpdated, ID: id, At: s.now()})
	s.write(w, http.StatusOK, toRecord(n))
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.backend.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("note deleted", "id", id, "mutation_id", mutationID(r.Context()))
	s.hub.Broadcast(Change{Type: ChangeDeleted, ID: id, At: s.now()})
	w.WriteHeader(http.StatusNoContent)
}

// stamp fills in timestamps a client left out.
func (s *Server) stamp(rec *Record) {
	now := s.now()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Record, bool) {
	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return Record{}, false
	}
	return rec, true
}

func (s *Server) write(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write out", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		s.logger.Error("backend failed", "method", r.Method, "url", r.URL, "err", err)
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}
}
