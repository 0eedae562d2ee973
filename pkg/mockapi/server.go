package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/apptrack/pkg/logger"
	"github.com/dmitrymomot/apptrack/pkg/requestid"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

const maxBodySize = 64 << 10

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRegistry shares an existing registry.
func WithRegistry(r *Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.reg = r
		}
	}
}

// Server is the http.Handler of the mock API.
type Server struct {
	reg    *Registry
	log    *slog.Logger
	router chi.Router

	mu       sync.Mutex
	failures map[string][]int
}

// New builds the router.
func New(opts ...Option) *Server {
	s := &Server{
		reg:      NewRegistry(),
		log:      logger.Discard(),
		failures: make(map[string][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("mockapi"))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(s.logRequests)
	r.Use(s.injectFailures)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Route("/users", func(r chi.Router) {
		r.Post("/add/", s.createUser)
		r.Post("/session/", s.createSession)
		r.Get("/{userID}/sessions/", s.listSessions)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Registry returns the backing registry.
func (s *Server) Registry() *Registry {
	return s.reg
}

// FailNext makes the next request to path answer status with an error body.
// Calls queue up: each injected failure is consumed by one request.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], status)
}

func (s *Server) nextFailure(path string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failures[path]
	if len(queue) == 0 {
		return 0, false
	}
	s.failures[path] = queue[1:]
	return queue[0], true
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, ok := s.nextFailure(r.URL.Path); ok {
			writeJSON(w, status, message{Msg: http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
			logger.StatusCode(ww.Status()),
			logger.Duration(time.Since(start)),
		)
	})
}

type message struct {
	Msg string `json:"msg"`
}

type sessionView struct {
	ID          int64     `json:"user_session_id"`
	Type        string    `json:"type"`
	Tag         string    `json:"tag,omitempty"`
	Route       string    `json:"route"`
	Vertical    string    `json:"vertical"`
	CountryCode string    `json:"country_code"`
	RecordedAt  time.Time `json:"recorded_at"`
	*tracking.Attribution
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var p tracking.UserPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateUser(p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, created := s.reg.AddUser(p)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.log.InfoContext(r.Context(), "user registered", logger.UserID(id), logger.DeviceID(p.DeviceID, p.DeviceIDType))
	}
	writeJSON(w, status, tracking.UserCreated{Msg: "ok", UserID: id})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var p tracking.SessionPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateSession(p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.reg.AddSession(p)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.log.InfoContext(r.Context(), "session recorded",
		logger.UserID(sess.UserID),
		logger.SessionID(sess.ID),
		logger.Vertical(p.Vertical),
		slog.String("tag", p.Tag),
	)
	writeJSON(w, http.StatusCreated, tracking.SessionCreated{Msg: "ok", UserID: sess.UserID, UserSessionID: sess.ID})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: user id", ErrInvalidBody))
		return
	}
	if _, ok := s.reg.User(userID); !ok {
		writeError(w, http.StatusNotFound, ErrUnknownUser)
		return
	}

	sessions := s.reg.Sessions(userID)
	views := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sessionView{
			ID:          sess.ID,
			Type:        sess.Payload.Type,
			Tag:         sess.Payload.Tag,
			Route:       sess.Payload.Route,
			Vertical:    sess.Payload.Vertical,
			CountryCode: sess.Payload.CountryCode,
			RecordedAt:  sess.RecordedAt,
			Attribution: sess.Payload.Attribution,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func validateUser(p tracking.UserPayload) error {
	return required(map[string]string{
		"device_id":      p.DeviceID,
		"device_id_type": p.DeviceIDType,
		"app":            p.App,
		"vendor_id":      p.VendorID,
		"pseudo_id":      p.PseudoID,
		"acquired_route": p.AcquiredRoute,
	})
}

func validateSession(p tracking.SessionPayload) error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: user_id", ErrMissingField)
	}
	if err := required(map[string]string{
		"type":         p.Type,
		"route":        p.Route,
		"vertical":     p.Vertical,
		"country_code": p.CountryCode,
	}); err != nil {
		return err
	}
	if len(p.CountryCode) != 2 {
		return fmt.Errorf("%w: country_code must have two letters", ErrInvalidBody)
	}
	return nil
}

func required(fields map[string]string) error {
	var errs []error
	for name, v := range fields {
		if v == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, name))
		}
	}
	return errors.Join(errs...)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, message{Msg: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
