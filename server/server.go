package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-collaborate/internal/config"
	"github.com/jrsteele09/go-collaborate/registrations"
	"github.com/jrsteele09/go-collaborate/sessions"
	"github.com/jrsteele09/go-collaborate/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionStore saves local sessions and keeps Collaborate in step.
type SessionStore interface {
	Get(ctx context.Context, id string) (*sessions.Session, error)
	Save(ctx context.Context, session *sessions.Session) error
	Delete(ctx context.Context, id string) error
}

// RegistrationService applies registration changes.
type RegistrationService interface {
	Create(ctx context.Context, reg *registrations.Registration) error
	UpdateStatus(ctx context.Context, id string, status registrations.Status) (*registrations.Registration, error)
	MarkAttended(ctx context.Context, id, userID string) (*registrations.Registration, error)
	JoinURL(ctx context.Context, id string) (*registrations.JoinLink, error)
	RecordingLink(ctx context.Context, id string) (string, error)
}

// Services are the components the HTTP API exposes.
type Services struct {
	Users         users.UserRepo
	Sessions      SessionStore
	Registrations RegistrationService
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	services Services
	logger   zerolog.Logger
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(config config.Config, services Services, opts ...Option) *Server {
	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		services: services,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			method, path = "", route
		}
		fmt.Printf("[%-19s] %s\n", colourMethod(method), path)
	}
}
