// Package server provides an HTTP REST server that runs sandbox interpreter
// sessions for remote clients.
//
// A client creates a session and receives a token for it, then submits
// command chains to the session. Commands the interpreter answers itself are
// returned with their message; commands that must act on the client's tree or
// level are returned with the route the client should carry out.
//
// Routes:
//
//	POST   /api/v1/sessions               - create a new session and a token for it.
//	GET    /api/v1/sessions/{id}          - get the state of a session (token required).
//	DELETE /api/v1/sessions/{id}          - delete a session (token required).
//	POST   /api/v1/sessions/{id}/commands - run a chain of commands (token required).
//	GET    /api/v1/commands               - list every command, as "show commands" does.
//	GET    /api/v1/info                   - get version info on the server.
package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/server/api"
	"github.com/dekarrin/branchling/server/bls"
	"github.com/go-chi/chi/v5"
)

// Server is an HTTP REST server that provides branchling interpreter
// sessions. The zero-value of a Server should not be used directly; call New()
// to get one ready for use.
type Server struct {
	router chi.Router
	db     store.SessionRepository
	log    *log.Logger
}

// New creates a new Server from the given config. Unset values in cfg are
// given their defaults. If logger is nil, nothing is logged.
func New(cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	svc, err := bls.New(db, cfg.Locale, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := api.API{
		Backend:     svc,
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
		Log:         logger,
	}

	return &Server{
		router: newRouter(a),
		db:     db,
		log:    logger,
	}, nil
}

// ServeHTTP routes the request to the matching API endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ServeForever begins listening on the given address and port for HTTP REST
// client requests. If address is kept as "", it will default to "localhost". If
// port is less than 1, it will default to 8080. It only returns if the
// listener fails.
func (s *Server) ServeForever(address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	s.log.Info("Listening on " + listenAddress)
	return http.ListenAndServe(listenAddress, s)
}

// Close closes the server's connection to the database.
func (s *Server) Close() error {
	return s.db.Close()
}
