// Package server exposes the planner over HTTP: plan CRUD, provider
// discovery and verification, and the browser UI.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server is the HTTP front end.
type Server struct {
	srv    *http.Server
	router *mux.Router
}

// New creates a server listening on addr with all routes registered.
func New(addr string, handlers *Handlers) *Server {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/plans", handlers.CreatePlan).Methods("POST")
	api.HandleFunc("/plans", handlers.ListPlans).Methods("GET")
	api.HandleFunc("/plans/{id}", handlers.GetPlan).Methods("GET")
	api.HandleFunc("/plans/{id}", handlers.DeletePlan).Methods("DELETE")
	api.HandleFunc("/providers", handlers.ListProviders).Methods("GET")
	api.HandleFunc("/providers/verify", handlers.VerifyProvider).Methods("POST")

	router.HandleFunc("/health", handlers.Health).Methods("GET")
	router.HandleFunc("/", handlers.Index).Methods("GET")

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute, // plan generation can be slow
		},
		router: router,
	}
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
