// Package server wraps the status http listener with graceful shutdown.
package server

import (
	"context"
	"net/http"
	"time"
)

type Server struct {
	http *http.Server
}

func New(addr string, h http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}}
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Stop shuts the listener down gracefully, bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
