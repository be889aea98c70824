package api

import (
	"net/http"

	"webfront/internal/service"

	"go.uber.org/zap"
)

type server struct {
	svc    *service.Service
	logger *zap.SugaredLogger
	debug  bool
}

// NewServer wires handlers to svc. In debug mode render errors are echoed
// back to the client.
func NewServer(svc *service.Service, logger *zap.SugaredLogger, debug bool) *server {
	return &server{svc: svc, logger: logger, debug: debug}
}

func (s *server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// pages
	mux.HandleFunc("GET /{$}", s.handleHome)
	return s.logRequests(mux)
}
