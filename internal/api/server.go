// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the paramlab HTTP API.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/paramlab/internal/api/middleware"
	"github.com/ManuGH/paramlab/internal/catalog"
	"github.com/ManuGH/paramlab/internal/health"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/openapi"
	"github.com/ManuGH/paramlab/internal/params"
)

// Config wires a Server.
type Config struct {
	Title   string
	Version string

	Stack middleware.StackConfig

	// UploadsDir receives files posted to /uploadfile/; empty keeps uploads
	// in memory only.
	UploadsDir string
	// MaxBodyBytes caps request bodies; zero uses the binder default.
	MaxBodyBytes int64
}

// Server owns the router and the handlers behind it.
type Server struct {
	cfg     Config
	binder  *params.Binder
	catalog *catalog.Service
	health  *health.Manager
	logger  zerolog.Logger

	routes []route
	doc    *openapi.Rendered
	router chi.Router
}

// New builds the server and its OpenAPI document. A nil health manager
// gets one without checkers.
func New(cfg Config, svc *catalog.Service, hm *health.Manager) (*Server, error) {
	if svc == nil {
		return nil, errors.New("api: catalog service is required")
	}
	if hm == nil {
		hm = health.NewManager(cfg.Version)
	}
	if cfg.Title == "" {
		cfg.Title = "paramlab"
	}

	s := &Server{
		cfg:     cfg,
		binder:  params.NewBinder(params.Options{MaxBodyBytes: cfg.MaxBodyBytes}),
		catalog: svc,
		health:  hm,
		logger:  log.WithComponent("api"),
	}
	s.routes = s.routeTable()

	specs := make([]openapi.Route, 0, len(s.routes))
	for _, rt := range s.routes {
		specs = append(specs, rt.Route)
	}
	doc, err := openapi.Build(openapi.Info{Title: cfg.Title, Version: cfg.Version}, specs)
	if err != nil {
		return nil, fmt.Errorf("api: build openapi document: %w", err)
	}
	if s.doc, err = openapi.Render(doc); err != nil {
		return nil, fmt.Errorf("api: render openapi document: %w", err)
	}

	s.router = s.newRouter()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Document returns the generated OpenAPI document.
func (s *Server) Document() *openapi.Rendered {
	return s.doc
}

func (s *Server) newRouter() chi.Router {
	r := middleware.NewRouter(s.cfg.Stack)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, errMethodNotAllowed)
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Get("/openapi.json", s.serveDocument("application/json", func() []byte { return s.doc.JSON }))
	r.Get("/openapi.yaml", s.serveDocument("application/yaml", func() []byte { return s.doc.YAML }))

	for _, rt := range s.routes {
		r.Method(rt.Method, rt.Path, s.handle(rt.handler))
	}
	s.logger.Debug().Int("routes", len(s.routes)).Msg("routes registered")
	return r
}

func (s *Server) serveDocument(contentType string, body func() []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body())
	}
}

// collect merges a binding failure into verr. Anything that is not a
// validation failure is returned unchanged.
func collect(verr *params.ValidationError, err error) error {
	if err == nil {
		return nil
	}
	var ve *params.ValidationError
	if errors.As(err, &ve) {
		verr.Append(ve)
		return nil
	}
	return err
}

// bindWithBody binds parameters into p and the JSON body into body, reporting
// problems from both together. The received body is echoed in the response
// even when only the parameters were rejected.
func (s *Server) bindWithBody(r *http.Request, p, body any) error {
	verr := &params.ValidationError{}
	if err := collect(verr, s.binder.Bind(r, p)); err != nil {
		return err
	}
	data, err := s.binder.ReadBody(r)
	if err != nil {
		return err
	}
	if err := collect(verr, s.binder.DecodeBytes(data, body)); err != nil {
		return err
	}
	if verr.OrNil() == nil {
		return nil
	}
	if verr.Body == nil && len(bytes.TrimSpace(data)) > 0 {
		verr.Body = params.EchoBody(data)
	}
	return verr
}
