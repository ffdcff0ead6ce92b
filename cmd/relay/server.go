package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"graphseal/internal/app"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/graph"
	"graphseal/internal/relay"
)

const maxBody = 1 << 20

type server struct {
	w   *app.Wire
	log *slog.Logger
	now func() time.Time
}

func newServer(w *app.Wire) *server {
	return &server{w: w, log: w.Logger.With("component", "relay"), now: time.Now}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.accessLog)

	r.Post("/put", s.handlePut)
	r.Get("/node/{soul}", s.handleNode)
	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.w.Registry, promhttp.HandlerOpts{}))
	return r
}

func (s *server) handlePut(rw http.ResponseWriter, r *http.Request) {
	var m domain.Mutation
	dec := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxBody))
	if err := dec.Decode(&m); err != nil {
		http.Error(rw, "invalid mutation: "+err.Error(), http.StatusBadRequest)
		return
	}
	// Only the firewall may set these.
	m.Plain, m.Writer, m.Faith = nil, "", false

	if !s.w.Limiter.Allow(m.Soul, s.now()) {
		http.Error(rw, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	v, err := s.w.Gateway.Put(r.Context(), m, nil)
	id := v.Put.ID
	if id == "" {
		id = m.ID
	}
	switch {
	case v.Action == domain.Reject:
		writeJSON(rw, http.StatusForbidden, relay.Rejection{
			ID:   id,
			Err:  errs.ReasonOf(err),
			Code: string(errs.CodeOf(err)),
		})
	case err != nil:
		s.log.Error("store mutation", "soul", m.Soul, "key", m.Key, "err", err)
		http.Error(rw, "store failed", http.StatusInternalServerError)
	case v.Action == domain.Drop:
		writeJSON(rw, http.StatusAccepted, relay.Ack{ID: id})
	default:
		writeJSON(rw, http.StatusOK, relay.Ack{ID: id, OK: true})
	}
}

func (s *server) handleNode(rw http.ResponseWriter, r *http.Request) {
	soul, err := url.PathUnescape(chi.URLParam(r, "soul"))
	if err != nil {
		http.Error(rw, "invalid soul", http.StatusBadRequest)
		return
	}
	ms := s.w.Graph.Mutations(soul)
	if len(ms) == 0 {
		http.Error(rw, "not found", http.StatusNotFound)
		return
	}
	writeJSON(rw, http.StatusOK, graph.EncodeNode(soul, ms))
}

func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start),
			"req_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
