package admin

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/logging"
	"bulkhead-sim/internal/sim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Server struct {
	Sim      *sim.Simulator
	gatherer prometheus.Gatherer
	tpl      *template.Template
	mux      *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer wires the admin routes for s. A nil gatherer serves the default
// Prometheus registry on /metrics.
func NewServer(s *sim.Simulator, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"pct": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	}).ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, gatherer: gatherer, tpl: tpl, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/latency", s.handleLatency)
	s.mux.HandleFunc("/toggle-chaos", s.handleToggleChaos)
	s.mux.HandleFunc("/events", s.handleEvents)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

// Handler exposes the routes for embedding or tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	hs := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn("admin shutdown", "err", err)
			return err
		}
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.Sim.Snapshot()
	data := struct {
		Snap   sim.Snapshot
		Bounds config.LatencyBounds
	}{Snap: snap, Bounds: s.Sim.Bounds()}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		slog.Error("render index", "err", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

func (s *Server) handleLatency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	service := r.URL.Query().Get("service")
	value, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		http.Error(w, "value must be a number", http.StatusBadRequest)
		return
	}
	switch err := s.Sim.SetLatency(service, value); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, sim.ErrUnknownService):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, sim.ErrInvalidLatency):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleToggleChaos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chaos": s.Sim.ToggleChaos()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "after must be a sequence number", http.StatusBadRequest)
			return
		}
		after = n
	}
	events, latest := s.Sim.Events().Since(after)
	if events == nil {
		events = []sim.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "latest": latest})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"state":  s.Sim.State(),
		"run_id": s.Sim.RunID(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
