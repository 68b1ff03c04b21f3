package cli

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/locuszoom/pkg/buildinfo"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/pipeline"
	"github.com/matzehuels/locuszoom/pkg/region"
)

// server exposes the pipeline over HTTP.
//
// The runner is swapped as a whole when the layout directory is reloaded, so
// an in-flight request keeps the registry it started with.
type server struct {
	logger  *log.Logger
	metrics *prometheus.Registry

	mu     sync.RWMutex
	runner *pipeline.Runner
}

func newServer(runner *pipeline.Runner, metrics *prometheus.Registry, logger *log.Logger) *server {
	return &server{runner: runner, metrics: metrics, logger: logger}
}

// current returns the runner serving new requests.
func (s *server) current() *pipeline.Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runner
}

// setLayouts replaces the layout registry for subsequent requests.
func (s *server) setLayouts(reg *layout.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.runner
	s.runner = pipeline.NewRunner(reg, old.Sources, old.Cache, old.Keyer, old.Logger)
}

// routes builds the HTTP API.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)
	r.Get("/plots/{layout}.{format}", s.handlePlot)
	r.Get("/layouts", s.handleLayouts)
	r.Get("/layouts/{kind}/{name}", s.handleLayout)
	r.Get("/sources", s.handleSources)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
	return r
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLog tags every request with an id and logs it on completion.
func (s *server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		logger := requestLogger(s.logger, id, r)
		next.ServeHTTP(rec, r.WithContext(withLogger(r.Context(), logger)))

		logger.Info("request",
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": buildinfo.Version})
}

// handlePlot renders GET /plots/{layout}.{format}?region=...
func (s *server) handlePlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Layout:   chi.URLParam(r, "layout"),
		Region:   q.Get("region"),
		LDRefVar: q.Get("ldrefvar"),
		Formats:  []string{chi.URLParam(r, "format")},
		Refresh:  q.Get("refresh") == "true",
		Logger:   loggerFromContext(r.Context()),
	}
	if v := q.Get("width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v))
			return
		}
		opts.Width = width
	}
	if v := q.Get("flank"); v != "" {
		flank, err := region.ParsePosition(v)
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Flank = flank
	}

	result, err := s.current().Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Region", result.Region.String())
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	if n := len(result.Faults); n > 0 {
		w.Header().Set("X-Panel-Faults", strconv.Itoa(n))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	all := s.current().Layouts.ListAll()
	out := make(map[string][]string, len(all))
	for k, names := range all {
		out[string(k)] = names
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleLayout returns a resolved layout. Repeated namespace=key=value query
// parameters override the template's namespaces.
func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	overrides, err := namespaceOverrides(r.URL.Query()["namespace"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	lay, err := s.current().Layouts.Get(kind, chi.URLParam(r, "name"), overrides)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lay)
}

func (s *server) handleSources(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.current().Sources)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, `{"code":"INTERNAL_ERROR","message":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError reports err as {"code", "message", "error"} with a status
// derived from its code.
func (s *server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	s.writeJSON(w, status, map[string]any{
		"code":    code,
		"message": errors.UserMessage(err),
		"error":   err.Error(),
	})
}

// httpStatus maps an error code to an HTTP status.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRegion, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConfig, errors.ErrCodeSourceResolution, errors.ErrCodeMissingURL,
		errors.ErrCodeUnsupportedSource, errors.ErrCodeFieldMismatch:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTransport:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format string) string {
	if format == pipeline.FormatSVG {
		return "image/svg+xml"
	}
	return "application/json"
}
