package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/contract"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/order"
	"github.com/goliatone/go-orderform/pkg/renderers/html"
)

// SessionCookie names the cookie carrying the visitor's session id.
const SessionCookie = "orderform_session"

const maxFormBytes = 64 << 10

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessions overrides the session store bounds.
func WithSessions(capacity int, ttl time.Duration) Option {
	return func(s *Server) {
		if capacity > 0 {
			s.sessionCapacity = capacity
		}
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMetrics configures the Prometheus collectors.
func WithMetrics(options ...MetricsOption) Option {
	return func(s *Server) {
		s.metricsOptions = append(s.metricsOptions, options...)
	}
}

// WithWaitTimeout bounds how long a request waits for field validation.
func WithWaitTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.waitTimeout = timeout
		}
	}
}

// Server serves the order page.
type Server struct {
	renderer   *html.Renderer
	controller func() *form.Controller
	logger     *zap.Logger

	sessionCapacity int
	sessionTTL      time.Duration
	waitTimeout     time.Duration
	metricsOptions  []MetricsOption

	sessions *sessions
	metrics  *metrics
	registry *prometheus.Registry
	router   chi.Router
}

// New builds a server. controller is called once per new visitor session.
func New(renderer *html.Renderer, controller func() *form.Controller, options ...Option) (*Server, error) {
	if renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	if controller == nil {
		return nil, errors.New("server: controller factory is required")
	}
	s := &Server{
		renderer:        renderer,
		controller:      controller,
		logger:          zap.NewNop(),
		sessionCapacity: 1024,
		sessionTTL:      30 * time.Minute,
		waitTimeout:     5 * time.Second,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	cfg := defaultMetricsConfig()
	for _, opt := range s.metricsOptions {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	s.registry = cfg.Registry
	s.metrics = newMetrics(cfg)

	s.sessions = newSessions(s.sessionCapacity, s.sessionTTL, controller, func(id string) {
		s.logger.Debug("form session expired", zap.String("session", id))
	})
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("order form listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleShow)
	r.Post("/", s.handleEdit)
	r.Get("/api/contract", s.handleContract)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.observeRequest(r.Method, route, status, elapsed)
		s.metrics.activeSessions.Set(float64(s.sessions.len()))
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	controller := s.session(w, r)
	s.render(w, http.StatusOK, controller.State())
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	controller := s.session(w, r)

	if r.PostForm.Get("action") == "reset" {
		controller.Reset()
		s.render(w, http.StatusOK, controller.State())
		return
	}

	if err := applyForm(controller, r); err != nil {
		s.logger.Info("rejected form post", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	waitCtx, cancel := context.WithTimeout(r.Context(), s.waitTimeout)
	defer cancel()
	if err := controller.Wait(waitCtx); err != nil {
		http.Error(w, "validation did not finish", http.StatusServiceUnavailable)
		return
	}

	status := http.StatusOK
	if r.PostForm.Get("action") == "submit" && controller.State().CanSubmit() {
		err := controller.Submit(r.Context())
		s.metrics.submissions.WithLabelValues(outcome(err)).Inc()
		if errors.Is(err, form.ErrSubmitInFlight) {
			status = http.StatusConflict
		}
	}
	s.render(w, status, controller.State())
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(contract.Raw())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *form.Controller {
	var current string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		current = cookie.Value
	}
	id, controller, created := s.sessions.lookup(current)
	if created {
		s.logger.Debug("form session started", zap.String("session", id))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessionTTL / time.Second),
	})
	return controller
}

func (s *Server) render(w http.ResponseWriter, status int, state form.State) {
	page, err := s.renderer.RenderString(state)
	if err != nil {
		s.logger.Error("render order page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}

// applyForm replays the posted fields as edits. Only fields whose value
// changed are edited so untouched fields keep showing no error.
func applyForm(controller *form.Controller, r *http.Request) error {
	current := controller.State().Values
	for _, field := range []string{order.FieldFullName, order.FieldSize} {
		if _, ok := r.PostForm[field]; !ok {
			continue
		}
		value := r.PostForm.Get(field)
		if field == order.FieldFullName && value == current.FullName {
			continue
		}
		if field == order.FieldSize && value == string(current.Size) {
			continue
		}
		if err := controller.ChangeField(field, value); err != nil {
			return err
		}
	}
	return controller.SetToppings(r.PostForm[order.FieldToppings])
}

func outcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var remote *client.RemoteError
	if errors.As(err, &remote) {
		return outcomeRejected
	}
	var transport *client.TransportError
	if errors.As(err, &transport) {
		return outcomeUnreachable
	}
	return outcomeError
}
