// Package server runs a live document on wall-clock time and exposes it over
// HTTP: the current markup, a websocket stream of behavior events, an
// accessibility audit of the live markup, the layout model kept in step
// with drag and drop reorders, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conneroisu/canon/internal/accessibility"
	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/config"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/markup"
	"github.com/conneroisu/canon/internal/metrics"
	"github.com/conneroisu/canon/internal/nodetree"
	"github.com/conneroisu/canon/internal/registry"
)

// ErrStopped is returned by requests that reach a server whose loop has
// exited.
var ErrStopped = errors.New("server: document loop stopped")

// Options configures a Server.
type Options struct {
	Config    *config.Config
	Behaviors []behavior.Behavior
	Logger    logging.Logger
	// Page is the markup served and driven by the server. Defaults to the
	// demo page.
	Page templ.Component
	// Tick is the wall-clock granularity of the document loop.
	Tick time.Duration
}

// Server serves one live document.
type Server struct {
	config   *config.Config
	logger   logging.Logger
	page     templ.Component
	tick     time.Duration
	router   chi.Router
	gatherer *prometheus.Registry
	registry *registry.Registry
	auditor  *accessibility.Engine
	layout   *nodetree.Layout

	doc     *dom.Document
	cancel  context.CancelFunc
	stopped chan struct{}
	wg      sync.WaitGroup

	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex

	httpServer  *http.Server
	serverMutex sync.Mutex
	startOnce   sync.Once
	stopOnce    sync.Once
}

// New creates a server with every behavior registered. The document is
// not parsed until Start.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	if opts.Page == nil {
		opts.Page = markup.Demo()
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.NewCollector("canon", gatherer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	logger := opts.Logger.WithComponent("server")
	reg := registry.New(opts.Logger, collector)
	for _, b := range opts.Behaviors {
		if err := reg.Register(b); err != nil {
			return nil, err
		}
	}

	s := &Server{
		config:   opts.Config,
		logger:   logger,
		page:     opts.Page,
		tick:     opts.Tick,
		gatherer: gatherer,
		registry: reg,
		auditor:  accessibility.NewEngine(opts.Logger),
		layout:   nodetree.NewLayout(),
		stopped:  make(chan struct{}),
		clients:  make(map[*websocket.Conn]*Client),
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Registry returns the registry driving the document.
func (s *Server) Registry() *registry.Registry { return s.registry }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(securityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.Get("/behaviors", s.handleBehaviors)
		r.Post("/actions", s.handleAction)
		r.Get("/audit", s.handleAudit)
		r.Get("/layout", s.handleLayout)
	})
	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.config.Server.AllowedOrigins) > 0 {
		return s.config.Server.AllowedOrigins
	}
	port := strconv.Itoa(s.config.Server.Port)
	return []string{
		"http://" + net.JoinHostPort(s.config.Server.Host, port),
		"http://localhost:" + port,
		"http://127.0.0.1:" + port,
	}
}

// Start renders the page, attaches every behavior, and runs the document
// loop on wall-clock time until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		err = s.start(ctx)
	})
	return err
}

func (s *Server) start(ctx context.Context) error {
	html, err := markup.Render(ctx, s.page)
	if err != nil {
		return err
	}
	doc, err := dom.ParseString(html)
	if err != nil {
		return err
	}
	if err := s.registry.Start(ctx, doc); err != nil {
		if s.registry.Document() == nil {
			return err
		}
		s.logger.Warn(ctx, err, "some behaviors failed to attach")
	}
	s.trackLayout(ctx, doc)
	doc.AddEventListener(behavior.EventReorder, func(ev *dom.Event) { s.onReorder(ctx, ev) })
	doc.Loop().Flush()
	s.doc = doc

	events := s.registry.Watch()
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		defer close(s.stopped)
		if err := doc.Loop().Run(loopCtx, s.tick); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn(ctx, err, "document loop exited")
		}
		s.registry.Dispose()
	}()
	go func() {
		defer s.wg.Done()
		s.forward(loopCtx, events)
		s.registry.UnWatch(events)
	}()

	s.logger.Info(ctx, "document attached", "roots", s.registry.ActiveRoots(), "behaviors", s.registry.Count())
	return nil
}

// forward relays registry events to websocket clients.
func (s *Server) forward(ctx context.Context, events <-chan registry.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.broadcast(newUpdateMessage(ev))
		}
	}
}

// do runs fn on the document loop and waits for it to finish.
func (s *Server) do(ctx context.Context, fn func(doc *dom.Document)) error {
	if s.doc == nil {
		return ErrStopped
	}
	done := make(chan struct{})
	s.doc.Loop().Post(func() {
		fn(s.doc)
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListenAndServe starts the document and serves HTTP on the configured
// address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server, closes websocket clients, and stops the
// document loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.serverMutex.Lock()
	server := s.httpServer
	s.serverMutex.Unlock()

	var err error
	if server != nil {
		err = server.Shutdown(ctx)
	}
	s.Stop()
	return err
}

// Stop closes every client and stops the document loop, disposing every
// attachment. It waits for the loop goroutines to exit.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			delete(s.clients, conn)
			close(client.send)
		}
		s.clientsMutex.Unlock()

		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
	})
}
