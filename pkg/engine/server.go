package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/stubkit/stubd/pkg/config"
	"github.com/stubkit/stubd/pkg/httputil"
	"github.com/stubkit/stubd/pkg/logging"
	"github.com/stubkit/stubd/pkg/metrics"
)

// Server runs the stub engine behind one HTTP listener: the control API
// under ControlPrefix and the catch-all stub handler for everything else.
type Server struct {
	cfg     *config.ServerConfiguration
	engine  *Engine
	log     *slog.Logger
	metrics *metrics.Registry
	version string

	proxyClient *http.Client

	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	running    bool
	startTime  time.Time
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithServerLogger sets the operational logger.
func WithServerLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVersion sets the version string reported by the control API.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithServerProxyClient sets the HTTP client used for proxy actions.
func WithServerProxyClient(client *http.Client) ServerOption {
	return func(s *Server) {
		s.proxyClient = client
	}
}

// NewServer creates a Server from cfg. A nil cfg selects the defaults.
func NewServer(cfg *config.ServerConfiguration, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}
	cfg.Normalize()

	s := &Server{
		cfg:     cfg,
		log:     logging.Nop(),
		metrics: metrics.NewRegistry(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = New(WithLogger(s.log), WithProxyClient(s.proxyClient), WithMetrics(s.metrics))
	return s
}

// Engine exposes the underlying engine for library use and tests.
func (s *Server) Engine() *Engine {
	return s.engine
}

// Handler builds the full request router. Exposed so tests can drive the
// server through httptest without opening a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	control := NewControlAPI(s.engine, s.log, s.metrics, s.version)
	control.Routes(mux)

	// Unknown control paths are API errors, never stubbed traffic.
	mux.HandleFunc(ControlPrefix+"/", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "unknown_endpoint", "unknown control endpoint: "+r.URL.Path)
	})

	mux.Handle("/", NewHandler(s.engine, s.cfg.MaxBodyBytes, s.log, s.metrics))
	return mux
}

// LoadStubDirs registers every stub definition found under the configured
// stub directories. Called by Start; exposed for library use.
func (s *Server) LoadStubDirs() error {
	for _, dir := range s.cfg.StubDirs {
		payloads, err := config.LoadStubDir(dir)
		if err != nil {
			return err
		}
		for _, p := range payloads {
			st, err := p.ToStub()
			if err != nil {
				return fmt.Errorf("invalid stub in %s: %w", dir, err)
			}
			s.engine.RegisterStub(st)
		}
		s.log.Info("loaded stub directory", "dir", dir, "stubs", len(payloads))
	}
	return nil
}

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	if err := s.LoadStubDirs(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to bind port %d: %w", s.cfg.Port, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	s.log.Info("starting stub server", "addr", listener.Addr().String())
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.log.Info("stopping stub server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.running = false
	return nil
}

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Uptime returns whole seconds since Start, 0 when stopped.
func (s *Server) Uptime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}
