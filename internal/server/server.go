package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gosimple/slug"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/muurk/stepwise/internal/config"
	"github.com/muurk/stepwise/internal/discovery"
	"github.com/muurk/stepwise/internal/location"
	"github.com/muurk/stepwise/internal/logging"
	"github.com/muurk/stepwise/internal/version"
	"github.com/muurk/stepwise/internal/wizard"
)

// SessionCookie names the cookie that ties a browser to its session
const SessionCookie = "stepwise_session"

// shutdownTimeout bounds a graceful shutdown
const shutdownTimeout = 10 * time.Second

const (
	// DefaultSessionTTL is how long an unused session keeps its wizard mounted
	DefaultSessionTTL = 30 * time.Minute

	// DefaultMaxSessions caps the session map; the least recently used
	// session is evicted to make room
	DefaultMaxSessions = 1024
)

// Config holds the server configuration
type Config struct {
	Host      string
	Port      int
	LogLevel  string
	Advertise bool // Register the server over mDNS

	SessionTTL  time.Duration // Zero means DefaultSessionTTL
	MaxSessions int           // Zero means DefaultMaxSessions
}

// Server serves one wizard definition over HTTP. Every browser session gets
// its own location history and its own mounted wizard.
type Server struct {
	config    *Config
	def       *config.Definition
	wizardCfg wizard.Config
	stepRoute *location.Pattern

	ctx    context.Context
	cancel context.CancelFunc

	listener   net.Listener
	httpServer *http.Server
	advert     *discovery.Advertisement

	mu          sync.Mutex
	sessions    map[string]*session
	activeConns map[*websocket.Conn]string

	sessionsCreated atomic.Int64
	sessionsEvicted atomic.Int64
	requests        atomic.Int64
}

// New creates a new Server instance
func New(cfg *Config, def *config.Definition) (*Server, error) {
	if def == nil {
		return nil, errors.New("wizard definition is required")
	}

	if cfg.LogLevel != "" {
		if err := logging.Initialize(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:      cfg,
		def:         def,
		wizardCfg:   def.WizardConfig(),
		stepRoute:   location.StepRoute(def.WizardConfig().BasePath),
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*session),
		activeConns: make(map[*websocket.Conn]string),
	}

	go s.sweepSessions()
	return s, nil
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	logging.Info("Starting stepwise HTTP server",
		zap.String("addr", addr),
		zap.String("wizard", s.def.Name),
		zap.Int("steps", len(s.def.Steps)),
		zap.String("base_path", s.wizardCfg.BasePath),
		zap.String("log_level", s.config.LogLevel),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	if s.config.Advertise {
		if err := s.advertise(); err != nil {
			logging.Warn("mDNS advertisement failed, continuing without it", zap.Error(err))
		}
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) advertise() error {
	tcp, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("cannot advertise non-TCP address %s", s.listener.Addr())
	}

	instance := "stepwise"
	if name := slug.Make(s.def.Name); name != "" {
		instance += "-" + name
	}

	advert, err := discovery.Advertise(instance, tcp.Port, discovery.Info{
		Wizard:   s.def.Name,
		BasePath: s.wizardCfg.BasePath,
		Steps:    len(s.def.Steps),
		Version:  version.Version,
	})
	if err != nil {
		return err
	}
	s.advert = advert
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.advert != nil {
		s.advert.Shutdown()
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		if err = s.httpServer.Shutdown(ctx); err != nil {
			logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		}
	}

	// Hijacked WebSocket connections are not tracked by http.Server
	s.mu.Lock()
	for conn, addr := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	s.cancel()
	for _, sess := range sessions {
		sess.unmount()
	}

	logging.Sync()
	return err
}

// addSession stores a new session, evicting the least recently used one
// when the map is full. Sessions with an open event stream are kept.
func (s *Server) addSession(sess *session) {
	var evicted *session

	s.mu.Lock()
	if len(s.sessions) >= s.config.MaxSessions {
		for _, cand := range s.sessions {
			if cand.subscribers() > 0 {
				continue
			}
			if evicted == nil || cand.lastUsed.Load().Before(evicted.lastUsed.Load()) {
				evicted = cand
			}
		}
		if evicted != nil {
			delete(s.sessions, evicted.id)
		}
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	if evicted != nil {
		s.evict(evicted, "capacity")
	}
}

// sweepSessions evicts idle sessions until the server shuts down
func (s *Server) sweepSessions() {
	ticker := time.NewTicker(s.config.SessionTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.reapIdle(now)
		case <-s.ctx.Done():
			return
		}
	}
}

// reapIdle removes and unmounts every session idle at now. It returns the
// number of sessions evicted.
func (s *Server) reapIdle(now time.Time) int {
	var idle []*session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.idle(now, s.config.SessionTTL) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		s.evict(sess, "idle")
	}
	return len(idle)
}

func (s *Server) evict(sess *session, reason string) {
	sess.unmount()
	s.sessionsEvicted.Inc()
	logging.Debug("Session evicted",
		zap.String("session", sess.id),
		zap.String("reason", reason),
	)
}

// GetActiveConnections returns the number of open WebSocket connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

// GetActiveSessions returns the number of browser sessions
func (s *Server) GetActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) trackConn(conn *websocket.Conn, addr string) {
	s.mu.Lock()
	s.activeConns[conn] = addr
	s.mu.Unlock()
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.activeConns, conn)
	s.mu.Unlock()
}
