// File: server/server.go
// Package server is the embedding facade of hioload-http: it owns the
// route table, spawns one reactor+dispatcher pair per worker, and
// orchestrates startup, hot reload, and graceful shutdown.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioload-http/control"
	"github.com/momentics/hioload-http/httpd"
)

// Config holds all configurable parameters for a Server.
type Config struct {
	ListenAddr      string
	NumWorkers      int
	ReadBufferSize  int
	ShutdownTimeout time.Duration
	EnableDebug     bool
}

// DefaultConfig returns a baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8080",
		NumWorkers:      4,
		ReadBufferSize:  64 * 1024,
		ShutdownTimeout: 30 * time.Second,
		EnableDebug:     true,
	}
}

// Server is the multi-worker HTTP front end.
type Server struct {
	cfg    *Config
	router *httpd.Router
	store  *control.ConfigStore
	probes *control.DebugProbes

	mu      sync.Mutex
	workers []*worker
	started bool

	shutdownCh chan struct{}
}

// New creates a Server around cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NumWorkers < 1 {
		return nil, fmt.Errorf("server: NumWorkers must be positive, got %d", cfg.NumWorkers)
	}
	s := &Server{
		cfg:        cfg,
		router:     httpd.NewRouter(),
		store:      control.NewConfigStore(),
		probes:     control.NewDebugProbes(),
		shutdownCh: make(chan struct{}),
	}
	s.store.Merge(map[string]any{
		"listen_addr":  cfg.ListenAddr,
		"num_workers":  cfg.NumWorkers,
		"read_buf_len": cfg.ReadBufferSize,
	})
	return s, nil
}

// Router exposes the shared route table. Routes may be registered or
// reset at any time; live connections pick changes up on their next
// request.
func (s *Server) Router() *httpd.Router { return s.router }

// Control exposes the dynamic configuration store.
func (s *Server) Control() *control.ConfigStore { return s.store }

// Probes exposes the debug probe registry.
func (s *Server) Probes() *control.DebugProbes { return s.probes }

// Register binds handler to method and path on the shared router.
func (s *Server) Register(method, path string, handler httpd.Handler) {
	s.router.Register(method, path, handler)
}
