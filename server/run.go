// File: server/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker startup, the per-worker serve loop, and graceful shutdown.

package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/momentics/hioload-http/reactor"
	"github.com/momentics/hioload-http/sockets"
)

// worker is one event loop: a reactor plus its dispatcher.
type worker struct {
	index      int
	loop       reactor.Reactor
	dispatcher *sockets.Dispatcher
}

// Run starts every worker and blocks until Shutdown is called. All
// workers listen on the configured address with port reuse, so the
// kernel spreads accepted connections across them.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server: already running")
	}
	s.started = true
	s.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.NumWorkers; i++ {
		w, err := s.startWorker(i)
		if err != nil {
			s.stopWorkers()
			return err
		}
		s.mu.Lock()
		s.workers = append(s.workers, w)
		s.mu.Unlock()

		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			if err := w.loop.Serve(w.dispatcher); err != nil {
				glog.Errorf("worker %d: serve: %v", w.index, err)
			}
		}(w)
	}
	glog.Infof("listening on %s with %d workers", s.cfg.ListenAddr, s.cfg.NumWorkers)

	<-s.shutdownCh
	s.stopWorkers()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(s.cfg.ShutdownTimeout):
		return fmt.Errorf("server: shutdown timeout after %v", s.cfg.ShutdownTimeout)
	}
}

// Shutdown signals Run to stop all workers. Safe to call once.
func (s *Server) Shutdown() {
	close(s.shutdownCh)
}

// startWorker builds one reactor+dispatcher pair, wires the router as
// the accept binding, and registers its debug probe.
func (s *Server) startWorker(index int) (*worker, error) {
	loop, err := reactor.New(s.cfg.ReadBufferSize)
	if err != nil {
		return nil, fmt.Errorf("worker %d: %w", index, err)
	}
	if err := loop.Listen(s.cfg.ListenAddr); err != nil {
		loop.Stop()
		return nil, fmt.Errorf("worker %d: %w", index, err)
	}
	d := sockets.NewDispatcher(loop, index)
	d.SetAcceptHandler(s.router.Accept)

	if s.cfg.EnableDebug {
		s.probes.RegisterProbe(fmt.Sprintf("worker.%d.sockets", index), func() any {
			return d.Len()
		})
	}
	return &worker{index: index, loop: loop, dispatcher: d}, nil
}

func (s *Server) stopWorkers() {
	s.mu.Lock()
	workers := s.workers
	s.mu.Unlock()
	for _, w := range workers {
		if err := w.loop.Stop(); err != nil {
			glog.Warningf("worker %d: stop: %v", w.index, err)
		}
	}
}
