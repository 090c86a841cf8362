// Package server exposes a running game over HTTP and WebSocket. Every
// command from every client goes through one actor goroutine that owns the
// engine, so the board is never touched concurrently.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/remarqUK/sixstones/engine"
	"github.com/remarqUK/sixstones/engine/state"
)

// Config holds the server configuration.
type Config struct {
	Addr         string        // listen address (default "localhost:8080")
	ReadTimeout  time.Duration // default 30s
	WriteTimeout time.Duration // default 30s
	IdleTimeout  time.Duration // default 60s
	Version      string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		Version:      "dev",
	}
}

// Server is the HTTP and WebSocket front end of one game.
type Server struct {
	cfg     Config
	logger  log.Logger
	title   string
	opening []string

	jobs chan func(*engine.Engine)
	done chan struct{}
	once sync.Once
	seq  uint64 // owned by the actor

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// New starts the actor goroutine for eng. The engine must not be used by
// anything else afterwards. Call Close to stop the actor.
func New(eng *engine.Engine, cfg Config, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	s := &Server{
		cfg:     cfg,
		logger:  log.With(logger, "component", "server"),
		title:   eng.Defs.Game.Title,
		opening: eng.Start().Output,
		jobs:    make(chan func(*engine.Engine)),
		done:    make(chan struct{}),
		clients: map[*wsClient]struct{}{},
	}
	go s.actor(eng)
	return s
}

func (s *Server) actor(eng *engine.Engine) {
	for {
		select {
		case job := <-s.jobs:
			job(eng)
		case <-s.done:
			return
		}
	}
}

// errClosed is returned once the actor has stopped.
var errClosed = errors.New("server closed")

// do runs fn on the actor goroutine and waits for it.
func (s *Server) do(fn func(*engine.Engine)) error {
	finished := make(chan struct{})
	select {
	case s.jobs <- func(e *engine.Engine) { fn(e); close(finished) }:
	case <-s.done:
		return errClosed
	}
	<-finished
	return nil
}

// Close stops the actor. Pending requests fail with errClosed.
func (s *Server) Close() {
	s.once.Do(func() { close(s.done) })
}

// Command runs one player command and returns its result along with the new
// board, which is also pushed to every connected client.
func (s *Server) Command(input string) (CommandResult, error) {
	var res CommandResult
	err := s.do(func(e *engine.Engine) {
		r := e.Step(input)
		s.seq++
		res.Output = r.Output
		res.Events = make([]string, 0, len(r.Events))
		for _, evt := range r.Events {
			res.Events = append(res.Events, evt.Type)
		}
		res.Board = s.snapshot(e)
	})
	if err != nil {
		return res, err
	}
	level.Debug(s.logger).Log("msg", "command", "input", input, "turn", res.Board.Turn)
	s.pushBoard(res.Board)
	return res, nil
}

// Board returns the current board snapshot.
func (s *Server) Board() (BoardSnapshot, error) {
	var snap BoardSnapshot
	err := s.do(func(e *engine.Engine) { snap = s.snapshot(e) })
	return snap, err
}

// snapshot must run on the actor.
func (s *Server) snapshot(e *engine.Engine) BoardSnapshot {
	g := e.Board.Grid()
	snap := BoardSnapshot{
		Seq:      s.seq,
		Mode:     e.State.Mode,
		Width:    g.Width(),
		Height:   g.Height(),
		Rows:     g.Rows(),
		Turn:     e.State.TurnCount,
		GameOver: state.GetFlag(e.State, "game_over"),
	}
	if p := state.CurrentPlayer(e.State); p != nil && !snap.GameOver {
		snap.Current = p.ID
	}
	for _, p := range e.State.Players {
		snap.Players = append(snap.Players, PlayerScore{ID: p.ID, Name: p.Name, CPU: p.CPU, Score: p.Score})
	}
	return snap
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/board", s.handleBoard)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return s.loggingMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.cfg.Version,
		Game:    s.title,
		Clients: n,
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Board()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		level.Debug(s.logger).Log("method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and stops the actor.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("msg", "listening", "addr", s.cfg.Addr, "game", s.title)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	level.Info(s.logger).Log("msg", "server stopped")
	return nil
}
