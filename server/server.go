// Package server exposes gate synthesis environments as HTTP sessions.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/gate-synth-rl/gatesynth"
	"github.com/zeu5/gate-synth-rl/store"
)

// EnvironmentFactory builds the environment of a new session
type EnvironmentFactory func() (*gatesynth.Environment, error)

type session struct {
	lock    sync.Mutex
	env     *gatesynth.Environment
	episode int
	actions []int
}

type SessionServer struct {
	Addr    string
	ctx     context.Context
	server  *http.Server
	factory EnvironmentFactory
	logger  *slog.Logger
	// optional, finished episodes are saved under the session id
	store store.Store

	lock     *sync.Mutex
	sessions map[string]*session
}

func NewSessionServer(ctx context.Context, addr string, factory EnvironmentFactory, st store.Store, logger *slog.Logger) *SessionServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionServer{
		Addr:     addr,
		ctx:      ctx,
		factory:  factory,
		logger:   logger,
		store:    st,
		lock:     new(sync.Mutex),
		sessions: make(map[string]*session),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/sessions", s.handleCreate)
	r.POST("/sessions/:id/reset", s.handleReset)
	r.POST("/sessions/:id/step", s.handleStep)
	r.GET("/sessions/:id/actions", s.handleActions)
	r.GET("/sessions/:id/render", s.handleRender)
	r.DELETE("/sessions/:id", s.handleDelete)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler serves the session routes
func (s *SessionServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled
func (s *SessionServer) Start() error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("session server listening", slog.String("addr", s.Addr))

	select {
	case err := <-errCh:
		return err
	case <-s.ctx.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Sessions is the number of open sessions
func (s *SessionServer) Sessions() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.sessions)
}

func (s *SessionServer) get(c *gin.Context) (string, *session, bool) {
	id := c.Param("id")
	s.lock.Lock()
	sess, ok := s.sessions[id]
	s.lock.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return id, nil, false
	}
	return id, sess, true
}

// record saves the finished episode, errors are only logged
func (s *SessionServer) record(id string, sess *session) {
	if s.store == nil {
		return
	}
	record := store.NewEpisodeRecord(id, 0, sess.episode)
	record.Steps = sess.env.Steps()
	record.Won = sess.env.Status() == gatesynth.Won
	if record.Won {
		record.Reward = sess.env.FinalReward()
	}
	record.FinalDistance = sess.env.Distance()
	record.Actions = append(record.Actions, sess.actions...)
	if err := s.store.SaveEpisode(s.ctx, record); err != nil {
		s.logger.Error("failed to save episode", slog.String("session", id), slog.Any("error", err))
	}
}
