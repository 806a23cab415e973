package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zeu5/gate-synth-rl/gatesynth"
)

type stepRequest struct {
	Action *int `json:"action"`
}

type actionInfo struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
}

func (s *SessionServer) handleCreate(c *gin.Context) {
	env, err := s.factory()
	if err != nil {
		s.logger.Error("failed to create environment", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	id := uuid.NewString()
	s.lock.Lock()
	s.sessions[id] = &session{env: env, actions: make([]int, 0)}
	s.lock.Unlock()

	s.logger.Info("session created", slog.String("session", id), slog.Int("qubits", env.Qubits()))
	c.JSON(http.StatusCreated, gin.H{
		"id":          id,
		"qubits":      env.Qubits(),
		"actions":     env.Catalog().Len(),
		"observation": env.Observation().Layers(),
	})
}

func (s *SessionServer) handleReset(c *gin.Context) {
	id, sess, ok := s.get(c)
	if !ok {
		return
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	if sess.env.Steps() > 0 {
		sess.episode++
	}
	sess.actions = sess.actions[:0]
	obs := sess.env.Reset()
	s.logger.Info("session reset", slog.String("session", id), slog.Int("episode", sess.episode))
	c.JSON(http.StatusOK, gin.H{"observation": obs.Layers()})
}

func (s *SessionServer) handleStep(c *gin.Context) {
	id, sess, ok := s.get(c)
	if !ok {
		return
	}
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}

	sess.lock.Lock()
	defer sess.lock.Unlock()

	obs, reward, done, err := sess.env.Step(*req.Action)
	switch {
	case errors.Is(err, gatesynth.ErrInvalidActionIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, gatesynth.ErrEpisodeOver):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sess.actions = append(sess.actions, *req.Action)
	if done {
		s.logger.Info("episode finished",
			slog.String("session", id),
			slog.String("status", sess.env.Status().String()),
			slog.Int("steps", sess.env.Steps()))
		s.record(id, sess)
	}

	c.JSON(http.StatusOK, gin.H{
		"observation": obs.Layers(),
		"reward":      reward,
		"done":        done,
		"status":      sess.env.Status().String(),
		"steps":       sess.env.Steps(),
		"distance":    sess.env.Distance(),
	})
}

func (s *SessionServer) handleActions(c *gin.Context) {
	_, sess, ok := s.get(c)
	if !ok {
		return
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	legal := sess.env.LegalActions()
	out := make([]actionInfo, len(legal))
	for i, index := range legal {
		desc, _ := sess.env.ActionToString(index)
		out[i] = actionInfo{Index: index, Description: desc}
	}
	c.JSON(http.StatusOK, gin.H{"actions": out})
}

func (s *SessionServer) handleRender(c *gin.Context) {
	_, sess, ok := s.get(c)
	if !ok {
		return
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"render": sess.env.Render(),
		"status": sess.env.Status().String(),
	})
}

func (s *SessionServer) handleDelete(c *gin.Context) {
	id := c.Param("id")
	s.lock.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.lock.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	s.logger.Info("session deleted", slog.String("session", id))
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
