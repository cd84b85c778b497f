// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package api serves the bridge over HTTP: state, controls, host commands
// and a websocket stream of control updates.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

// Server is the HTTP API.
type Server struct {
	router   *gin.Engine
	store    registry.Store
	run      bridge.CommandFunc
	snapshot bridge.SnapshotFunc
	hub      *Hub
	log      zerolog.Logger
	srv      *http.Server
}

// NewServer creates a server with its routes set up.
func NewServer(store registry.Store, run bridge.CommandFunc, snapshot bridge.SnapshotFunc, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:   gin.New(),
		store:    store,
		run:      run,
		snapshot: snapshot,
		hub:      NewHub(log),
		log:      log,
	}
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.router.Use(gin.Recovery(), s.requestLogger())

	s.router.GET("/health", s.health)
	s.router.GET("/state", s.state)
	s.router.GET("/ws", s.stream)

	controls := s.router.Group("/controls")
	{
		controls.GET("", s.listControls)
		controls.GET("/:unit", s.getControl)
		controls.DELETE("/:unit", s.deleteControl)
		controls.POST("/:unit/command", s.command)
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// PublishChange streams a registry change to websocket clients.
func (s *Server) PublishChange(ch registry.Change) {
	s.hub.Broadcast("control", ch)
}

// PublishState streams a session snapshot to websocket clients.
func (s *Server) PublishState(snap bridge.Snapshot) {
	s.hub.Broadcast("state", snap)
}

// ListenAndServe serves on addr until Shutdown. It returns nil at once when
// Shutdown has already been called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. ln is closed on return.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP API listening")

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) state(c *gin.Context) {
	snap, err := s.snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) listControls(c *gin.Context) {
	list, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"controls": list})
}

func (s *Server) getControl(c *gin.Context) {
	unit, ok := parseUnit(c)
	if !ok {
		return
	}
	ctrl, err := s.store.Get(unit)
	if errors.Is(err, bridge.ErrControlNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ctrl)
}

func (s *Server) deleteControl(c *gin.Context) {
	unit, ok := parseUnit(c)
	if !ok {
		return
	}
	err := s.store.Delete(unit)
	if errors.Is(err, bridge.ErrControlNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// CommandRequest is the body of POST /controls/:unit/command.
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
	Level   int    `json:"level"`
}

func (s *Server) command(c *gin.Context) {
	unit, ok := parseUnit(c)
	if !ok {
		return
	}

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.run(unit, req.Command, req.Level)
	switch {
	case err == nil:
	case errors.Is(err, bridge.ErrUnsupportedUnit),
		errors.Is(err, bridge.ErrUnsupportedVolumeCommand),
		errors.Is(err, bridge.ErrUnsupportedInputCommand):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	case errors.Is(err, bridge.ErrLoopStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"sent":    res.Sent,
		"command": sis.Encode(res.Command),
	})
}

// stream upgrades to a websocket that receives "control" and "state"
// messages. The current control list is sent first.
func (s *Server) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	var welcome []byte
	if list, err := s.store.List(); err == nil {
		welcome, _ = json.Marshal(Message{Type: "controls", Data: list})
	}
	s.hub.serve(conn, welcome)
}

func parseUnit(c *gin.Context) (bridge.Unit, bool) {
	n, err := strconv.Atoi(c.Param("unit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit"})
		return 0, false
	}
	return bridge.Unit(n), true
}
