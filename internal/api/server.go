// Package api exposes the style control REST interface: the UI layer
// drives color, opacity, blur, enable/disable, and detection pause over
// HTTP while the render loop runs.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dudu/liptint/internal/pipeline"
	"github.com/dudu/liptint/internal/provider"
)

// Server hosts the control API.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    zerolog.Logger
}

// NewServer wires the control routes onto the controller and detector.
func NewServer(addr string, ctrl *pipeline.Controller, det *provider.Client, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := newStyleHandler(ctrl, det, log)

	engine.GET("/healthz", h.Health)
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/style", h.GetStyle)
		v1.PUT("/style", h.UpdateStyle)
		v1.GET("/state", h.GetState)
		v1.POST("/detection/pause", h.PauseDetection)
		v1.POST("/detection/resume", h.ResumeDetection)
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:    addr,
			Handler: engine,
		},
		log: log,
	}
}

// Start serves until Shutdown. It runs in its own goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("control API listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("control API stopped")
		}
	}()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
