package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dudu/liptint/internal/overlay"
	"github.com/dudu/liptint/internal/pipeline"
	"github.com/dudu/liptint/internal/provider"
)

type styleHandler struct {
	ctrl *pipeline.Controller
	det  *provider.Client
	log  zerolog.Logger
}

func newStyleHandler(ctrl *pipeline.Controller, det *provider.Client, log zerolog.Logger) *styleHandler {
	return &styleHandler{ctrl: ctrl, det: det, log: log}
}

// styleResponse is the wire form of the active style.
type styleResponse struct {
	Color      string  `json:"color"`
	Opacity    float64 `json:"opacity"`
	BlurRadius int     `json:"blur_radius"`
	Enabled    bool    `json:"enabled"`
}

// styleRequest is a partial style update; absent fields keep their
// current values.
type styleRequest struct {
	Color      *string  `json:"color"`
	Opacity    *float64 `json:"opacity"`
	BlurRadius *int     `json:"blur_radius"`
	Enabled    *bool    `json:"enabled"`
}

func toResponse(s overlay.Style) styleResponse {
	return styleResponse{
		Color:      overlay.HexColor(s.Color),
		Opacity:    s.Opacity,
		BlurRadius: s.BlurRadius,
		Enabled:    s.Enabled,
	}
}

func (h *styleHandler) Health(c *gin.Context) {
	status := "ok"
	if !h.ctrl.Available() {
		status = "detector unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *styleHandler) GetStyle(c *gin.Context) {
	c.JSON(http.StatusOK, toResponse(h.ctrl.Style()))
}

func (h *styleHandler) UpdateStyle(c *gin.Context) {
	var req styleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Color != nil {
		if err := h.ctrl.SetColor(*req.Color); err != nil {
			if errors.Is(err, overlay.ErrInvalidColor) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Opacity != nil {
		h.ctrl.SetOpacity(*req.Opacity)
	}
	if req.BlurRadius != nil {
		h.ctrl.SetBlur(*req.BlurRadius)
	}
	if req.Enabled != nil {
		h.ctrl.SetEnabled(*req.Enabled)
	}

	s := h.ctrl.Style()
	h.log.Info().
		Str("color", overlay.HexColor(s.Color)).
		Float64("opacity", s.Opacity).
		Int("blur", s.BlurRadius).
		Bool("enabled", s.Enabled).
		Msg("style updated")
	c.JSON(http.StatusOK, toResponse(s))
}

func (h *styleHandler) GetState(c *gin.Context) {
	timing := h.ctrl.LastTiming()
	c.JSON(http.StatusOK, gin.H{
		"state":        h.ctrl.State().String(),
		"available":    h.ctrl.Available(),
		"paused":       h.det.Paused(),
		"rasterize_us": timing.Rasterize.Microseconds(),
		"composite_us": timing.Composite.Microseconds(),
		"total_us":     timing.Total.Microseconds(),
	})
}

func (h *styleHandler) PauseDetection(c *gin.Context) {
	h.det.Pause()
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (h *styleHandler) ResumeDetection(c *gin.Context) {
	h.det.Resume()
	c.JSON(http.StatusOK, gin.H{"paused": false})
}
