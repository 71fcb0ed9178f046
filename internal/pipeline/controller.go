// Package pipeline orchestrates the per-frame landmark-to-overlay flow.
package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/dudu/liptint/internal/landmark"
	"github.com/dudu/liptint/internal/mask"
	"github.com/dudu/liptint/internal/overlay"
)

// State is the controller's detection state.
type State int

const (
	// StateIdle means no detector output has arrived yet.
	StateIdle State = iota
	// StateActive means the latest result contained at least one face.
	StateActive
	// StateNoFace means the latest result contained zero faces.
	StateNoFace
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateNoFace:
		return "no_face"
	}
	return "unknown"
}

// Timing holds per-stage durations for the last rendered frame.
type Timing struct {
	Rasterize time.Duration
	Composite time.Duration
	Total     time.Duration
}

// Controller turns landmark results into a lip overlay on the current
// video frame. OnResult runs on the single render goroutine and owns the
// destination frame for the duration of the call; the style setters are
// safe to call from other goroutines (the UI layer) and take effect on
// the next frame.
type Controller struct {
	mu sync.Mutex

	state     State
	style     overlay.Style
	available bool

	rasterizer *mask.Rasterizer
	compositor *overlay.Compositor

	width  int
	height int

	lastTiming Timing
	log        zerolog.Logger
}

// NewController creates a controller with the given initial style.
func NewController(style overlay.Style, log zerolog.Logger) *Controller {
	style.Opacity = overlay.ClampOpacity(style.Opacity)
	style.BlurRadius = overlay.ClampBlur(style.BlurRadius)
	return &Controller{
		state:      StateIdle,
		style:      style,
		available:  true,
		rasterizer: mask.NewRasterizer(),
		compositor: overlay.NewCompositor(),
		log:        log,
	}
}

// OnResult consumes one detector result and renders the overlay onto
// frame in place. Zero faces clears the overlay (the raw video shows
// through) and moves to StateNoFace. Otherwise only faces[0] is rendered;
// extra faces are ignored. The landmark data is not retained across
// calls.
//
// Render failures degrade to no overlay for this frame and never
// propagate; the session keeps running.
func (c *Controller) OnResult(result *landmark.Result, frame *gocv.Mat) {
	totalStart := time.Now()

	c.mu.Lock()
	style := c.style
	available := c.available
	c.mu.Unlock()

	if !available {
		return
	}

	if result == nil || len(result.Faces) == 0 {
		c.setState(StateNoFace)
		return
	}
	c.setState(StateActive)

	if !style.Enabled {
		return
	}

	face := result.Faces[0]
	width, height := frame.Cols(), frame.Rows()
	c.noteDimensions(width, height)

	var timing Timing

	rasterStart := time.Now()
	m, err := c.rasterizer.Rasterize(face, landmark.Region(landmark.OuterLips), width, height)
	timing.Rasterize = time.Since(rasterStart)
	if err != nil {
		c.log.Warn().Err(err).Msg("skipping overlay for this frame")
		return
	}

	compositeStart := time.Now()
	err = c.compositor.Composite(m, style, frame)
	if errors.Is(err, overlay.ErrDimensionMismatch) {
		// Missed resize event: re-rasterize at the frame's dimensions
		// and retry once.
		m, err = c.rasterizer.Rasterize(face, landmark.Region(landmark.OuterLips), width, height)
		if err == nil {
			err = c.compositor.Composite(m, style, frame)
		}
	}
	timing.Composite = time.Since(compositeStart)
	if err != nil {
		c.log.Warn().Err(err).Msg("skipping overlay for this frame")
		return
	}

	timing.Total = time.Since(totalStart)

	c.mu.Lock()
	c.lastTiming = timing
	c.mu.Unlock()
}

// RenderHeld re-composites the last rasterized mask onto frame with the
// current style. Used while detection is paused so the overlay stays on
// screen instead of clearing. A no-op when no mask is held or the frame
// dimensions changed since it was rasterized.
func (c *Controller) RenderHeld(frame *gocv.Mat) {
	c.mu.Lock()
	style := c.style
	available := c.available
	c.mu.Unlock()

	if !available || !style.Enabled {
		return
	}
	m, ok := c.rasterizer.Mask(frame.Cols(), frame.Rows())
	if !ok {
		return
	}
	if err := c.compositor.Composite(m, style, frame); err != nil {
		c.log.Warn().Err(err).Msg("held overlay render failed")
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state != s {
		c.log.Debug().Stringer("from", c.state).Stringer("to", s).Msg("state change")
		c.state = s
	}
	c.mu.Unlock()
}

func (c *Controller) noteDimensions(width, height int) {
	if width != c.width || height != c.height {
		if c.width != 0 {
			c.log.Info().Int("width", width).Int("height", height).Msg("frame dimensions changed")
		}
		c.width = width
		c.height = height
	}
}

// State returns the current detection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Style returns the active style.
func (c *Controller) Style() overlay.Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

// SetColor updates the overlay color from a #RRGGBB string. A malformed
// string leaves the style unchanged and returns the parse error.
func (c *Controller) SetColor(hex string) error {
	parsed, err := overlay.ParseHexColor(hex)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.style.Color = parsed
	c.mu.Unlock()
	return nil
}

// SetOpacity updates the overlay opacity, clamped to [0,1].
func (c *Controller) SetOpacity(v float64) {
	c.mu.Lock()
	c.style.Opacity = overlay.ClampOpacity(v)
	c.mu.Unlock()
}

// SetBlur updates the blur radius, clamped to non-negative pixels.
func (c *Controller) SetBlur(radius int) {
	c.mu.Lock()
	c.style.BlurRadius = overlay.ClampBlur(radius)
	c.mu.Unlock()
}

// SetEnabled toggles the overlay.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.style.Enabled = enabled
	c.mu.Unlock()
}

// SetAvailable records whether the upstream detector pipeline is usable.
// While unavailable the controller renders nothing.
func (c *Controller) SetAvailable(ok bool) {
	c.mu.Lock()
	if c.available != ok {
		c.log.Info().Bool("available", ok).Msg("pipeline availability changed")
		c.available = ok
	}
	c.mu.Unlock()
}

// Available reports whether the upstream detector pipeline is usable.
func (c *Controller) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// LastTiming returns stage timings from the last rendered frame.
func (c *Controller) LastTiming() Timing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTiming
}

// Close releases the rasterizer and compositor buffers.
func (c *Controller) Close() {
	c.rasterizer.Close()
	c.compositor.Close()
}
