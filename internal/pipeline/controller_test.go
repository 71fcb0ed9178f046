package pipeline

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/dudu/liptint/internal/landmark"
	"github.com/dudu/liptint/internal/overlay"
)

func testStyle() overlay.Style {
	return overlay.Style{
		Color:   color.RGBA{R: 255, A: 255},
		Opacity: 1,
		Enabled: true,
	}
}

func newTestController(style overlay.Style) *Controller {
	return NewController(style, zerolog.Nop())
}

// meshFrame builds a full-topology frame where the outer-lip contour
// traces a square covering the center of the frame, so the rendered
// overlay has real area.
func meshFrame() landmark.Frame {
	frame := make(landmark.Frame, landmark.TopologySize)
	indices := landmark.Region(landmark.OuterLips)
	n := len(indices)
	// Walk the square perimeter, one contour point per step.
	perimeter := []landmark.Landmark{}
	for i := 0; i < n; i++ {
		t := float32(i) / float32(n)
		var p landmark.Landmark
		switch {
		case t < 0.25:
			p = landmark.Landmark{X: 0.25 + 2*t, Y: 0.25}
		case t < 0.5:
			p = landmark.Landmark{X: 0.75, Y: 0.25 + 2*(t-0.25)}
		case t < 0.75:
			p = landmark.Landmark{X: 0.75 - 2*(t-0.5), Y: 0.75}
		default:
			p = landmark.Landmark{X: 0.25, Y: 0.75 - 2*(t-0.75)}
		}
		perimeter = append(perimeter, p)
	}
	for i, idx := range indices {
		frame[idx] = perimeter[i]
	}
	return frame
}

func whiteFrame(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0),
		height, width, gocv.MatTypeCV8UC3)
}

func TestOnResultRendersFirstFace(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	dst := whiteFrame(64, 64)
	defer dst.Close()

	c.OnResult(&landmark.Result{Faces: []landmark.Frame{meshFrame()}}, &dst)

	if got := c.State(); got != StateActive {
		t.Errorf("state = %s, want active", got)
	}
	// Center of the lip square: white multiplied by red.
	center := dst.GetVecbAt(32, 32)
	if center[0] != 0 || center[1] != 0 || center[2] != 255 {
		t.Errorf("center pixel BGR = %v, want [0 0 255]", center)
	}
	// Corner outside the region: untouched.
	corner := dst.GetVecbAt(2, 2)
	if corner[0] != 255 || corner[1] != 255 || corner[2] != 255 {
		t.Errorf("corner pixel BGR = %v, want [255 255 255]", corner)
	}
}

func TestOnResultNoFacesClearsOverlay(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	dst := whiteFrame(64, 64)
	defer dst.Close()
	before := dst.ToBytes()

	c.OnResult(&landmark.Result{}, &dst)

	if got := c.State(); got != StateNoFace {
		t.Errorf("state = %s, want no_face", got)
	}
	if !bytes.Equal(before, dst.ToBytes()) {
		t.Error("empty result modified the frame")
	}
}

func TestOnResultIgnoresExtraFaces(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	single := whiteFrame(64, 64)
	defer single.Close()
	c.OnResult(&landmark.Result{Faces: []landmark.Frame{meshFrame()}}, &single)

	// Second face is too short for any lip index; it would fail if used.
	multi := whiteFrame(64, 64)
	defer multi.Close()
	c.OnResult(&landmark.Result{Faces: []landmark.Frame{meshFrame(), make(landmark.Frame, 3)}}, &multi)

	if got := c.State(); got != StateActive {
		t.Errorf("state = %s, want active", got)
	}
	if !bytes.Equal(single.ToBytes(), multi.ToBytes()) {
		t.Error("extra face changed the rendered output")
	}
}

func TestOnResultIdempotent(t *testing.T) {
	c := newTestController(overlay.Style{
		Color:      color.RGBA{R: 0xC2, G: 0x18, B: 0x5B, A: 255},
		Opacity:    0.7,
		BlurRadius: 4,
		Enabled:    true,
	})
	defer c.Close()

	result := &landmark.Result{Faces: []landmark.Frame{meshFrame()}}

	a := whiteFrame(64, 64)
	defer a.Close()
	c.OnResult(result, &a)

	b := whiteFrame(64, 64)
	defer b.Close()
	c.OnResult(result, &b)

	if !bytes.Equal(a.ToBytes(), b.ToBytes()) {
		t.Error("identical input produced different output frames")
	}
}

func TestOnResultDisabledLeavesFrame(t *testing.T) {
	style := testStyle()
	style.Enabled = false
	c := newTestController(style)
	defer c.Close()

	dst := whiteFrame(64, 64)
	defer dst.Close()
	before := dst.ToBytes()

	c.OnResult(&landmark.Result{Faces: []landmark.Frame{meshFrame()}}, &dst)

	if got := c.State(); got != StateActive {
		t.Errorf("state = %s, want active", got)
	}
	if !bytes.Equal(before, dst.ToBytes()) {
		t.Error("disabled overlay modified the frame")
	}
}

func TestOnResultShortFrameDegrades(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	dst := whiteFrame(64, 64)
	defer dst.Close()
	before := dst.ToBytes()

	// A frame shorter than the lip indices: the render is skipped, the
	// session continues, the frame is untouched.
	c.OnResult(&landmark.Result{Faces: []landmark.Frame{make(landmark.Frame, 10)}}, &dst)

	if got := c.State(); got != StateActive {
		t.Errorf("state = %s, want active", got)
	}
	if !bytes.Equal(before, dst.ToBytes()) {
		t.Error("failed render modified the frame")
	}
}

func TestStateStartsIdle(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()
	if got := c.State(); got != StateIdle {
		t.Errorf("state = %s, want idle", got)
	}
}

func TestSetColorInvalidKeepsStyle(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	if err := c.SetColor("#00FF00"); err != nil {
		t.Fatalf("SetColor valid: %v", err)
	}
	err := c.SetColor("nope")
	if !errors.Is(err, overlay.ErrInvalidColor) {
		t.Errorf("err = %v, want ErrInvalidColor", err)
	}
	if got := overlay.HexColor(c.Style().Color); got != "#00FF00" {
		t.Errorf("color = %s after failed update, want #00FF00", got)
	}
}

func TestSettersClamp(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	c.SetOpacity(2.5)
	c.SetBlur(-4)
	s := c.Style()
	if s.Opacity != 1 {
		t.Errorf("opacity = %v, want 1", s.Opacity)
	}
	if s.BlurRadius != 0 {
		t.Errorf("blur = %d, want 0", s.BlurRadius)
	}
}

func TestRenderHeldReappliesLastMask(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	first := whiteFrame(64, 64)
	defer first.Close()
	c.OnResult(&landmark.Result{Faces: []landmark.Frame{meshFrame()}}, &first)

	held := whiteFrame(64, 64)
	defer held.Close()
	c.RenderHeld(&held)

	if !bytes.Equal(first.ToBytes(), held.ToBytes()) {
		t.Error("held render differs from the last live render")
	}

	// Dimensions changed while paused: nothing is drawn.
	resized := whiteFrame(32, 32)
	defer resized.Close()
	before := resized.ToBytes()
	c.RenderHeld(&resized)
	if !bytes.Equal(before, resized.ToBytes()) {
		t.Error("held render drew onto a frame with stale dimensions")
	}
}

func TestUnavailableRendersNothing(t *testing.T) {
	c := newTestController(testStyle())
	defer c.Close()

	c.SetAvailable(false)

	dst := whiteFrame(64, 64)
	defer dst.Close()
	before := dst.ToBytes()
	c.OnResult(&landmark.Result{Faces: []landmark.Frame{meshFrame()}}, &dst)

	if !bytes.Equal(before, dst.ToBytes()) {
		t.Error("unavailable controller modified the frame")
	}
}
