package overlay

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrDimensionMismatch reports a mask/frame size disagreement, which means
// a video resize event was missed. Recoverable by re-rasterizing at the
// frame's dimensions and retrying.
var ErrDimensionMismatch = errors.New("mask and frame dimensions differ")

// Compositor blends a styled, optionally blurred mask onto BGR frames in
// place. The blurred-alpha scratch buffer is reused across frames and
// recreated only on a dimension change.
//
// A Compositor is not safe for concurrent use.
type Compositor struct {
	alpha  gocv.Mat
	width  int
	height int
}

// NewCompositor creates an empty compositor. Call Close to release the
// scratch buffer.
func NewCompositor() *Compositor {
	return &Compositor{alpha: gocv.NewMat()}
}

// Composite tints the masked area of dst with the style's color using
// multiply blending. It mutates dst in place and is a no-op for a
// disabled style.
//
// The recipe mirrors the source-in + multiply layer stack: the clipped
// layer's alpha is coverage times opacity, the blend weight is that alpha
// times opacity again. Opacity is applied twice on purpose; the doubled
// falloff reads as a softer, more natural tint than a single application.
// The layer color is uniform, so blurring the coverage plane alone is
// pixel-identical to blurring the layer's color and alpha channels.
func (c *Compositor) Composite(mask gocv.Mat, style Style, dst *gocv.Mat) error {
	if !style.Enabled {
		return nil
	}
	if mask.Cols() != dst.Cols() || mask.Rows() != dst.Rows() {
		return fmt.Errorf("composite: mask %dx%d, frame %dx%d: %w",
			mask.Cols(), mask.Rows(), dst.Cols(), dst.Rows(), ErrDimensionMismatch)
	}

	c.ensure(dst.Cols(), dst.Rows())
	if style.BlurRadius > 0 {
		// Kernel must be odd; 2r+1 covers the requested radius.
		k := style.BlurRadius*2 + 1
		gocv.GaussianBlur(mask, &c.alpha, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	} else {
		mask.CopyTo(&c.alpha)
	}

	alpha, err := c.alpha.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("composite: alpha data: %w", err)
	}
	pix, err := dst.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("composite: frame data: %w", err)
	}

	// Frames are BGR; per channel dst' = dst*(1-a) + dst*(col/255)*a,
	// folded to dst * (1 - a*(1 - col/255)).
	col := [3]float64{
		float64(style.Color.B) / 255,
		float64(style.Color.G) / 255,
		float64(style.Color.R) / 255,
	}
	op := style.Opacity
	for i, cov := range alpha {
		if cov == 0 {
			continue
		}
		a := float64(cov) / 255 * op * op
		j := i * 3
		for ch := 0; ch < 3; ch++ {
			v := float64(pix[j+ch]) * (1 - a*(1-col[ch]))
			pix[j+ch] = uint8(v + 0.5)
		}
	}
	return nil
}

func (c *Compositor) ensure(width, height int) {
	if width == c.width && height == c.height && !c.alpha.Empty() {
		return
	}
	if !c.alpha.Empty() {
		c.alpha.Close()
	}
	c.alpha = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	c.width = width
	c.height = height
}

// Close releases the scratch buffer.
func (c *Compositor) Close() {
	if !c.alpha.Empty() {
		c.alpha.Close()
	}
}
