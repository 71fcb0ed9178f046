// Package mask rasterizes landmark-indexed polygons into per-pixel
// coverage masks in frame space.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/dudu/liptint/internal/landmark"
)

// ErrInvalidLandmarkIndex reports a region referencing an index absent
// from the supplied landmark frame: a topology mismatch between the
// region tables and the detector.
var ErrInvalidLandmarkIndex = errors.New("landmark index out of range for frame")

// Rasterizer fills landmark polygons into a reusable coverage mask.
// The mask buffer grows on demand and is recreated only when the frame
// dimensions change, so steady-state rasterization allocates nothing
// beyond the point scratch slice.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	buf    gocv.Mat
	width  int
	height int
	points []image.Point
}

// NewRasterizer creates an empty rasterizer. Call Close to release the
// mask buffer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{buf: gocv.NewMat()}
}

var maskFill = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Rasterize maps each indexed landmark from normalized coordinates to
// pixel space, closes the polygon in index order, and fills it. The
// returned mask is a single-channel Mat of the frame dimensions with 255
// inside the polygon and 0 outside; it is owned by the Rasterizer and
// valid until the next call.
//
// An empty index sequence yields an all-zero mask. A degenerate sequence
// of fewer than three points has no area and also yields an all-zero mask.
func (r *Rasterizer) Rasterize(frame landmark.Frame, indices []int, width, height int) (gocv.Mat, error) {
	r.ensure(width, height)
	r.buf.SetTo(gocv.NewScalar(0, 0, 0, 0))

	for _, idx := range indices {
		if idx < 0 || idx >= len(frame) {
			return r.buf, fmt.Errorf("rasterize: index %d, frame length %d: %w",
				idx, len(frame), ErrInvalidLandmarkIndex)
		}
	}
	if len(indices) < 3 {
		return r.buf, nil
	}

	r.points = r.points[:0]
	for _, idx := range indices {
		pt := frame[idx]
		r.points = append(r.points, image.Pt(
			int(pt.X*float32(width)+0.5),
			int(pt.Y*float32(height)+0.5),
		))
	}

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{r.points})
	defer pts.Close()
	gocv.FillPoly(&r.buf, pts, maskFill)

	return r.buf, nil
}

// ensure recreates the mask buffer when the frame dimensions change.
func (r *Rasterizer) ensure(width, height int) {
	if width == r.width && height == r.height && !r.buf.Empty() {
		return
	}
	if !r.buf.Empty() {
		r.buf.Close()
	}
	r.buf = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	r.width = width
	r.height = height
}

// Mask returns the most recently rasterized mask and whether one exists
// for the given dimensions. Used to re-present the previous overlay while
// detection is paused.
func (r *Rasterizer) Mask(width, height int) (gocv.Mat, bool) {
	if r.buf.Empty() || width != r.width || height != r.height {
		return gocv.Mat{}, false
	}
	return r.buf, true
}

// Close releases the mask buffer.
func (r *Rasterizer) Close() {
	if !r.buf.Empty() {
		r.buf.Close()
	}
}
