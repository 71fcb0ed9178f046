package pipeline

import (
	"gocv.io/x/gocv"

	"github.com/dudu/liptint/internal/landmark"
)

// Detector produces face landmarks for a video frame. Implementations run
// outside this process; the pipeline only consumes their results.
type Detector interface {
	// Detect returns the landmark result for the frame. A result with no
	// faces is valid; an error means the detector is unavailable.
	Detect(frame gocv.Mat) (*landmark.Result, error)

	// Paused reports whether detection is suspended. While paused the
	// caller must not invoke Detect; the last overlay stays on screen.
	Paused() bool

	// Close releases the detector connection.
	Close() error
}
