// Package camera wraps webcam capture for the overlay loop.
package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Capture reads frames from a webcam device.
type Capture struct {
	webcam *gocv.VideoCapture
	device int
	width  int
	height int
	mu     sync.Mutex
}

// Open opens the device and requests the given resolution and frame rate.
// The camera may negotiate different values; Width and Height report what
// it actually delivers, and the rest of the pipeline sizes its buffers
// from the frames themselves.
func Open(device, width, height, fps int) (*Capture, error) {
	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}

	webcam.Set(gocv.VideoCaptureFrameWidth, float64(width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(height))
	webcam.Set(gocv.VideoCaptureFPS, float64(fps))

	return &Capture{
		webcam: webcam,
		device: device,
		width:  int(webcam.Get(gocv.VideoCaptureFrameWidth)),
		height: int(webcam.Get(gocv.VideoCaptureFrameHeight)),
	}, nil
}

// Read captures the next frame into frame. It returns false when the
// device produced nothing.
func (c *Capture) Read(frame *gocv.Mat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.webcam == nil {
		return false
	}
	return c.webcam.Read(frame)
}

// Width returns the negotiated frame width.
func (c *Capture) Width() int { return c.width }

// Height returns the negotiated frame height.
func (c *Capture) Height() int { return c.height }

// Close releases the device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.webcam == nil {
		return nil
	}
	err := c.webcam.Close()
	c.webcam = nil
	return err
}
