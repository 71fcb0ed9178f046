// Package ui shows the composited frames in a preview window.
package ui

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

var hudColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// Window is a preview window with an FPS readout.
type Window struct {
	window     *gocv.Window
	lastFrame  time.Time
	frameCount int
	fps        float64
}

// NewWindow creates the preview window.
func NewWindow(name string) *Window {
	window := gocv.NewWindow(name)
	// Force the window to appear on macOS.
	window.ResizeWindow(1280, 720)
	window.MoveWindow(100, 100)
	return &Window{
		window:    window,
		lastFrame: time.Now(),
	}
}

// Show displays a frame and updates the FPS counter once per second.
func (w *Window) Show(frame *gocv.Mat) {
	w.frameCount++
	now := time.Now()
	if elapsed := now.Sub(w.lastFrame); elapsed >= time.Second {
		w.fps = float64(w.frameCount) / elapsed.Seconds()
		w.frameCount = 0
		w.lastFrame = now
	}

	gocv.PutText(frame, fmt.Sprintf("FPS: %.1f", w.fps), image.Pt(10, 30),
		gocv.FontHersheyPlain, 2, hudColor, 2)
	w.window.IMShow(*frame)
}

// WaitKey pumps window events and returns the pressed key code or -1.
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// FPS returns the current display rate.
func (w *Window) FPS() float64 {
	return w.fps
}

// Close closes the window.
func (w *Window) Close() error {
	if w.window == nil {
		return nil
	}
	return w.window.Close()
}
