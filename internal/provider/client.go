// Package provider connects to an external landmark detector over a
// websocket. The detector (a face mesh sidecar) receives JPEG frames and
// replies with normalized landmark coordinates; no model runs in this
// process.
package provider

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/dudu/liptint/internal/landmark"
)

// Client is a websocket landmark detector client. Detect sends one frame
// and blocks for its result, so detection cadence follows the caller's
// frame loop; there is no internal queue.
type Client struct {
	url string
	log zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	paused bool
}

// NewClient creates a client for the detector at url (ws:// or wss://).
func NewClient(url string, log zerolog.Logger) *Client {
	return &Client{url: url, log: log}
}

// Connect dials the detector.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dial()
}

func (c *Client) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("detector dial %s: %w", c.url, err)
	}
	c.conn = conn
	c.log.Info().Str("url", c.url).Msg("detector connected")
	return nil
}

// Detect encodes the frame as JPEG, sends it to the detector, and blocks
// for the landmark result. On transport failure the connection is dropped
// and the next call redials.
func (c *Client) Detect(frame gocv.Mat) (*landmark.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.dial(); err != nil {
			return nil, err
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := c.conn.WriteMessage(websocket.BinaryMessage, buf.GetBytes()); err != nil {
		c.drop()
		return nil, fmt.Errorf("send frame: %w", err)
	}

	_, payload, err := c.conn.ReadMessage()
	if err != nil {
		c.drop()
		return nil, fmt.Errorf("read result: %w", err)
	}

	var result landmark.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Pause suspends detection. The caller's frame loop checks Paused and
// stops invoking Detect, which leaves the last overlay on screen.
func (c *Client) Pause() {
	c.mu.Lock()
	if !c.paused {
		c.paused = true
		c.log.Info().Msg("detection paused")
	}
	c.mu.Unlock()
}

// Resume re-enables detection.
func (c *Client) Resume() {
	c.mu.Lock()
	if c.paused {
		c.paused = false
		c.log.Info().Msg("detection resumed")
	}
	c.mu.Unlock()
}

// Paused reports whether detection is suspended.
func (c *Client) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Close shuts down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop()
	return nil
}
