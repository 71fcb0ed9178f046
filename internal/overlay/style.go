// Package overlay blends a styled lip mask onto video frames.
package overlay

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrInvalidColor reports a malformed color string. Callers keep the
// previous style when an update fails with it.
var ErrInvalidColor = errors.New("invalid color string")

// Style holds the user-configurable overlay parameters. Exactly one Style
// is active at a time; there is no per-region styling.
type Style struct {
	Color      color.RGBA `json:"-"`
	Opacity    float64    `json:"opacity"`
	BlurRadius int        `json:"blur_radius"`
	Enabled    bool       `json:"enabled"`
}

// ParseHexColor parses a case-insensitive #RRGGBB string.
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("parse %q: %w", s, ErrInvalidColor)
	}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[1+i*2])
		lo, ok2 := hexNibble(s[2+i*2])
		if !ok1 || !ok2 {
			return color.RGBA{}, fmt.Errorf("parse %q: %w", s, ErrInvalidColor)
		}
		out[i] = hi<<4 | lo
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}, nil
}

// HexColor formats a color as an uppercase #RRGGBB string.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// ClampOpacity bounds an opacity value to [0,1].
func ClampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampBlur bounds a blur radius to non-negative pixels.
func ClampBlur(r int) int {
	if r < 0 {
		return 0
	}
	return r
}
