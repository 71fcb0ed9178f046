// Package landmark defines the face landmark data model and the named
// lip regions rendered by the overlay pipeline.
package landmark

// Landmark is a single detected facial keypoint in normalized coordinates:
// X and Y are fractions of the frame width and height in [0,1]. Z is the
// detector's relative depth and is unused by the 2D overlay.
type Landmark struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z,omitempty"`
}

// Frame is one face's landmarks as emitted by the detector: an ordered,
// fixed-length sequence where the index is the identity key. The same
// detector always emits the same index semantics.
type Frame []Landmark

// Result is one detector emission for a single video frame.
type Result struct {
	Faces []Frame `json:"faces"`
}
