package types

import "time"

// Frame is one captured image (or, for keyboard-wedge scanners, one typed
// line). Decoders interpret Data; the pipeline never looks inside it.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}
