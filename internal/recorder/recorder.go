package recorder

import "time"

// RenderEvent describes one figure handed to a rendering backend.
type RenderEvent struct {
	ID         string
	Time       time.Time
	Ticker     string
	Kind       string // main trace geometry, e.g. "candlestick"
	Mode       string // "offline" or "online"
	Handle     string // file path or remote URL
	Traces     int
	Rows       int
	LastClose  float64
	LastVolume float64
	Warnings   int
}

// Recorder persists render history for later analysis.
type Recorder interface {
	RecordRender(evt *RenderEvent) error
	Recent(limit int) ([]RenderEvent, error)
	Close() error
}
