// Package capture provides video frame sources for head tracking.
package capture

// Source is the interface for frame capture backends. A Source is opened
// by the broadcaster's Start, read once per detection tick, and closed by
// Stop. Reopening a closed source must work.
type Source interface {
	// Open acquires the capture device.
	Open() error

	// ReadJPEG captures one frame as JPEG bytes.
	ReadJPEG() ([]byte, error)

	// Close releases the capture device.
	Close() error
}

// Config holds capture configuration.
type Config struct {
	Device int // Camera device index
	Width  int // Requested frame width in pixels
	Height int // Requested frame height in pixels
	FPS    int // Requested capture rate
}

// DefaultConfig returns capture defaults suitable for head tracking.
// Detection only needs a modest resolution; smaller frames keep the
// landmark model fast.
func DefaultConfig() Config {
	return Config{
		Device: 0,
		Width:  640,
		Height: 480,
		FPS:    30,
	}
}
