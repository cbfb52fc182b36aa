package viewport

import (
	"image/color"
	"time"
)

// Default window geometry and tuning. Width and depth are world units;
// sensitivities amplify head motion so modest movement in front of a
// webcam sweeps the full window.
const (
	DefaultWidth        = 10.0
	DefaultDepth        = 15.0
	DefaultSensitivityX = 1.5
	DefaultSensitivityY = 1.2
	DefaultSmoothing    = 0.15
	DefaultBaseDistance = 35.0
	DefaultNear         = 0.1
	DefaultFar          = 200.0
)

// Options configures one viewport. Zero fields take the defaults above.
type Options struct {
	Name string // Identifier for logs and the dashboard

	// Window geometry (world units). Height is not configured: it is
	// derived from the surface aspect ratio as Width/aspect and
	// re-derived on resize.
	Width float64
	Depth float64

	// Head motion response
	SensitivityX float64
	SensitivityY float64
	Smoothing    float64 // Fraction of remaining distance covered per tick
	BaseDistance float64 // Initial eye distance before any pose arrives

	// Projection planes
	Near float64
	Far  float64

	// Surface size in pixels
	PixelWidth  int
	PixelHeight int

	// Render cadence
	TickInterval time.Duration

	// Scene decoration
	GridDivisions int
	Background    color.RGBA
	GridColor     color.RGBA
	ContentColor  color.RGBA

	// ContentRef is a model URL or file path. Empty, or failing to
	// load, falls back to the placeholder content.
	ContentRef string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Depth <= 0 {
		o.Depth = DefaultDepth
	}
	if o.SensitivityX <= 0 {
		o.SensitivityX = DefaultSensitivityX
	}
	if o.SensitivityY <= 0 {
		o.SensitivityY = DefaultSensitivityY
	}
	if o.Smoothing <= 0 || o.Smoothing > 1 {
		o.Smoothing = DefaultSmoothing
	}
	if o.BaseDistance <= 0 {
		o.BaseDistance = DefaultBaseDistance
	}
	if o.Near <= 0 {
		o.Near = DefaultNear
	}
	if o.Far <= o.Near {
		o.Far = DefaultFar
	}
	if o.PixelWidth <= 0 {
		o.PixelWidth = 960
	}
	if o.PixelHeight <= 0 {
		o.PixelHeight = 540
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second / 60
	}
	if o.GridDivisions <= 0 {
		o.GridDivisions = 10
	}
	if o.Background == (color.RGBA{}) {
		o.Background = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xFF}
	}
	if o.GridColor == (color.RGBA{}) {
		o.GridColor = color.RGBA{R: 0x3A, G: 0x5F, B: 0x3A, A: 0xFF}
	}
	if o.ContentColor == (color.RGBA{}) {
		o.ContentColor = color.RGBA{R: 0xE8, G: 0xA0, B: 0x30, A: 0xFF}
	}
	return o
}
