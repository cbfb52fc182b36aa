package headtrack

import "time"

// Calibration defaults. The reference eye span is the approximate
// normalized distance between the outer eye corners when a viewer sits at
// the base distance; viewing distance is inferred from how far the
// measured span deviates from it.
const (
	defaultReferenceEyeSpan = 0.15
	defaultBaseDistance     = 35.0
	defaultMinDistance      = 10.0
	defaultMaxDistance      = 100.0
)

// Config holds all tunable parameters for head tracking.
type Config struct {
	// Timing
	DetectionInterval time.Duration // How often to capture and detect
	ReadyTimeout      time.Duration // Bounded wait for detector readiness in Start

	// Detection
	MaxFaces               int     // Only the first face drives the pose
	RefineLandmarks        bool    // Request the refined eye/lip landmark set
	MinDetectionConfidence float64 // Detector score threshold
	MinTrackingConfidence  float64 // Landmark tracking threshold

	// Distance estimation
	ReferenceEyeSpan float64 // Normalized outer-eye distance at BaseDistance
	BaseDistance     float64 // Viewing distance the calibration anchors to
	MinDistance      float64 // Lower clamp for estimated distance
	MaxDistance      float64 // Upper clamp for estimated distance
}

// DefaultConfig returns the recommended configuration for responsive
// single-viewer tracking.
func DefaultConfig() Config {
	return Config{
		DetectionInterval: 33 * time.Millisecond, // ~30 detections per second
		ReadyTimeout:      10 * time.Second,

		MaxFaces:               1,
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,

		ReferenceEyeSpan: defaultReferenceEyeSpan,
		BaseDistance:     defaultBaseDistance,
		MinDistance:      defaultMinDistance,
		MaxDistance:      defaultMaxDistance,
	}
}

// withDefaults fills zero fields so a partially populated Config behaves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DetectionInterval <= 0 {
		c.DetectionInterval = d.DetectionInterval
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = d.ReadyTimeout
	}
	if c.MaxFaces <= 0 {
		c.MaxFaces = d.MaxFaces
	}
	if c.MinDetectionConfidence <= 0 {
		c.MinDetectionConfidence = d.MinDetectionConfidence
	}
	if c.MinTrackingConfidence <= 0 {
		c.MinTrackingConfidence = d.MinTrackingConfidence
	}
	if c.ReferenceEyeSpan <= 0 {
		c.ReferenceEyeSpan = d.ReferenceEyeSpan
	}
	if c.BaseDistance <= 0 {
		c.BaseDistance = d.BaseDistance
	}
	if c.MinDistance <= 0 {
		c.MinDistance = d.MinDistance
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = d.MaxDistance
	}
	return c
}
