package headtrack

import (
	"math"

	"github.com/dgavriloff/go-portal/pkg/headtrack/detection"
)

// poseFromLandmarks converts one face's landmark set into a Pose.
//
// The nose bridge anchors the head position: detector coordinates are
// normalized [0,1] image space, remapped to centered [-1,1] with both axes
// inverted (the camera mirrors the viewer horizontally, and image y grows
// downward while world y grows upward).
//
// Distance is inferred from the spacing of the outer eye corners: the
// farther the viewer, the smaller the measured span. The estimate is
// clamped so pathological readings (face half out of frame, landmark
// glitches) cannot fling the camera.
func (b *Broadcaster) poseFromLandmarks(face detection.Face) (Pose, bool) {
	if len(face) <= detection.EyeOuterLeft {
		return Pose{}, false
	}

	nose := face[detection.NoseBridge]
	x := -(nose.X - 0.5) * 2
	y := -(nose.Y - 0.5) * 2

	right := face[detection.EyeOuterRight]
	left := face[detection.EyeOuterLeft]
	eyeSpan := math.Hypot(left.X-right.X, left.Y-right.Y)

	z := b.cfg.MaxDistance
	if eyeSpan > 0 {
		z = clamp(b.cfg.ReferenceEyeSpan/eyeSpan*b.cfg.BaseDistance,
			b.cfg.MinDistance, b.cfg.MaxDistance)
	}

	return Pose{X: x, Y: y, Z: z}, true
}

// clamp limits a value to a range.
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
