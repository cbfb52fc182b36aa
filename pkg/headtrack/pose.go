// Package headtrack turns per-frame facial landmarks into a stream of
// normalized head positions and fans that stream out to any number of
// subscribers. One Broadcaster owns one camera and one landmark detector;
// every viewport in the process observes the same pose stream.
package headtrack

// Pose is the viewer's estimated head position relative to the screen.
// X and Y are screen-space offsets from center in roughly [-1, 1], with
// positive X meaning the viewer moved left of camera center (mirrored) and
// positive Y meaning the viewer moved up. Z is the estimated viewing
// distance in world units, clamped to [MinDistance, MaxDistance].
//
// A Pose is immutable once emitted; every detection frame produces a fresh
// value, so subscribers may hold onto one without copying.
type Pose struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DefaultPose is the pose delivered to subscribers before any face has
// been detected: centered, at the reference viewing distance.
func DefaultPose() Pose {
	return Pose{X: 0, Y: 0, Z: defaultBaseDistance}
}
