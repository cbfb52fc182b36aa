package viewport

import "github.com/go-gl/mathgl/mgl64"

// minEyeDistance keeps the frustum finite as the eye approaches the
// window plane.
const minEyeDistance = 1e-4

// FrustumBounds computes the near-plane bounds of the asymmetric frustum
// for an eye at eye looking through a window of the given world size. The
// window spans [-width/2,width/2] x [-height/2,height/2] at z=0; the edges
// are re-projected relative to the eye and scaled by near over the
// eye-to-window distance. A symmetric frustum would show the same image
// regardless of viewer position; these skewed bounds are what produce the
// looking-through-a-window parallax.
func FrustumBounds(eye mgl64.Vec3, width, height, near float64) (left, right, bottom, top float64) {
	dist := eye.Z()
	if dist < minEyeDistance {
		dist = minEyeDistance
	}
	scale := near / dist

	left = (-width/2 - eye.X()) * scale
	right = (width/2 - eye.X()) * scale
	bottom = (-height/2 - eye.Y()) * scale
	top = (height/2 - eye.Y()) * scale
	return left, right, bottom, top
}

// Projection builds the off-center perspective projection for the given
// eye position and window size.
func Projection(eye mgl64.Vec3, width, height, near, far float64) mgl64.Mat4 {
	left, right, bottom, top := FrustumBounds(eye, width, height, near)
	return mgl64.Frustum(left, right, bottom, top, near, far)
}
