// Package detection provides dense facial landmark detection using
// computer vision. The rest of the system treats a Detector as a black
// box that turns JPEG frames into per-face landmark sets.
package detection

import "context"

// Landmark indices consumed by the pose estimator. They follow the
// standard 468-point face mesh topology.
const (
	// EyeOuterRight is the outer corner of the subject's right eye.
	EyeOuterRight = 33
	// NoseBridge sits between the eyes and is the positional anchor.
	NoseBridge = 168
	// EyeOuterLeft is the outer corner of the subject's left eye.
	EyeOuterLeft = 263

	// MeshLandmarkCount is the size of a full face mesh.
	MeshLandmarkCount = 468
)

// Landmark is one mesh point in normalized image coordinates. X and Y are
// in [0,1] relative to the full frame; Z is relative depth in the same
// scale, negative toward the camera.
type Landmark struct {
	X, Y, Z float64
}

// Face is the landmark set of one detected face.
type Face []Landmark

// Detector is the interface for landmark detection backends.
type Detector interface {
	// Ready prepares the backend (loads models, runs a warmup pass).
	// It must respect ctx cancellation; callers bound the wait.
	Ready(ctx context.Context) error

	// Detect finds faces in the JPEG frame and returns their landmark
	// sets, best face first. A frame with no face returns an empty
	// slice and no error.
	Detect(jpeg []byte) ([]Face, error)

	// Close releases resources. A closed detector can be made ready
	// again with another Ready call.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	FaceModelPath string  // Path to the face box ONNX model
	MeshModelPath string  // Path to the landmark mesh ONNX model
	ScoreThresh   float64 // Minimum face box confidence
	MaxFaces      int     // Upper bound on faces per frame
	InputWidth    int     // Mesh model input width
	InputHeight   int     // Mesh model input height
	RoiMargin     float64 // Fractional margin added around the face box
}

// DefaultConfig returns production defaults for the bundled models.
func DefaultConfig() Config {
	return Config{
		FaceModelPath: "models/face_detection_yunet.onnx",
		MeshModelPath: "models/face_mesh.onnx",
		ScoreThresh:   0.5,
		MaxFaces:      1,
		InputWidth:    192,
		InputHeight:   192,
		RoiMargin:     0.25,
	}
}
