package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures frames from a local camera device via OpenCV.
type Webcam struct {
	config Config

	mu  sync.Mutex
	cam *gocv.VideoCapture
}

// NewWebcam creates an unopened webcam source.
func NewWebcam(cfg Config) *Webcam {
	return &Webcam{config: cfg}
}

// Open acquires the camera device and applies the requested capture
// properties. Opening an already open webcam is a no-op.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam != nil {
		return nil
	}

	cam, err := gocv.OpenVideoCapture(w.config.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", w.config.Device, err)
	}

	if w.config.Width > 0 {
		cam.Set(gocv.VideoCaptureFrameWidth, float64(w.config.Width))
	}
	if w.config.Height > 0 {
		cam.Set(gocv.VideoCaptureFrameHeight, float64(w.config.Height))
	}
	if w.config.FPS > 0 {
		cam.Set(gocv.VideoCaptureFPS, float64(w.config.FPS))
	}

	w.cam = cam
	return nil
}

// ReadJPEG captures one frame and encodes it as JPEG.
func (w *Webcam) ReadJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam == nil {
		return nil, fmt.Errorf("camera not open")
	}

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := w.cam.Read(&frame); !ok || frame.Empty() {
		return nil, fmt.Errorf("camera %d returned no frame", w.config.Device)
	}

	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close; hand back a copy.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the camera device. Closing a closed webcam is a no-op.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam == nil {
		return nil
	}
	err := w.cam.Close()
	w.cam = nil
	return err
}
