package viewport

import (
	"image"
	"sync"
)

// Surface is one rendered output target. A viewport owns exactly one
// surface, resizes it with its container and presents one frame per tick.
type Surface interface {
	// Size returns the current pixel dimensions.
	Size() (w, h int)

	// SetSize resizes the surface.
	SetSize(w, h int)

	// Present delivers a finished frame. The image is reused by the
	// renderer on the next tick; implementations must copy if they
	// retain it.
	Present(img *image.RGBA)
}

// ImageSurface is an in-memory Surface. Each presented frame is copied to
// an internal buffer and optionally forwarded to a handler, which is how
// the dashboard and the preview window receive frames.
type ImageSurface struct {
	mu      sync.Mutex
	w, h    int
	latest  *image.RGBA
	handler func(*image.RGBA)
}

// NewImageSurface creates a surface with the given pixel size.
func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{w: w, h: h}
}

// SetHandler installs a callback invoked with every presented frame. The
// callback runs on the viewport's render goroutine and the buffer is
// reused by the next Present, so it must finish with the frame before
// returning and hand off quickly.
func (s *ImageSurface) SetHandler(fn func(*image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// Size implements Surface.
func (s *ImageSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

// SetSize implements Surface.
func (s *ImageSurface) SetSize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
	s.h = h
	s.latest = nil
}

// Present implements Surface.
func (s *ImageSurface) Present(img *image.RGBA) {
	s.mu.Lock()
	if s.latest == nil || s.latest.Bounds() != img.Bounds() {
		s.latest = image.NewRGBA(img.Bounds())
	}
	copy(s.latest.Pix, img.Pix)
	frame := s.latest
	fn := s.handler
	s.mu.Unlock()

	if fn != nil {
		fn(frame)
	}
}

// Latest returns a copy of the most recently presented frame, or nil
// before the first Present. The copy is the caller's own; later Presents
// never touch it, so it can be read from any goroutine.
func (s *ImageSurface) Latest() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil
	}
	out := image.NewRGBA(s.latest.Bounds())
	copy(out.Pix, s.latest.Pix)
	return out
}
