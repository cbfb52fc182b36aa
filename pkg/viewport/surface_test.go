package viewport

import (
	"image"
	"testing"
)

func TestLatestReturnsStableCopy(t *testing.T) {
	s := NewImageSurface(4, 4)
	if s.Latest() != nil {
		t.Fatal("Latest() != nil before first Present")
	}

	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frame.Pix[0] = 11
	s.Present(frame)

	snap := s.Latest()
	if snap.Pix[0] != 11 {
		t.Fatalf("snapshot pixel = %d, want 11", snap.Pix[0])
	}

	// A later Present must not reach into a frame handed out earlier.
	frame.Pix[0] = 99
	s.Present(frame)
	if snap.Pix[0] != 11 {
		t.Errorf("snapshot mutated by later Present: %d", snap.Pix[0])
	}
	if got := s.Latest().Pix[0]; got != 99 {
		t.Errorf("Latest() pixel = %d, want 99", got)
	}

	// Writing into a snapshot never leaks back into the surface.
	snap2 := s.Latest()
	snap2.Pix[0] = 42
	if got := s.Latest().Pix[0]; got != 99 {
		t.Errorf("surface pixel = %d after snapshot write, want 99", got)
	}
}

func TestSetSizeInvalidatesLatest(t *testing.T) {
	s := NewImageSurface(4, 4)
	s.Present(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	s.SetSize(8, 8)
	if s.Latest() != nil {
		t.Error("Latest() != nil after resize, stale frame kept")
	}
}
