package viewport

import (
	"image"
	"math"
	"testing"

	"github.com/dgavriloff/go-portal/pkg/headtrack"
)

func testOptions() Options {
	return Options{
		Name:        "test",
		PixelWidth:  64,
		PixelHeight: 36,
	}
}

func TestNewDerivesHeightFromAspect(t *testing.T) {
	v := New(nil, NewImageSurface(64, 36), testOptions())
	defer v.Dispose()

	want := DefaultWidth * 36.0 / 64.0
	if got := v.Height(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Height() = %v, want %v", got, want)
	}

	eye := v.Eye()
	if eye.X() != 0 || eye.Y() != 0 || eye.Z() != DefaultBaseDistance {
		t.Errorf("initial eye = %v, want {0 0 %v}", eye, DefaultBaseDistance)
	}
}

func TestOnHeadMoveScalesPoseIntoWorldTarget(t *testing.T) {
	v := New(nil, NewImageSurface(64, 36), testOptions())
	defer v.Dispose()

	v.OnHeadMove(headtrack.Pose{X: 0.5, Y: -0.5, Z: 40})

	got := v.Target()
	wantX := 0.5 * DefaultWidth * DefaultSensitivityX
	wantY := -0.5 * v.Height() * DefaultSensitivityY
	if math.Abs(got.X()-wantX) > 1e-12 {
		t.Errorf("target X = %v, want %v", got.X(), wantX)
	}
	if math.Abs(got.Y()-wantY) > 1e-12 {
		t.Errorf("target Y = %v, want %v", got.Y(), wantY)
	}
	if got.Z() != 40 {
		t.Errorf("target Z = %v, want 40 (distance passes through unscaled)", got.Z())
	}
}

func TestStepSmoothsEyeTowardTarget(t *testing.T) {
	v := New(nil, NewImageSurface(64, 36), testOptions())
	defer v.Dispose()

	v.OnHeadMove(headtrack.Pose{X: 1, Y: 0, Z: DefaultBaseDistance})
	target := v.Target()
	start := v.Eye()

	prevGap := target.Sub(start).Len()
	for i := 0; i < 10; i++ {
		v.Step()
		gap := target.Sub(v.Eye()).Len()
		if gap >= prevGap {
			t.Fatalf("tick %d: gap grew from %v to %v", i, prevGap, gap)
		}
		prevGap = gap
	}

	// After k ticks the remaining gap is (1-smoothing)^k of the start.
	wantGap := target.Sub(start).Len() * math.Pow(1-DefaultSmoothing, 10)
	if math.Abs(prevGap-wantGap) > 1e-9 {
		t.Errorf("gap after 10 ticks = %v, want %v", prevGap, wantGap)
	}

	// The eye never overshoots the target.
	if v.Eye().X() > target.X() {
		t.Errorf("eye X %v overshot target %v", v.Eye().X(), target.X())
	}
}

func TestStepPresentsFrames(t *testing.T) {
	surface := NewImageSurface(64, 36)
	var presented int
	surface.SetHandler(func(*image.RGBA) { presented++ })

	v := New(nil, surface, testOptions())
	defer v.Dispose()

	v.Step()
	v.Step()
	if presented != 2 {
		t.Errorf("presented %d frames, want 2", presented)
	}
	if surface.Latest() == nil {
		t.Error("Latest() = nil after Step")
	}
}

func TestResizeRederivesHeightAndKeepsRendering(t *testing.T) {
	surface := NewImageSurface(64, 36)
	v := New(nil, surface, testOptions())
	defer v.Dispose()

	v.Resize(100, 100)
	if got, want := v.Height(), DefaultWidth; math.Abs(got-want) > 1e-12 {
		t.Errorf("Height() after square resize = %v, want %v", got, want)
	}
	if w, h := surface.Size(); w != 100 || h != 100 {
		t.Errorf("surface size = %dx%d, want 100x100", w, h)
	}

	// Degenerate sizes are ignored.
	v.Resize(0, 50)
	v.Resize(50, -1)
	if w, h := surface.Size(); w != 100 || h != 100 {
		t.Errorf("surface size changed by degenerate resize: %dx%d", w, h)
	}

	v.Step()
	if img := surface.Latest(); img == nil || img.Bounds().Dx() != 100 {
		t.Error("render did not follow the new surface size")
	}
}

func TestDisposeIsIdempotentAndFinal(t *testing.T) {
	b := headtrack.New(headtrack.Config{}, nil, nil)
	v := New(b, NewImageSurface(64, 36), testOptions())

	v.Dispose()
	v.Dispose()
	if !v.Disposed() {
		t.Fatal("Disposed() = false after Dispose")
	}

	// Poses and ticks after disposal are ignored, never a panic.
	b.Feed(headtrack.Pose{X: 1, Z: 20})
	v.OnHeadMove(headtrack.Pose{X: 1, Z: 20})
	v.Step()

	if got := v.Target(); got.X() != 0 {
		t.Errorf("target moved after Dispose: %v", got)
	}
}

func TestNewReplaysLastPoseFromBroadcaster(t *testing.T) {
	b := headtrack.New(headtrack.Config{}, nil, nil)
	b.Feed(headtrack.Pose{X: 1, Y: 0, Z: 42})

	v := New(b, NewImageSurface(64, 36), testOptions())
	defer v.Dispose()

	if got := v.Target(); got.Z() != 42 {
		t.Errorf("target Z = %v, want 42 from synchronous replay", got.Z())
	}
}
