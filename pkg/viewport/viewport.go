// Package viewport implements a head-coupled off-axis viewport: a camera
// that stays axis-aligned while its projection skews to match the
// viewer's eye position, making the rendered surface behave like a
// physical window. Each viewport subscribes to a shared pose stream but
// owns its own smoothing state, scene and render loop.
package viewport

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/assets"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
	"github.com/dgavriloff/go-portal/pkg/render"
)

// Viewport renders one scene through an asymmetric frustum driven by the
// viewer's head position.
type Viewport struct {
	id      string
	opts    Options
	surface Surface

	unsubscribe func()

	mu       sync.Mutex
	eye      mgl64.Vec3 // Smoothed eye position, moves every tick
	target   mgl64.Vec3 // Raw pose-derived target, moves on pose arrival
	height   float64    // World height, derived from surface aspect
	scene    *render.Scene
	raster   render.Rasterizer
	grid     *render.Mesh
	content  *render.Mesh
	img      *image.RGBA
	disposed bool
}

// New creates a viewport rendering to surface and, if broadcaster is not
// nil, subscribes it to the pose stream. The subscription synchronously
// replays the last known pose, so the first rendered frame already points
// at a plausible eye position. If opts.ContentRef is set the model is
// loaded in the background, falling back to the placeholder on failure.
func New(broadcaster *headtrack.Broadcaster, surface Surface, opts Options) *Viewport {
	opts = opts.withDefaults()
	surface.SetSize(opts.PixelWidth, opts.PixelHeight)

	v := &Viewport{
		id:      uuid.NewString(),
		opts:    opts,
		surface: surface,
		eye:     mgl64.Vec3{0, 0, opts.BaseDistance},
		target:  mgl64.Vec3{0, 0, opts.BaseDistance},
		height:  opts.Width * float64(opts.PixelHeight) / float64(opts.PixelWidth),
		img:     image.NewRGBA(image.Rect(0, 0, opts.PixelWidth, opts.PixelHeight)),
	}

	v.scene = render.NewScene(opts.Background)
	v.grid = render.NewGrid(opts.Width, v.height, opts.Depth, opts.GridDivisions, opts.GridColor)
	v.content = render.DefaultContent(opts.Width, v.height, opts.Depth, opts.ContentColor)
	v.scene.Add(v.grid)
	v.scene.Add(v.content)

	if broadcaster != nil {
		v.unsubscribe = broadcaster.Subscribe(v.OnHeadMove)
	}

	if opts.ContentRef != "" {
		go v.loadContent(opts.ContentRef)
	}

	return v
}

// ID returns the viewport's unique id.
func (v *Viewport) ID() string { return v.id }

// Name returns the configured display name, falling back to the id.
func (v *Viewport) Name() string {
	if v.opts.Name != "" {
		return v.opts.Name
	}
	return v.id
}

// OnHeadMove updates the target eye position from a pose. Only the target
// moves here; the rendered eye chases it tick by tick, which decouples
// the jittery, detection-rate pose signal from the smooth render cadence.
func (v *Viewport) OnHeadMove(p headtrack.Pose) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.target = mgl64.Vec3{
		p.X * v.opts.Width * v.opts.SensitivityX,
		p.Y * v.height * v.opts.SensitivityY,
		p.Z,
	}
}

// Step advances the viewport by one render tick: move the eye a
// smoothing-fraction of the way to the target, rebuild the asymmetric
// projection from the new eye, and render. Convergence depends on tick
// count, not wall time.
func (v *Viewport) Step() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}

	v.eye = v.eye.Add(v.target.Sub(v.eye).Mul(v.opts.Smoothing))

	proj := Projection(v.eye, v.opts.Width, v.height, v.opts.Near, v.opts.Far)
	// The camera never rotates; only the frustum skews.
	view := mgl64.Translate3D(-v.eye.X(), -v.eye.Y(), -v.eye.Z())

	v.raster.Render(v.img, v.scene, view, proj)
	v.surface.Present(v.img)
}

// Run drives the render loop until ctx is cancelled or the viewport is
// disposed.
func (v *Viewport) Run(ctx context.Context) {
	ticker := time.NewTicker(v.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if v.Disposed() {
				return
			}
			v.Step()
		}
	}
}

// Resize adapts the viewport to a new surface size: the world height is
// re-derived from the aspect ratio and the size-dependent decoration is
// rebuilt. Projection math is otherwise unaffected.
func (v *Viewport) Resize(pixelWidth, pixelHeight int) {
	if pixelWidth <= 0 || pixelHeight <= 0 {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}

	v.height = v.opts.Width * float64(pixelHeight) / float64(pixelWidth)
	v.surface.SetSize(pixelWidth, pixelHeight)
	v.img = image.NewRGBA(image.Rect(0, 0, pixelWidth, pixelHeight))

	grid := render.NewGrid(v.opts.Width, v.height, v.opts.Depth, v.opts.GridDivisions, v.opts.GridColor)
	v.scene.Replace(v.grid, grid)
	v.grid = grid
}

// Dispose halts rendering, unsubscribes from the pose stream and releases
// the scene. It is idempotent and safe to call at any point of the
// viewport's life; the disposed flag never reverts.
func (v *Viewport) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	unsub := v.unsubscribe
	v.unsubscribe = nil
	if v.scene != nil {
		v.scene.Clear()
	}
	v.img = nil
	v.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Disposed reports whether Dispose has been called.
func (v *Viewport) Disposed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.disposed
}

// Eye returns the current smoothed eye position.
func (v *Viewport) Eye() mgl64.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.eye
}

// Target returns the current target eye position.
func (v *Viewport) Target() mgl64.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.target
}

// Height returns the derived world height of the window.
func (v *Viewport) Height() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// loadContent fetches the configured model and swaps it in for the
// placeholder. Load failures are recovered locally: the placeholder
// stays, nothing propagates to the host.
func (v *Viewport) loadContent(ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mesh, err := assets.Load(ctx, ref)
	if err != nil {
		log.Warn("content load failed, keeping placeholder",
			"viewport", v.Name(), "ref", ref, "error", err)
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	if mesh.Transform == (mgl64.Mat4{}) {
		mesh.Transform = mgl64.Translate3D(0, 0, -v.opts.Depth/2)
	}
	if mesh.Color.A == 0 {
		mesh.Color = v.opts.ContentColor
	}
	v.scene.Replace(v.content, mesh)
	v.content = mesh
	log.Info("content loaded", "viewport", v.Name(), "model", mesh.Name)
}
