package render

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clip-space w below this is treated as behind the camera.
const nearClipEpsilon = 1e-6

// ndcLimit drops lines whose endpoints land absurdly far outside the
// normalized device cube; per-pixel clipping handles the rest.
const ndcLimit = 8.0

// Rasterizer draws wireframe scenes into RGBA images. It holds no state
// and is safe to share.
type Rasterizer struct{}

// Render clears the image to the scene background and draws every mesh
// edge through view and projection.
func (r *Rasterizer) Render(img *image.RGBA, s *Scene, view, proj mgl64.Mat4) {
	if img == nil || s == nil {
		return
	}

	fill(img, s.Background)

	vp := proj.Mul4(view)
	s.eachMesh(func(m *Mesh) {
		r.renderMesh(img, m, vp)
	})
}

func (r *Rasterizer) renderMesh(img *image.RGBA, m *Mesh, vp mgl64.Mat4) {
	if len(m.Vertices) == 0 || len(m.Edges) == 0 {
		return
	}

	mvp := vp.Mul4(m.transform())
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	for _, e := range m.Edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(m.Vertices) || e[1] >= len(m.Vertices) {
			continue
		}

		pa := mvp.Mul4x1(m.Vertices[e[0]].Vec4(1))
		pb := mvp.Mul4x1(m.Vertices[e[1]].Vec4(1))

		// Drop edges touching the plane of the eye; no partial
		// near-plane clipping for wireframes.
		if pa.W() < nearClipEpsilon || pb.W() < nearClipEpsilon {
			continue
		}

		ax, ay := ndcToScreen(pa, w, h)
		bx, by := ndcToScreen(pb, w, h)
		if math.Abs(ax) > float64(w)*ndcLimit || math.Abs(bx) > float64(w)*ndcLimit ||
			math.Abs(ay) > float64(h)*ndcLimit || math.Abs(by) > float64(h)*ndcLimit {
			continue
		}

		drawLine(img, int(ax), int(ay), int(bx), int(by), m.Color)
	}
}

// ndcToScreen perspective-divides a clip-space point and maps it to pixel
// coordinates, y down.
func ndcToScreen(p mgl64.Vec4, w, h int) (float64, float64) {
	inv := 1 / p.W()
	x := p.X() * inv
	y := p.Y() * inv
	sx := (x + 1) / 2 * float64(w-1)
	sy := (1 - y) / 2 * float64(h-1)
	return sx, sy
}

// drawLine is an integer Bresenham with per-pixel bounds checks, which
// doubles as screen clipping.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	b := img.Bounds()

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= b.Min.X && x0 < b.Max.X && y0 >= b.Min.Y && y0 < b.Max.Y {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
