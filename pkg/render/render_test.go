package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSceneAddRemoveReplace(t *testing.T) {
	s := NewScene(color.RGBA{A: 0xFF})

	a := &Mesh{Name: "a"}
	b := &Mesh{Name: "b"}
	s.Add(a)
	s.Add(b)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	// Replace preserves draw order.
	c := &Mesh{Name: "c"}
	s.Replace(a, c)
	var names []string
	s.eachMesh(func(m *Mesh) { names = append(names, m.Name) })
	if len(names) != 2 || names[0] != "c" || names[1] != "b" {
		t.Errorf("order after Replace = %v, want [c b]", names)
	}

	// Replacing an absent mesh appends.
	d := &Mesh{Name: "d"}
	s.Replace(a, d)
	if s.Len() != 3 {
		t.Errorf("Len() = %d after replace-absent, want 3", s.Len())
	}

	s.Remove(b)
	s.Remove(b) // absent, no-op
	if s.Len() != 2 {
		t.Errorf("Len() = %d after Remove, want 2", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", s.Len())
	}
}

func TestNewGridSpansWindowAndDepth(t *testing.T) {
	grid := NewGrid(10, 5, 15, 4, color.RGBA{G: 0xFF, A: 0xFF})

	if len(grid.Vertices) == 0 || len(grid.Edges) == 0 {
		t.Fatal("grid is empty")
	}

	minZ, maxZ := 0.0, -100.0
	for _, v := range grid.Vertices {
		if v.Z() < minZ {
			minZ = v.Z()
		}
		if v.Z() > maxZ {
			maxZ = v.Z()
		}
		if v.X() < -5 || v.X() > 5 || v.Y() < -2.5 || v.Y() > 2.5 {
			t.Fatalf("vertex %v outside window extents", v)
		}
	}
	if minZ != -15 {
		t.Errorf("deepest vertex z = %v, want -15", minZ)
	}
	if maxZ != 0 {
		t.Errorf("nearest vertex z = %v, want 0 (window plane)", maxZ)
	}

	for _, e := range grid.Edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(grid.Vertices) || e[1] >= len(grid.Vertices) {
			t.Fatalf("edge %v references missing vertex", e)
		}
	}
}

func TestDefaultContentSitsMidRoom(t *testing.T) {
	cube := DefaultContent(10, 5, 15, color.RGBA{R: 0xFF, A: 0xFF})

	if len(cube.Vertices) != 8 || len(cube.Edges) != 12 {
		t.Fatalf("cube has %d vertices and %d edges, want 8 and 12",
			len(cube.Vertices), len(cube.Edges))
	}
	center := cube.Transform.Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	if center.Z() != -7.5 {
		t.Errorf("cube center z = %v, want -7.5", center.Z())
	}
}

func TestRenderDrawsVisibleEdges(t *testing.T) {
	bg := color.RGBA{A: 0xFF}
	fg := color.RGBA{R: 0xFF, A: 0xFF}
	s := NewScene(bg)
	s.Add(&Mesh{
		Vertices: []mgl64.Vec3{{-1, 0, -5}, {1, 0, -5}},
		Edges:    [][2]int{{0, 1}},
		Color:    fg,
	})

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	var r Rasterizer
	proj := mgl64.Perspective(mgl64.DegToRad(60), 1, 0.1, 100)
	r.Render(img, s, mgl64.Ident4(), proj)

	var drawn int
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if img.RGBAAt(x, y) == fg {
				drawn++
			}
		}
	}
	if drawn == 0 {
		t.Fatal("no foreground pixels drawn for a visible edge")
	}

	// A horizontal line through the origin lands on the middle row.
	mid := img.RGBAAt(20, 19) == fg || img.RGBAAt(20, 20) == fg
	if !mid {
		t.Error("edge through origin missed the image center")
	}
}

func TestRenderSkipsEdgesBehindCamera(t *testing.T) {
	bg := color.RGBA{A: 0xFF}
	fg := color.RGBA{R: 0xFF, A: 0xFF}
	s := NewScene(bg)
	s.Add(&Mesh{
		Vertices: []mgl64.Vec3{{-1, 0, 5}, {1, 0, 5}}, // behind the eye
		Edges:    [][2]int{{0, 1}},
		Color:    fg,
	})

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	var r Rasterizer
	proj := mgl64.Perspective(mgl64.DegToRad(60), 1, 0.1, 100)
	r.Render(img, s, mgl64.Ident4(), proj)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if img.RGBAAt(x, y) == fg {
				t.Fatalf("pixel (%d,%d) drawn for an edge behind the camera", x, y)
			}
		}
	}
}

func TestRenderIgnoresMalformedEdges(t *testing.T) {
	s := NewScene(color.RGBA{A: 0xFF})
	s.Add(&Mesh{
		Vertices: []mgl64.Vec3{{0, 0, -5}},
		Edges:    [][2]int{{0, 7}, {-1, 0}},
		Color:    color.RGBA{R: 0xFF, A: 0xFF},
	})

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var r Rasterizer
	r.Render(img, s, mgl64.Ident4(), mgl64.Ident4()) // must not panic
}
