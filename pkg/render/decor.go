package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Scene decoration. The window plane sits at z=0 spanning
// [-width/2,width/2] x [-height/2,height/2]; the scene recedes to
// z=-depth. These builders produce the "room" behind the window and a
// placeholder content object, both sized to the current window extents,
// so they are rebuilt whenever the window is resized.

// NewGrid builds the wireframe room behind the window: rectangular rings
// at regular depth intervals joined by corner rails, plus vertical and
// horizontal wall lines. divisions controls how many intervals each wall
// is split into.
func NewGrid(width, height, depth float64, divisions int, col color.RGBA) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	hw := width / 2
	hh := height / 2

	var verts []mgl64.Vec3
	var edges [][2]int

	ring := func(z float64) [4]int {
		base := len(verts)
		verts = append(verts,
			mgl64.Vec3{-hw, -hh, z},
			mgl64.Vec3{hw, -hh, z},
			mgl64.Vec3{hw, hh, z},
			mgl64.Vec3{-hw, hh, z},
		)
		edges = append(edges,
			[2]int{base, base + 1},
			[2]int{base + 1, base + 2},
			[2]int{base + 2, base + 3},
			[2]int{base + 3, base},
		)
		return [4]int{base, base + 1, base + 2, base + 3}
	}

	var prev [4]int
	for i := 0; i <= divisions; i++ {
		z := -depth * float64(i) / float64(divisions)
		cur := ring(z)
		if i > 0 {
			for c := 0; c < 4; c++ {
				edges = append(edges, [2]int{prev[c], cur[c]})
			}
		}
		prev = cur
	}

	// Wall lines parallel to the view axis, splitting floor, ceiling
	// and side walls.
	for i := 1; i < divisions; i++ {
		t := float64(i)/float64(divisions)*2 - 1 // (-1,1)
		for _, line := range [][2]mgl64.Vec3{
			{{hw * t, -hh, 0}, {hw * t, -hh, -depth}}, // floor
			{{hw * t, hh, 0}, {hw * t, hh, -depth}},   // ceiling
			{{-hw, hh * t, 0}, {-hw, hh * t, -depth}}, // left wall
			{{hw, hh * t, 0}, {hw, hh * t, -depth}},   // right wall
		} {
			base := len(verts)
			verts = append(verts, line[0], line[1])
			edges = append(edges, [2]int{base, base + 1})
		}
	}

	return &Mesh{
		Name:     "grid",
		Vertices: verts,
		Edges:    edges,
		Color:    col,
	}
}

// DefaultContent builds the placeholder content object: a cube floating
// halfway into the room, scaled to the window size. It is the fallback
// whenever no model is configured or loading fails.
func DefaultContent(width, height, depth float64, col color.RGBA) *Mesh {
	s := min(width, height) / 4

	verts := []mgl64.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	edges := [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	return &Mesh{
		Name:      "placeholder",
		Vertices:  verts,
		Edges:     edges,
		Transform: mgl64.Translate3D(0, 0, -depth/2),
		Color:     col,
	}
}
