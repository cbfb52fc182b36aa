// Package assets loads wireframe models for viewport content. Models are
// small JSON documents, fetched over HTTP or read from disk; loading is
// best-effort and callers fall back to placeholder content on any error.
package assets

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/dgavriloff/go-portal/pkg/render"
)

// ErrInvalidModel is returned when a model document fails validation.
var ErrInvalidModel = errors.New("assets: invalid model")

// Model is the wire format of a wireframe model.
type Model struct {
	Name     string       `json:"name"`
	Color    string       `json:"color"` // "#rrggbb", optional
	Vertices [][3]float64 `json:"vertices"`
	Edges    [][2]int     `json:"edges"`
}

// Mesh validates the model and converts it to a renderable mesh.
func (m *Model) Mesh() (*render.Mesh, error) {
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("%w: no vertices", ErrInvalidModel)
	}
	if len(m.Edges) == 0 {
		return nil, fmt.Errorf("%w: no edges", ErrInvalidModel)
	}
	for i, e := range m.Edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(m.Vertices) || e[1] >= len(m.Vertices) {
			return nil, fmt.Errorf("%w: edge %d references vertex out of range", ErrInvalidModel, i)
		}
	}

	var col color.RGBA
	if m.Color != "" {
		c, err := parseHexColor(m.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		col = c
	}

	verts := make([]mgl64.Vec3, len(m.Vertices))
	for i, p := range m.Vertices {
		verts[i] = mgl64.Vec3{p[0], p[1], p[2]}
	}
	edges := make([][2]int, len(m.Edges))
	copy(edges, m.Edges)

	return &render.Mesh{
		Name:     m.Name,
		Vertices: verts,
		Edges:    edges,
		Color:    col,
	}, nil
}

// parseHexColor parses "#rrggbb" into an opaque RGBA.
func parseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}
