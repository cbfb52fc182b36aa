// Package render provides a minimal wireframe scene graph and a software
// rasterizer. A scene holds edge meshes; the rasterizer projects them
// through caller-supplied view and projection matrices into an RGBA image.
package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a wireframe object: vertices in object space plus edge indices.
type Mesh struct {
	Name      string
	Vertices  []mgl64.Vec3
	Edges     [][2]int
	Transform mgl64.Mat4
	Color     color.RGBA
}

// transform returns the object transform, defaulting to identity.
func (m *Mesh) transform() mgl64.Mat4 {
	if m.Transform == (mgl64.Mat4{}) {
		return mgl64.Ident4()
	}
	return m.Transform
}

// Scene is a collection of meshes with a background color. Scenes are not
// synchronized; callers serialize access.
type Scene struct {
	Background color.RGBA

	meshes []*Mesh
}

// NewScene creates an empty scene with the given background.
func NewScene(background color.RGBA) *Scene {
	return &Scene{Background: background}
}

// Add appends a mesh to the scene.
func (s *Scene) Add(m *Mesh) {
	if m == nil {
		return
	}
	s.meshes = append(s.meshes, m)
}

// Remove deletes a mesh by identity. Removing a mesh that is not in the
// scene is a no-op.
func (s *Scene) Remove(m *Mesh) {
	for i, have := range s.meshes {
		if have == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return
		}
	}
}

// Replace swaps old for new in place, preserving draw order. If old is
// not present, new is appended.
func (s *Scene) Replace(old, new *Mesh) {
	for i, have := range s.meshes {
		if have == old {
			s.meshes[i] = new
			return
		}
	}
	s.Add(new)
}

// Clear removes all meshes.
func (s *Scene) Clear() {
	s.meshes = nil
}

// Len returns the number of meshes in the scene.
func (s *Scene) Len() int {
	return len(s.meshes)
}

func (s *Scene) eachMesh(fn func(m *Mesh)) {
	for _, m := range s.meshes {
		fn(m)
	}
}
