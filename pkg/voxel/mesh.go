// Package voxel converts triangle meshes into voxel sets and compresses
// those sets into axis-aligned cuboids.
//
// The pipeline has three stages. TriangleIntersectsBox is an exact
// separating-axis test between a triangle and a cube. A Voxelizer
// rasterizes every triangle of a mesh against the grid cells in its
// bounding range and unions the hits into a Set. GreedyMesh partitions a
// Set into cuboids by growing runs along x, then z, then y. Pipeline runs
// both stages for many meshes concurrently and collects one Group per
// non-empty mesh.
package voxel

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/voxgeo/pkg/math"
)

// Mesh is a named, triangulated, single-indexed triangle mesh.
// Positions holds 3 floats per vertex, Indices holds 3 vertex indices per
// triangle.
type Mesh struct {
	Name      string
	Positions []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) math.Vec3 {
	p := m.Positions[i*3 : i*3+3]
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// Triangle returns the three corners of triangle t.
func (m *Mesh) Triangle(t int) (v0, v1, v2 math.Vec3) {
	idx := m.Indices[t*3 : t*3+3]
	return m.Vertex(idx[0]), m.Vertex(idx[1]), m.Vertex(idx[2])
}

// Validate checks buffer shapes, index bounds and that every vertex is
// finite. A mesh that passes can be voxelized without out-of-range reads.
func (m *Mesh) Validate() error {
	if len(m.Positions)%3 != 0 {
		return &MeshError{Mesh: m.Name, Reason: "position buffer length is not a multiple of 3"}
	}
	if len(m.Indices)%3 != 0 {
		return &MeshError{Mesh: m.Name, Reason: "index buffer length is not a multiple of 3"}
	}
	for i := 0; i < m.VertexCount(); i++ {
		if !m.Vertex(uint32(i)).IsFinite() {
			return &MeshError{Mesh: m.Name, Reason: fmt.Sprintf("vertex %d is not finite", i)}
		}
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return &MeshError{Mesh: m.Name, Reason: indexReason(i, idx, n)}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounds of all vertices. ok is false for
// a mesh without vertices.
func (m *Mesh) Bounds() (lo, hi math.Vec3, ok bool) {
	if m.VertexCount() == 0 {
		return lo, hi, false
	}
	lo = m.Vertex(0)
	hi = lo
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(uint32(i))
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi, true
}

// SignedVolume returns the volume enclosed by the mesh, positive when its
// triangles wind counter-clockwise seen from outside. The result is only
// meaningful for closed meshes.
func (m *Mesh) SignedVolume() float64 {
	if m.TriangleCount() == 0 {
		return 0
	}
	// Relative to the first vertex to keep far-off meshes precise.
	o := m.Vertex(m.Indices[0])
	var sum float64
	for t := 0; t < m.TriangleCount(); t++ {
		v0, v1, v2 := m.Triangle(t)
		a, b, c := v0.Sub(o), v1.Sub(o), v2.Sub(o)
		sum += float64(a.X)*(float64(b.Y)*float64(c.Z)-float64(b.Z)*float64(c.Y)) -
			float64(a.Y)*(float64(b.X)*float64(c.Z)-float64(b.Z)*float64(c.X)) +
			float64(a.Z)*(float64(b.X)*float64(c.Y)-float64(b.Y)*float64(c.X))
	}
	return sum / 6
}

// Transform returns a copy of the mesh with every vertex transformed by t.
// Indices are shared with the original.
func (m *Mesh) Transform(t math.Mat4) Mesh {
	out := Mesh{
		Name:      m.Name,
		Positions: make([]float32, len(m.Positions)),
		Indices:   m.Indices,
	}
	for i := 0; i < m.VertexCount(); i++ {
		v := t.TransformVec3(m.Vertex(uint32(i)))
		out.Positions[i*3] = v.X
		out.Positions[i*3+1] = v.Y
		out.Positions[i*3+2] = v.Z
	}
	return out
}

func finite(f float32) bool {
	return !gomath.IsNaN(float64(f)) && !gomath.IsInf(float64(f), 0)
}
