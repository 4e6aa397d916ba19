package voxel

import "github.com/Faultbox/voxgeo/pkg/math"

// MeshBuilder assembles an indexed mesh from loose triangles, merging
// vertices with identical positions.
type MeshBuilder struct {
	mesh Mesh
	seen map[math.Vec3]uint32
}

// NewMeshBuilder returns an empty builder for a mesh called name.
func NewMeshBuilder(name string) *MeshBuilder {
	return &MeshBuilder{
		mesh: Mesh{Name: name},
		seen: make(map[math.Vec3]uint32),
	}
}

// AddTriangle appends the triangle (v0, v1, v2).
func (b *MeshBuilder) AddTriangle(v0, v1, v2 math.Vec3) {
	b.mesh.Indices = append(b.mesh.Indices, b.vertex(v0), b.vertex(v1), b.vertex(v2))
}

func (b *MeshBuilder) vertex(v math.Vec3) uint32 {
	if idx, ok := b.seen[v]; ok {
		return idx
	}
	idx := uint32(b.mesh.VertexCount())
	b.mesh.Positions = append(b.mesh.Positions, v.X, v.Y, v.Z)
	b.seen[v] = idx
	return idx
}

// Mesh returns the mesh built so far. The builder must not be used
// afterwards.
func (b *MeshBuilder) Mesh() Mesh {
	return b.mesh
}
