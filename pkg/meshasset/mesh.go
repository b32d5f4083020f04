// Package meshasset defines the renderer-ready mesh asset and its file formats.
package meshasset

import "github.com/go-gl/mathgl/mgl32"

// Material names the textures of one material slot. Names carry no directory or extension.
type Material struct {
	DiffuseMap string `json:"diffuse_map"`
	NormalMap  string `json:"normal_map"`
}

// Vertex is one entry of the deduplicated vertex buffer, in left-handed space.
type Vertex struct {
	Position mgl32.Vec3 `json:"position"`
	Normal   mgl32.Vec3 `json:"normal"`
	Tangent  mgl32.Vec3 `json:"tangent"`
	UV       mgl32.Vec2 `json:"uv"`
}

// Triangle references three vertices and a material slot.
type Triangle struct {
	V0            uint16 `json:"v0"`
	V1            uint16 `json:"v1"`
	V2            uint16 `json:"v2"`
	MaterialIndex uint16 `json:"material_index"`
}

// Mesh is the complete asset. Triangles are ordered by material index.
type Mesh struct {
	Materials []Material `json:"materials"`
	Vertices  []Vertex   `json:"vertices"`
	Triangles []Triangle `json:"triangles"`
}

// MaterialGroup is a contiguous run of triangles sharing one material.
type MaterialGroup struct {
	MaterialIndex uint16
	StartTriangle int
	TriangleCount int
}

// Bounds holds the axis-aligned bounding box of the vertex positions.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Groups returns the material runs of the triangle list in order.
func (m *Mesh) Groups() []MaterialGroup {
	var groups []MaterialGroup
	for i, tri := range m.Triangles {
		if n := len(groups); n > 0 && groups[n-1].MaterialIndex == tri.MaterialIndex {
			groups[n-1].TriangleCount++
			continue
		}
		groups = append(groups, MaterialGroup{
			MaterialIndex: tri.MaterialIndex,
			StartTriangle: i,
			TriangleCount: 1,
		})
	}
	return groups
}

// Bounds returns the bounding box of all vertices. ok is false for an empty mesh.
func (m *Mesh) Bounds() (b Bounds, ok bool) {
	if len(m.Vertices) == 0 {
		return Bounds{}, false
	}
	b.Min = m.Vertices[0].Position
	b.Max = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		updateBounds(&b, v.Position)
	}
	return b, true
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Stats summarizes an asset for display.
type Stats struct {
	Materials int
	Vertices  int
	Triangles int
	Groups    []MaterialGroup
	Bounds    Bounds
	HasBounds bool
}

// Stats returns counts, material runs and bounds of the asset.
func (m *Mesh) Stats() Stats {
	s := Stats{
		Materials: len(m.Materials),
		Vertices:  len(m.Vertices),
		Triangles: len(m.Triangles),
		Groups:    m.Groups(),
	}
	s.Bounds, s.HasBounds = m.Bounds()
	return s
}
