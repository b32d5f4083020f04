package convert

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for attributes no layer provided.
var (
	defaultNormal  = mgl32.Vec3{1, 0, 0}
	defaultTangent = mgl32.Vec3{1, 0, 0}
	defaultUV      = mgl32.Vec2{0, 0}
)

// repair fills every missing attribute and material index, turning the graph
// into fully resolved vertices and triangles. Material 0 always exists
// afterwards and every triangle's material is in range.
func repair(g *meshGraph, diag *Diagnostics) *repairedMesh {
	r := &repairedMesh{materials: g.materials}

	if len(r.materials) == 0 {
		diag.reportError(ErrNoMaterials)
		r.materials = append(r.materials, material{})
	}

	var missingNormals, missingTangents, missingUVs int
	r.vertices = make([]vertex, len(g.corners))
	for i, c := range g.corners {
		v := vertex{
			position: c.position,
			normal:   defaultNormal,
			tangent:  defaultTangent,
			uv:       defaultUV,
		}
		if c.normal != nil {
			v.normal = *c.normal
		} else {
			missingNormals++
		}
		if c.tangent != nil {
			v.tangent = *c.tangent
		} else {
			missingTangents++
		}
		if c.uv != nil {
			v.uv = *c.uv
		} else {
			missingUVs++
		}
		r.vertices[i] = v
	}
	reportMissing(diag, "normal", missingNormals)
	reportMissing(diag, "tangent", missingTangents)
	reportMissing(diag, "uv", missingUVs)

	missingMaterials := 0
	r.triangles = make([]triangle, len(g.polygons))
	for i, p := range g.polygons {
		t := triangle{corners: p.corners}
		switch {
		case p.material == nil:
			missingMaterials++
		case *p.material < 0 || *p.material >= len(r.materials):
			diag.reportError(fmt.Errorf("polygon %d: material %d of %d: %w",
				i, *p.material, len(r.materials), ErrMaterialOutOfRange))
		default:
			t.material = *p.material
		}
		r.triangles[i] = t
	}
	reportMissing(diag, "material index", missingMaterials)

	return r
}

func reportMissing(diag *Diagnostics, attr string, n int) {
	if n == 0 {
		return
	}
	diag.reportWarning(fmt.Errorf("%s on %d elements: %w", attr, n, ErrMissingAttribute), n)
}
