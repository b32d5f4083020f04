package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/pkg/scene"
)

// extract builds the intermediate graph from a mesh node and applies all
// attribute layers. Extraction of polygons stops at the first polygon that
// is not a triangle or references a missing control point.
func extract(node *scene.Node, diag *Diagnostics) *meshGraph {
	mesh := node.Mesh
	g := &meshGraph{
		sourceCorners:  mesh.PolygonVertexCount(),
		sourcePolygons: len(mesh.Polygons),
	}

	g.materials = extractMaterials(node.Materials, diag)

	g.controlPoints = make([]controlPoint, len(mesh.ControlPoints))
	for i, p := range mesh.ControlPoints {
		g.controlPoints[i].position = convertVec3(p)
	}

	extractPolygons(g, mesh.Polygons, diag)
	diag.trace("found polygons", zap.Int("count", len(g.polygons)))

	applyVertexLayers(g, "normal", mesh.Normals, setNormal, diag)
	applyVertexLayers(g, "tangent", mesh.Tangents, setTangent, diag)
	applyVertexLayers(g, "uv", mesh.UVs, setUV, diag)
	applyMaterialLayers(g, mesh.Materials, diag)

	return g
}

func extractPolygons(g *meshGraph, polygons [][]int, diag *Diagnostics) {
	g.corners = make([]unresolvedVertex, 0, 3*len(polygons))
	g.polygons = make([]polygon, 0, len(polygons))

	for pi, cps := range polygons {
		if len(cps) != 3 {
			diag.reportError(fmt.Errorf("polygon %d has %d corners: %w", pi, len(cps), ErrNonTriangle))
			return
		}
		for _, cp := range cps {
			if cp < 0 || cp >= len(g.controlPoints) {
				diag.reportError(fmt.Errorf("polygon %d: control point %d: %w", pi, cp, ErrInvalidControlPoint))
				return
			}
		}

		var p polygon
		for j, cp := range cps {
			corner := len(g.corners)
			g.corners = append(g.corners, unresolvedVertex{position: g.controlPoints[cp].position})
			g.controlPoints[cp].corners = append(g.controlPoints[cp].corners, corner)
			p.corners[j] = corner
		}
		g.polygons = append(g.polygons, p)
	}
}

// extractMaterials reads the texture names of every material slot. Slots with
// an unsupported shading model still produce an empty material so indices
// stay aligned.
func extractMaterials(materials []scene.Material, diag *Diagnostics) []material {
	out := make([]material, 0, len(materials))
	for _, m := range materials {
		if m.Shading != scene.ShadingPhong && m.Shading != scene.ShadingLambert {
			diag.reportError(fmt.Errorf("material %q: shading %q: %w", m.Name, m.Shading, ErrUnknownShading))
			out = append(out, material{})
			continue
		}

		diag.trace("found material", zap.String("name", m.Name), zap.String("shading", string(m.Shading)))

		var mat material
		if m.Diffuse != nil {
			mat.diffuse = m.Diffuse.FileName
		} else {
			diag.reportError(fmt.Errorf("material %q: no diffuse texture: %w", m.Name, ErrMissingTexture))
		}
		if m.NormalMap != nil {
			mat.normal = m.NormalMap.FileName
		} else {
			diag.reportError(fmt.Errorf("material %q: no normal map texture: %w", m.Name, ErrMissingTexture))
		}
		out = append(out, mat)
	}
	return out
}
