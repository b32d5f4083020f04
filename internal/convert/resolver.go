package convert

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/meshconv/pkg/scene"
)

// encoding is the (mapping, reference) pair a layer declares.
type encoding struct {
	mapping   scene.MappingMode
	reference scene.ReferenceMode
}

// Supported encodings.
var (
	byControlPointDirect         = encoding{scene.MappingByControlPoint, scene.ReferenceDirect}
	byPolygonVertexDirect        = encoding{scene.MappingByPolygonVertex, scene.ReferenceDirect}
	byPolygonVertexIndexToDirect = encoding{scene.MappingByPolygonVertex, scene.ReferenceIndexToDirect}
	byPolygonIndexToDirect       = encoding{scene.MappingByPolygon, scene.ReferenceIndexToDirect}
	allSameIndexToDirect         = encoding{scene.MappingAllSame, scene.ReferenceIndexToDirect}
)

// write assigns the value at index value of a layer to target, a polygon
// vertex or a polygon depending on the layer kind.
type write struct {
	target int
	value  int
}

// resolved is the outcome of resolving one layer.
type resolved struct {
	writes     []write
	outOfRange int
}

// addCorner records a write to the polygon vertex with the given source
// ordinal. Ordinals past the source mesh count as out of range; ordinals of
// polygons that were never extracted are dropped.
func (r *resolved) addCorner(g *meshGraph, ordinal, value int) {
	switch {
	case ordinal >= g.sourceCorners:
		r.outOfRange++
	case ordinal < len(g.corners):
		r.writes = append(r.writes, write{target: ordinal, value: value})
	}
}

func (r *resolved) addPolygon(g *meshGraph, ordinal, value int) {
	switch {
	case ordinal >= g.sourcePolygons:
		r.outOfRange++
	case ordinal < len(g.polygons):
		r.writes = append(r.writes, write{target: ordinal, value: value})
	}
}

// resolveVertexLayer turns a normal, tangent or uv layer with directLen values
// into per polygon vertex writes.
func resolveVertexLayer(g *meshGraph, name string, enc encoding, directLen int, index []int) (resolved, error) {
	var r resolved

	switch enc {
	case byControlPointDirect:
		for cp := 0; cp < directLen; cp++ {
			if cp >= len(g.controlPoints) {
				r.outOfRange++
				continue
			}
			for _, corner := range g.controlPoints[cp].corners {
				r.writes = append(r.writes, write{target: corner, value: cp})
			}
		}

	case byPolygonVertexDirect:
		for i := 0; i < directLen; i++ {
			r.addCorner(g, i, i)
		}

	case byPolygonVertexIndexToDirect:
		for i, idx := range index {
			if idx < 0 || idx >= directLen {
				r.outOfRange++
				continue
			}
			r.addCorner(g, i, idx)
		}

	default:
		return r, &UnsupportedEncodingError{Layer: name, Mapping: enc.mapping, Reference: enc.reference}
	}

	return r, nil
}

// resolveMaterialLayer turns a material layer into per polygon writes. The
// written value is the material index itself.
func resolveMaterialLayer(g *meshGraph, name string, enc encoding, index []int) (resolved, error) {
	var r resolved

	switch enc {
	case byPolygonIndexToDirect:
		for i, idx := range index {
			r.addPolygon(g, i, idx)
		}

	case allSameIndexToDirect:
		if len(index) != 1 {
			return r, fmt.Errorf("%s: %d indices: %w", name, len(index), ErrAllSameIndexCount)
		}
		for i := range g.polygons {
			r.writes = append(r.writes, write{target: i, value: index[0]})
		}

	default:
		return r, &UnsupportedEncodingError{Layer: name, Mapping: enc.mapping, Reference: enc.reference}
	}

	return r, nil
}

// setter stores value on a polygon vertex and reports false if the
// attribute was already set.
type setter[T any] func(v *unresolvedVertex, value T) bool

func setNormal(v *unresolvedVertex, n mgl64.Vec3) bool {
	if v.normal != nil {
		return false
	}
	c := convertVec3(n)
	v.normal = &c
	return true
}

func setTangent(v *unresolvedVertex, t mgl64.Vec3) bool {
	if v.tangent != nil {
		return false
	}
	c := convertVec3(t)
	v.tangent = &c
	return true
}

func setUV(v *unresolvedVertex, uv mgl64.Vec2) bool {
	if v.uv != nil {
		return false
	}
	c := convertUV(uv)
	v.uv = &c
	return true
}

// applyVertexLayers resolves and applies every layer of one attribute kind.
func applyVertexLayers[T any](g *meshGraph, kind string, layers []scene.LayerElement[T], set setter[T], diag *Diagnostics) {
	for i, layer := range layers {
		name := fmt.Sprintf("%s layer %d", kind, i)
		enc := encoding{layer.Mapping, layer.Reference}

		r, err := resolveVertexLayer(g, name, enc, len(layer.Direct), layer.Index)
		if err != nil {
			diag.reportError(err)
			continue
		}

		conflicts := 0
		for _, w := range r.writes {
			if !set(&g.corners[w.target], layer.Direct[w.value]) {
				conflicts++
			}
		}
		reportLayerProblems(name, r.outOfRange, conflicts, diag)
	}
}

// applyMaterialLayers resolves and applies every material layer.
func applyMaterialLayers(g *meshGraph, layers []scene.MaterialLayer, diag *Diagnostics) {
	for i, layer := range layers {
		name := fmt.Sprintf("material layer %d", i)
		enc := encoding{layer.Mapping, layer.Reference}

		r, err := resolveMaterialLayer(g, name, enc, layer.Index)
		if err != nil {
			diag.reportError(err)
			continue
		}

		conflicts := 0
		for _, w := range r.writes {
			p := &g.polygons[w.target]
			if p.material != nil {
				conflicts++
				continue
			}
			m := w.value
			p.material = &m
		}
		reportLayerProblems(name, r.outOfRange, conflicts, diag)
	}
}

func reportLayerProblems(name string, outOfRange, conflicts int, diag *Diagnostics) {
	if outOfRange > 0 {
		diag.reportErrors(fmt.Errorf("%s: %d entries: %w", name, outOfRange, ErrLayerOutOfRange), outOfRange)
	}
	if conflicts > 0 {
		diag.reportErrors(fmt.Errorf("%s: %d values: %w", name, conflicts, ErrAttributeConflict), conflicts)
	}
}
