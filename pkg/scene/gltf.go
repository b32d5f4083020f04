package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// maxNodeDepth bounds the node recursion so malformed documents with cycles terminate.
const maxNodeDepth = 256

// LoadGLTF imports a .gltf or .glb file.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening glTF %q", path)
	}
	s, err := FromGLTF(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "importing glTF %q", path)
	}
	return s, nil
}

// FromGLTF converts the default scene of a glTF document into a Scene.
//
// Each glTF mesh becomes one scene mesh: the vertices of all its primitives are
// concatenated into control points, attributes become by-control-point direct layers
// and primitive materials become a by-polygon index-to-direct material layer. Texture
// coordinates are converted to a bottom-left origin to match the other importers.
func FromGLTF(doc *gltf.Document) (*Scene, error) {
	s := &Scene{Root: &Node{Name: "RootNode"}}

	var roots []uint32
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		s.Name = doc.Scenes[*doc.Scene].Name
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		s.Name = doc.Scenes[0].Name
		roots = doc.Scenes[0].Nodes
	default:
		roots = rootNodes(doc)
	}

	for _, idx := range roots {
		child, err := importNode(doc, idx, 0)
		if err != nil {
			return nil, err
		}
		s.Root.Children = append(s.Root.Children, child)
	}
	return s, nil
}

// rootNodes returns nodes that are nobody's child, for documents without scenes.
func rootNodes(doc *gltf.Document) []uint32 {
	isChild := make(map[uint32]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !isChild[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func importNode(doc *gltf.Document, idx uint32, depth int) (*Node, error) {
	if int(idx) >= len(doc.Nodes) {
		return nil, errors.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return nil, errors.New("node hierarchy too deep")
	}

	gn := doc.Nodes[idx]
	node := &Node{Name: gn.Name}

	if gn.Mesh != nil {
		mesh, usesMaterials, err := importMesh(doc, *gn.Mesh)
		if err != nil {
			return nil, errors.Wrapf(err, "node %q", gn.Name)
		}
		node.Mesh = mesh
		if usesMaterials {
			for _, m := range doc.Materials {
				node.Materials = append(node.Materials, importMaterial(doc, m))
			}
		}
	}

	for _, c := range gn.Children {
		child, err := importNode(doc, c, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func importMesh(doc *gltf.Document, idx uint32) (*Mesh, bool, error) {
	if int(idx) >= len(doc.Meshes) {
		return nil, false, errors.Errorf("mesh %d out of range", idx)
	}
	gm := doc.Meshes[idx]

	mesh := &Mesh{}
	var (
		normals      []mgl64.Vec3
		tangents     []mgl64.Vec3
		uvs          []mgl64.Vec2
		polyMaterial []int
		usesMaterial bool
	)
	hasNormals, hasTangents, hasUVs := true, true, true

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, false, errors.Errorf("primitive %d: mode %d is not a triangle list", pi, prim.Mode)
		}

		posAcr, err := attributeAccessor(doc, prim, gltf.POSITION)
		if err != nil {
			return nil, false, errors.Wrapf(err, "primitive %d", pi)
		}
		positions, err := modeler.ReadPosition(doc, posAcr, nil)
		if err != nil {
			return nil, false, errors.Wrapf(err, "primitive %d: reading positions", pi)
		}

		base := len(mesh.ControlPoints)
		for _, p := range positions {
			mesh.ControlPoints = append(mesh.ControlPoints, mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
		}

		indices, err := primitiveIndices(doc, prim, len(positions))
		if err != nil {
			return nil, false, errors.Wrapf(err, "primitive %d", pi)
		}
		if len(indices)%3 != 0 {
			return nil, false, errors.Errorf("primitive %d: %d indices do not form triangles", pi, len(indices))
		}

		material := 0
		if prim.Material != nil {
			material = int(*prim.Material)
			usesMaterial = true
		}
		for i := 0; i < len(indices); i += 3 {
			mesh.Polygons = append(mesh.Polygons, []int{
				base + int(indices[i]),
				base + int(indices[i+1]),
				base + int(indices[i+2]),
			})
			polyMaterial = append(polyMaterial, material)
		}

		if acr, err := attributeAccessor(doc, prim, gltf.NORMAL); err == nil && hasNormals {
			values, err := modeler.ReadNormal(doc, acr, nil)
			if err != nil {
				return nil, false, errors.Wrapf(err, "primitive %d: reading normals", pi)
			}
			for _, n := range values {
				normals = append(normals, mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])})
			}
		} else {
			hasNormals = false
		}

		if acr, err := attributeAccessor(doc, prim, gltf.TANGENT); err == nil && hasTangents {
			values, err := modeler.ReadTangent(doc, acr, nil)
			if err != nil {
				return nil, false, errors.Wrapf(err, "primitive %d: reading tangents", pi)
			}
			for _, t := range values {
				tangents = append(tangents, mgl64.Vec3{float64(t[0]), float64(t[1]), float64(t[2])})
			}
		} else {
			hasTangents = false
		}

		if acr, err := attributeAccessor(doc, prim, gltf.TEXCOORD_0); err == nil && hasUVs {
			values, err := modeler.ReadTextureCoord(doc, acr, nil)
			if err != nil {
				return nil, false, errors.Wrapf(err, "primitive %d: reading texture coordinates", pi)
			}
			for _, uv := range values {
				uvs = append(uvs, mgl64.Vec2{float64(uv[0]), 1 - float64(uv[1])})
			}
		} else {
			hasUVs = false
		}
	}

	if hasNormals && len(normals) > 0 {
		mesh.Normals = []LayerElement[mgl64.Vec3]{byControlPoint(normals)}
	}
	if hasTangents && len(tangents) > 0 {
		mesh.Tangents = []LayerElement[mgl64.Vec3]{byControlPoint(tangents)}
	}
	if hasUVs && len(uvs) > 0 {
		mesh.UVs = []LayerElement[mgl64.Vec2]{byControlPoint(uvs)}
	}
	if usesMaterial {
		mesh.Materials = []MaterialLayer{{
			Mapping:   MappingByPolygon,
			Reference: ReferenceIndexToDirect,
			Index:     polyMaterial,
		}}
	}
	return mesh, usesMaterial, nil
}

func byControlPoint[T any](values []T) LayerElement[T] {
	return LayerElement[T]{
		Mapping:   MappingByControlPoint,
		Reference: ReferenceDirect,
		Direct:    values,
	}
}

func attributeAccessor(doc *gltf.Document, prim *gltf.Primitive, name string) (*gltf.Accessor, error) {
	idx, ok := prim.Attributes[name]
	if !ok {
		return nil, errors.Errorf("missing %s attribute", name)
	}
	if int(idx) >= len(doc.Accessors) {
		return nil, errors.Errorf("%s accessor %d out of range", name, idx)
	}
	return doc.Accessors[idx], nil
}

func primitiveIndices(doc *gltf.Document, prim *gltf.Primitive, vertexCount int) ([]uint32, error) {
	if prim.Indices == nil {
		indices := make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, nil
	}
	if int(*prim.Indices) >= len(doc.Accessors) {
		return nil, errors.Errorf("index accessor %d out of range", *prim.Indices)
	}
	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading indices")
	}
	for _, i := range indices {
		if int(i) >= vertexCount {
			return nil, errors.Errorf("index %d out of range (%d vertices)", i, vertexCount)
		}
	}
	return indices, nil
}

// importMaterial maps a glTF material to a Phong material, or Lambert when unlit.
func importMaterial(doc *gltf.Document, m *gltf.Material) Material {
	out := Material{Name: m.Name, Shading: ShadingPhong}
	if _, ok := m.Extensions["KHR_materials_unlit"]; ok {
		out.Shading = ShadingLambert
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		out.Diffuse = textureFile(doc, pbr.BaseColorTexture.Index)
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		out.NormalMap = textureFile(doc, *m.NormalTexture.Index)
	}
	return out
}

func textureFile(doc *gltf.Document, idx uint32) *Texture {
	if int(idx) >= len(doc.Textures) {
		return nil
	}
	tex := doc.Textures[idx]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return nil
	}
	img := doc.Images[*tex.Source]
	name := img.Name
	if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
		name = img.URI
	}
	if name == "" {
		return nil
	}
	return &Texture{FileName: name}
}
