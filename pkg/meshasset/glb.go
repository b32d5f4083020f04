package meshasset

import (
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// glbWriter writes a binary glTF preview of the asset. The asset's left-handed data is
// mirrored back along x and the winding swapped again so viewers show it as authored.
// Each material group becomes one primitive.
type glbWriter struct{}

func (glbWriter) Extension() string { return ".glb" }

func (glbWriter) Write(w io.Writer, m *Mesh) error {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "meshconv"

	if len(m.Vertices) > 0 {
		if err := addGLTFMesh(doc, m); err != nil {
			return err
		}
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

func addGLTFMesh(doc *gltf.Document, m *Mesh) error {
	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	tangents := make([][4]float32, len(m.Vertices))
	uvs := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{-v.Position[0], v.Position[1], v.Position[2]}
		normals[i] = [3]float32{-v.Normal[0], v.Normal[1], v.Normal[2]}
		tangents[i] = [4]float32{-v.Tangent[0], v.Tangent[1], v.Tangent[2], 1}
		uvs[i] = [2]float32{v.UV[0], v.UV[1]}
	}

	attributes := map[string]uint32{
		gltf.POSITION:   uint32(modeler.WritePosition(doc, positions)),
		gltf.NORMAL:     uint32(modeler.WriteNormal(doc, normals)),
		gltf.TANGENT:    uint32(modeler.WriteTangent(doc, tangents)),
		gltf.TEXCOORD_0: uint32(modeler.WriteTextureCoord(doc, uvs)),
	}

	for i, mat := range m.Materials {
		name := mat.DiffuseMap
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: name,
			Extras: map[string]string{
				"diffuse_map": mat.DiffuseMap,
				"normal_map":  mat.NormalMap,
			},
		})
	}

	mesh := &gltf.Mesh{Name: "mesh"}
	for _, g := range m.Groups() {
		if int(g.MaterialIndex) >= len(m.Materials) {
			return fmt.Errorf("material index %d out of range (%d materials)", g.MaterialIndex, len(m.Materials))
		}
		indices := make([]uint16, 0, g.TriangleCount*3)
		for _, tri := range m.Triangles[g.StartTriangle : g.StartTriangle+g.TriangleCount] {
			indices = append(indices, tri.V0, tri.V2, tri.V1)
		}
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: attributes,
			Indices:    gltf.Index(uint32(modeler.WriteIndices(doc, indices))),
			Material:   gltf.Index(uint32(g.MaterialIndex)),
		})
	}

	doc.Meshes = []*gltf.Mesh{mesh}
	doc.Nodes = []*gltf.Node{{Name: "mesh", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return nil
}
