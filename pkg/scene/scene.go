// Package scene describes an imported 3D scene as handed over by an external importer.
// Attribute layers keep the encoding of the source file (mapping mode and reference
// mode) so the conversion pipeline can resolve them itself.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scene errors.
var (
	ErrEmptyScene         = errors.New("scene has no root node")
	ErrUnknownMappingMode = errors.New("unknown mapping mode")
	ErrUnknownRefMode     = errors.New("unknown reference mode")
)

// MappingMode describes how the values of a layer are keyed.
type MappingMode int

const (
	MappingNone            MappingMode = 0 // No mapping
	MappingByControlPoint  MappingMode = 1 // One value per control point
	MappingByPolygonVertex MappingMode = 2 // One value per polygon corner
	MappingByPolygon       MappingMode = 3 // One value per polygon
	MappingByEdge          MappingMode = 4 // One value per edge
	MappingAllSame         MappingMode = 5 // One value for the whole mesh
)

var mappingNames = map[string]MappingMode{
	"none":              MappingNone,
	"by_control_point":  MappingByControlPoint,
	"by_polygon_vertex": MappingByPolygonVertex,
	"by_polygon":        MappingByPolygon,
	"by_edge":           MappingByEdge,
	"all_same":          MappingAllSame,
}

// String returns the source SDK name of the mapping mode.
func (m MappingMode) String() string {
	switch m {
	case MappingNone:
		return "eNone"
	case MappingByControlPoint:
		return "eByControlPoint"
	case MappingByPolygonVertex:
		return "eByPolygonVertex"
	case MappingByPolygon:
		return "eByPolygon"
	case MappingByEdge:
		return "eByEdge"
	case MappingAllSame:
		return "eAllSame"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMappingMode accepts both snake_case names ("by_polygon_vertex") and SDK names
// ("eByPolygonVertex").
func ParseMappingMode(s string) (MappingMode, error) {
	if m, ok := mappingNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	for _, m := range mappingNames {
		if m.String() == s {
			return m, nil
		}
	}
	return MappingNone, fmt.Errorf("%w: %q", ErrUnknownMappingMode, s)
}

// UnmarshalYAML decodes a mapping mode from its name.
func (m *MappingMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseMappingMode(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = parsed
	return nil
}

// ReferenceMode describes whether a layer stores values directly or through an index array.
type ReferenceMode int

const (
	ReferenceDirect        ReferenceMode = 0 // Values stored per key
	ReferenceIndex         ReferenceMode = 1 // Index array only
	ReferenceIndexToDirect ReferenceMode = 2 // Index array into the direct array
)

var referenceNames = map[string]ReferenceMode{
	"direct":          ReferenceDirect,
	"index":           ReferenceIndex,
	"index_to_direct": ReferenceIndexToDirect,
}

// String returns the source SDK name of the reference mode.
func (r ReferenceMode) String() string {
	switch r {
	case ReferenceDirect:
		return "eDirect"
	case ReferenceIndex:
		return "eIndex"
	case ReferenceIndexToDirect:
		return "eIndexToDirect"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// ParseReferenceMode accepts both snake_case names and SDK names.
func ParseReferenceMode(s string) (ReferenceMode, error) {
	if r, ok := referenceNames[strings.ToLower(s)]; ok {
		return r, nil
	}
	for _, r := range referenceNames {
		if r.String() == s {
			return r, nil
		}
	}
	return ReferenceDirect, fmt.Errorf("%w: %q", ErrUnknownRefMode, s)
}

// UnmarshalYAML decodes a reference mode from its name.
func (r *ReferenceMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseReferenceMode(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*r = parsed
	return nil
}

// LayerElement is one attribute layer of a mesh (normals, tangents or uvs).
type LayerElement[T any] struct {
	Mapping   MappingMode   `yaml:"mapping"`
	Reference ReferenceMode `yaml:"reference"`
	Direct    []T           `yaml:"direct"`
	Index     []int         `yaml:"index"`
}

// MaterialLayer assigns material slots to polygons. Its direct array is the owning
// node's material list, so only the index array is carried.
type MaterialLayer struct {
	Mapping   MappingMode   `yaml:"mapping"`
	Reference ReferenceMode `yaml:"reference"`
	Index     []int         `yaml:"index"`
}

// Mesh is the geometry attached to a node. Values are in the source's right-handed,
// y-up coordinate system.
type Mesh struct {
	ControlPoints []mgl64.Vec3               `yaml:"control_points"`
	Polygons      [][]int                    `yaml:"polygons"` // Control point indices per corner
	Normals       []LayerElement[mgl64.Vec3] `yaml:"normals"`
	Tangents      []LayerElement[mgl64.Vec3] `yaml:"tangents"`
	UVs           []LayerElement[mgl64.Vec2] `yaml:"uvs"`
	Materials     []MaterialLayer            `yaml:"materials"`
}

// PolygonVertexCount returns the total number of polygon corners.
func (m *Mesh) PolygonVertexCount() int {
	total := 0
	for _, p := range m.Polygons {
		total += len(p)
	}
	return total
}

// ShadingModel is the material class reported by the importer.
type ShadingModel string

const (
	ShadingLambert ShadingModel = "lambert"
	ShadingPhong   ShadingModel = "phong"
)

// Texture is a file texture bound to a material channel.
type Texture struct {
	FileName string
}

// UnmarshalYAML decodes a texture from its file name.
func (t *Texture) UnmarshalYAML(value *yaml.Node) error {
	return value.Decode(&t.FileName)
}

// MarshalYAML encodes a texture as its file name.
func (t Texture) MarshalYAML() (interface{}, error) {
	return t.FileName, nil
}

// Material is a surface material slot of a node.
type Material struct {
	Name      string       `yaml:"name"`
	Shading   ShadingModel `yaml:"shading"`
	Diffuse   *Texture     `yaml:"diffuse,omitempty"`
	NormalMap *Texture     `yaml:"normal_map,omitempty"`
}

// Node is a scene graph node. A node carries a mesh attribute when Mesh is set.
type Node struct {
	Name      string     `yaml:"name"`
	Mesh      *Mesh      `yaml:"mesh,omitempty"`
	Materials []Material `yaml:"materials,omitempty"`
	Children  []*Node    `yaml:"children,omitempty"`
}

// Scene is an imported scene graph.
type Scene struct {
	Name string `yaml:"name"`
	Root *Node  `yaml:"root"`
}

// FindMeshes returns every node with a mesh attribute, depth first, parents before children.
func (s *Scene) FindMeshes() []*Node {
	var nodes []*Node
	findMeshesRecursive(&nodes, s.Root)
	return nodes
}

func findMeshesRecursive(nodes *[]*Node, node *Node) {
	if node == nil {
		return
	}
	if node.Mesh != nil {
		*nodes = append(*nodes, node)
	}
	for _, child := range node.Children {
		findMeshesRecursive(nodes, child)
	}
}
