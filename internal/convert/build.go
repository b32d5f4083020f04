package convert

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/Faultbox/meshconv/pkg/meshasset"
)

// sortByMaterial orders triangles by ascending material index. The order of
// triangles sharing a material is unspecified.
func sortByMaterial(tris []triangle) {
	sort.Slice(tris, func(i, j int) bool {
		return tris[i].material < tris[j].material
	})
}

// build projects the consolidated mesh into the asset. Corner indices of the
// triangles are remapped to unique vertices and corners 1 and 2 are swapped,
// keeping triangles front facing after the handedness flip.
func build(materials []material, d dedupResult, tris []triangle) (*meshasset.Mesh, error) {
	if n := len(d.vertices); n > math.MaxUint16+1 {
		return nil, fmt.Errorf("%d unique vertices: %w", n, ErrIndexOverflow)
	}
	if n := len(materials); n > math.MaxUint16+1 {
		return nil, fmt.Errorf("%d materials: %w", n, ErrIndexOverflow)
	}

	m := &meshasset.Mesh{
		Materials: make([]meshasset.Material, len(materials)),
		Vertices:  make([]meshasset.Vertex, len(d.vertices)),
		Triangles: make([]meshasset.Triangle, len(tris)),
	}

	for i, mat := range materials {
		m.Materials[i] = meshasset.Material{
			DiffuseMap: baseName(mat.diffuse),
			NormalMap:  baseName(mat.normal),
		}
	}

	for i, v := range d.vertices {
		m.Vertices[i] = meshasset.Vertex{
			Position: v.position,
			Normal:   v.normal,
			Tangent:  v.tangent,
			UV:       v.uv,
		}
	}

	for i, t := range tris {
		m.Triangles[i] = meshasset.Triangle{
			V0:            uint16(d.remap[t.corners[0]]),
			V1:            uint16(d.remap[t.corners[2]]),
			V2:            uint16(d.remap[t.corners[1]]),
			MaterialIndex: uint16(t.material),
		}
	}

	return m, nil
}

// baseName strips directories and the extension from a texture file name.
// Both slash styles are separators.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
