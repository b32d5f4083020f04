package convert

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// The intermediate graph is an arena: polygons and control points refer to
// polygon vertices by their index in meshGraph.corners.

// unresolvedVertex is a polygon vertex while layers are applied. A nil field
// has not been written by any layer yet.
type unresolvedVertex struct {
	position mgl32.Vec3
	normal   *mgl32.Vec3
	tangent  *mgl32.Vec3
	uv       *mgl32.Vec2
}

type controlPoint struct {
	position mgl32.Vec3
	corners  []int
}

type polygon struct {
	corners  [3]int
	material *int
}

// material holds texture file names as found in the scene.
type material struct {
	diffuse string
	normal  string
}

type meshGraph struct {
	controlPoints []controlPoint
	corners       []unresolvedVertex
	polygons      []polygon
	materials     []material

	// Sizes of the source mesh. They exceed the extracted sizes when
	// extraction stopped early.
	sourceCorners  int
	sourcePolygons int
}

// vertex is a fully resolved attribute tuple.
type vertex struct {
	position mgl32.Vec3
	normal   mgl32.Vec3
	tangent  mgl32.Vec3
	uv       mgl32.Vec2
}

type triangle struct {
	corners  [3]int
	material int
}

// repairedMesh is the graph after missing data has been filled in. vertices
// holds one entry per polygon vertex.
type repairedMesh struct {
	materials []material
	vertices  []vertex
	triangles []triangle
}

// toLeftHanded negates depth, then turns a half turn about the up axis.
var toLeftHanded = mgl64.Mat3{
	-1, 0, 0,
	0, 1, 0,
	0, 0, -1,
}.Mul3(mgl64.Diag3(mgl64.Vec3{1, 1, -1}))

// convertVec3 maps a right-handed y-up source vector into target space.
func convertVec3(v mgl64.Vec3) mgl32.Vec3 {
	t := toLeftHanded.Mul3x1(v)
	return mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
}

// convertUV moves the texture origin from bottom-left to top-left.
func convertUV(uv mgl64.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{float32(uv[0]), float32(1 - uv[1])}
}
