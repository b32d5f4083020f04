package convert

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshconv/pkg/scene"
)

// Fatal errors. Convert returns these and produces no asset.
var (
	ErrNoMesh        = errors.New("no mesh found in scene")
	ErrIndexOverflow = errors.New("index exceeds 16-bit range")
)

// Errors recorded in Diagnostics while conversion continues.
var (
	ErrNonTriangle         = errors.New("polygon is not a triangle")
	ErrInvalidControlPoint = errors.New("polygon references a missing control point")
	ErrAttributeConflict   = errors.New("attribute already set")
	ErrLayerOutOfRange     = errors.New("layer entry out of range")
	ErrAllSameIndexCount   = errors.New("all-same layer must hold exactly one index")
	ErrMaterialOutOfRange  = errors.New("material index out of range")
	ErrUnknownShading      = errors.New("unknown material class")
	ErrMissingTexture      = errors.New("texture not found on material")
	ErrNoMaterials         = errors.New("no materials found")
)

// Warnings recorded in Diagnostics.
var (
	ErrMissingAttribute  = errors.New("attribute missing")
	ErrChecksumCollision = errors.New("false positive duplicate vertex checksum")
	ErrMultipleMeshes    = errors.New("multiple meshes found, only the first is used")
)

// UnsupportedEncodingError reports a layer whose mapping and reference modes
// have no resolver. The layer is skipped.
type UnsupportedEncodingError struct {
	Layer     string
	Mapping   scene.MappingMode
	Reference scene.ReferenceMode
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("%s: unsupported encoding %s/%s", e.Layer, e.Mapping, e.Reference)
}
