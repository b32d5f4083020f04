package meshasset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Binary format errors.
var (
	ErrInvalidMeshMagic       = errors.New("invalid mesh magic: expected 'MESH'")
	ErrUnsupportedMeshVersion = errors.New("unsupported mesh version")
	ErrTruncatedMeshData      = errors.New("truncated mesh data")
	ErrStringTooLong          = errors.New("string too long for mesh file")
)

const (
	meshMagic        = "MESH"
	meshHeaderSize   = 20
	vertexRecordSize = 11 * 4
	triangleSize     = 4 * 2
)

// FormatVersion is the binary mesh file version.
type FormatVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the version written by the binary writer.
var CurrentVersion = FormatVersion{Major: 1, Minor: 0}

// String returns the version as "Major.Minor".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v FormatVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// binaryHeader is the fixed-size file header. All values are little-endian.
type binaryHeader struct {
	Magic         [4]byte
	Major         uint8
	Minor         uint8
	Reserved      uint16
	MaterialCount uint32
	VertexCount   uint32
	TriangleCount uint32
}

// binaryWriter writes the dense binary layout:
//
//	header (20 bytes)
//	materials: uint16 length + bytes, diffuse then normal map
//	vertices:  position, normal, tangent (3 x float32 each), uv (2 x float32)
//	triangles: v0, v1, v2, material index (uint16 each)
type binaryWriter struct{}

func (binaryWriter) Extension() string { return ".mesh" }

func (binaryWriter) Write(w io.Writer, m *Mesh) error {
	buf := new(bytes.Buffer)

	header := binaryHeader{
		Major:         CurrentVersion.Major,
		Minor:         CurrentVersion.Minor,
		MaterialCount: uint32(len(m.Materials)),
		VertexCount:   uint32(len(m.Vertices)),
		TriangleCount: uint32(len(m.Triangles)),
	}
	copy(header.Magic[:], meshMagic)
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, mat := range m.Materials {
		if err := writeString(buf, mat.DiffuseMap); err != nil {
			return err
		}
		if err := writeString(buf, mat.NormalMap); err != nil {
			return err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, m.Vertices); err != nil {
		return fmt.Errorf("writing vertices: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, m.Triangles); err != nil {
		return fmt.Errorf("writing triangles: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

// ParseMesh parses a binary mesh asset from a byte slice.
func ParseMesh(data []byte) (*Mesh, error) {
	if len(data) < meshHeaderSize {
		return nil, ErrTruncatedMeshData
	}

	r := bytes.NewReader(data)

	var header binaryHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, ErrTruncatedMeshData
	}
	if string(header.Magic[:]) != meshMagic {
		return nil, ErrInvalidMeshMagic
	}

	// Older minor versions of the current major are readable; newer ones may
	// carry fields this reader does not know.
	version := FormatVersion{Major: header.Major, Minor: header.Minor}
	if version.Major != CurrentVersion.Major || !CurrentVersion.AtLeast(version.Major, version.Minor) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMeshVersion, version)
	}

	m := &Mesh{}

	// Each material needs at least two length prefixes.
	if int64(header.MaterialCount)*4 > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %d materials", ErrTruncatedMeshData, header.MaterialCount)
	}
	m.Materials = make([]Material, header.MaterialCount)
	for i := range m.Materials {
		var err error
		if m.Materials[i].DiffuseMap, err = readString(r); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		if m.Materials[i].NormalMap, err = readString(r); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
	}

	need := int64(header.VertexCount)*vertexRecordSize + int64(header.TriangleCount)*triangleSize
	if need > int64(r.Len()) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedMeshData, need, r.Len())
	}

	m.Vertices = make([]Vertex, header.VertexCount)
	if err := binary.Read(r, binary.LittleEndian, m.Vertices); err != nil {
		return nil, fmt.Errorf("reading vertices: %w", err)
	}
	m.Triangles = make([]Triangle, header.TriangleCount)
	if err := binary.Read(r, binary.LittleEndian, m.Triangles); err != nil {
		return nil, fmt.Errorf("reading triangles: %w", err)
	}

	return m, nil
}

// ParseMeshFile parses a binary mesh asset from disk.
func ParseMeshFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return ParseMesh(data)
}

func readString(r *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", ErrTruncatedMeshData
	}
	if int(length) > r.Len() {
		return "", ErrTruncatedMeshData
	}
	buf := make([]byte, length)
	r.Read(buf)
	return string(buf), nil
}
