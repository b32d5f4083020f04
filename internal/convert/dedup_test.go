package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func testDiagnostics() *Diagnostics {
	return newDiagnostics(zap.NewNop(), Options{})
}

func vertexAt(x float32) vertex {
	return vertex{
		position: mgl32.Vec3{x, 0, 0},
		normal:   defaultNormal,
		tangent:  defaultTangent,
		uv:       defaultUV,
	}
}

func TestDedup(t *testing.T) {
	a, b, c := vertexAt(1), vertexAt(2), vertexAt(3)
	diag := testDiagnostics()

	res := dedup([]vertex{a, b, a, c, b, a}, diag)

	if len(res.vertices) != 3 {
		t.Fatalf("expected 3 unique vertices, got %d", len(res.vertices))
	}
	want := []int{0, 1, 0, 2, 1, 0}
	for i := range want {
		if res.remap[i] != want[i] {
			t.Errorf("remap[%d] = %d, want %d", i, res.remap[i], want[i])
		}
	}
	if res.vertices[2] != c {
		t.Errorf("expected first-seen order, got %+v", res.vertices)
	}
	if len(diag.Entries()) != 0 {
		t.Errorf("expected no diagnostics, got %+v", diag.Entries())
	}
}

func TestDedup_SignedZero(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	a := vertexAt(0)
	b := vertexAt(negZero)

	res := dedup([]vertex{a, b}, testDiagnostics())
	if len(res.vertices) != 1 {
		t.Errorf("expected +0 and -0 to share a vertex, got %d vertices", len(res.vertices))
	}
}

func TestDedup_EqualTuplesShareIndex(t *testing.T) {
	var vertices []vertex
	for i := 0; i < 200; i++ {
		vertices = append(vertices, vertexAt(float32(i%17)))
	}

	res := dedup(vertices, testDiagnostics())
	if len(res.vertices) != 17 {
		t.Errorf("expected 17 unique vertices, got %d", len(res.vertices))
	}
	for i := range vertices {
		for j := range vertices {
			if vertices[i] == vertices[j] && res.remap[i] != res.remap[j] {
				t.Fatalf("vertices %d and %d are equal but map to %d and %d", i, j, res.remap[i], res.remap[j])
			}
		}
	}
}

func TestDedup_ChecksumCollision(t *testing.T) {
	a, b := vertexAt(1), vertexAt(2)
	diag := testDiagnostics()
	constant := func(vertexKey) uint64 { return 42 }

	res := dedupWith([]vertex{a, b, a, b}, constant, diag)

	// b collides with a each time and is never stored under the checksum.
	want := []int{0, 1, 0, 2}
	for i := range want {
		if res.remap[i] != want[i] {
			t.Errorf("remap[%d] = %d, want %d", i, res.remap[i], want[i])
		}
	}
	if len(res.vertices) != 3 {
		t.Errorf("expected 3 unique vertices, got %d", len(res.vertices))
	}

	if diag.WarningCount() != 1 || diag.Occurrences(ErrChecksumCollision) != 2 {
		t.Errorf("expected one aggregate collision warning for 2 vertices, got %+v", diag.Entries())
	}
	if !errors.Is(diag.Entries()[0].Err, ErrChecksumCollision) {
		t.Errorf("unexpected diagnostic: %v", diag.Entries()[0].Err)
	}
}

func TestChecksum(t *testing.T) {
	a := vertexAt(1)
	b := vertexAt(1)
	c := vertexAt(1.0000001)

	if checksum(a.key()) != checksum(b.key()) {
		t.Error("equal vertices must have equal checksums")
	}
	if checksum(a.key()) == checksum(c.key()) {
		t.Error("expected different checksums for different vertices")
	}
}
