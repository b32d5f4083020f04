package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"brick.png", "brick"},
		{`C:\art\textures\brick.png`, "brick"},
		{"textures/brick_n.tga", "brick_n"},
		{"../shared/rock.detail.dds", "rock.detail"},
		{"noext", "noext"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := baseName(tt.in); got != tt.want {
				t.Errorf("baseName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertVec3(t *testing.T) {
	got := convertVec3(mgl64.Vec3{1, 2, 3})
	if got != (mgl32.Vec3{-1, 2, 3}) {
		t.Errorf("got %v, want [-1 2 3]", got)
	}
}

func TestConvertUV(t *testing.T) {
	got := convertUV(mgl64.Vec2{0.25, 0.75})
	if got != (mgl32.Vec2{0.25, 0.25}) {
		t.Errorf("got %v, want [0.25 0.25]", got)
	}
}

func TestSortByMaterial(t *testing.T) {
	tris := []triangle{{material: 3}, {material: 0}, {material: 2}, {material: 0}, {material: 1}}
	sortByMaterial(tris)

	for i := 1; i < len(tris); i++ {
		if tris[i-1].material > tris[i].material {
			t.Fatalf("not sorted at %d: %+v", i, tris)
		}
	}
}

func TestBuild(t *testing.T) {
	d := dedupResult{
		vertices: []vertex{vertexAt(0), vertexAt(1), vertexAt(2)},
		remap:    []int{0, 1, 2, 2, 1, 0},
	}
	tris := []triangle{
		{corners: [3]int{0, 1, 2}, material: 0},
		{corners: [3]int{3, 4, 5}, material: 1},
	}
	materials := []material{{diffuse: "a.png", normal: "a_n.png"}, {}}

	m, err := build(materials, d, tris)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if m.Triangles[0].V0 != 0 || m.Triangles[0].V1 != 2 || m.Triangles[0].V2 != 1 {
		t.Errorf("expected swapped winding, got %+v", m.Triangles[0])
	}
	if m.Triangles[1].V0 != 2 || m.Triangles[1].V1 != 0 || m.Triangles[1].V2 != 1 || m.Triangles[1].MaterialIndex != 1 {
		t.Errorf("unexpected triangle 1: %+v", m.Triangles[1])
	}
	if m.Materials[0].DiffuseMap != "a" || m.Materials[0].NormalMap != "a_n" {
		t.Errorf("unexpected material 0: %+v", m.Materials[0])
	}
	if m.Vertices[2].Position != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("unexpected vertex 2: %+v", m.Vertices[2])
	}
}

func TestBuild_IndexOverflow(t *testing.T) {
	tests := []struct {
		name      string
		vertices  int
		materials int
		wantErr   bool
	}{
		{"largest vertex buffer", math.MaxUint16 + 1, 1, false},
		{"too many vertices", math.MaxUint16 + 2, 1, true},
		{"too many materials", 1, math.MaxUint16 + 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dedupResult{vertices: make([]vertex, tt.vertices)}
			materials := make([]material, tt.materials)

			_, err := build(materials, d, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrIndexOverflow) {
					t.Errorf("expected ErrIndexOverflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
