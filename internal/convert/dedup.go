package convert

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"go.uber.org/zap"
)

// vertexKey is the bit pattern of a vertex with negative zero folded into
// positive zero. Equal keys mean equal attribute tuples.
type vertexKey [11]uint32

func (v vertex) key() vertexKey {
	var k vertexKey
	floats := [11]float32{
		v.position[0], v.position[1], v.position[2],
		v.normal[0], v.normal[1], v.normal[2],
		v.tangent[0], v.tangent[1], v.tangent[2],
		v.uv[0], v.uv[1],
	}
	for i, f := range floats {
		if f == 0 {
			f = 0
		}
		k[i] = math.Float32bits(f)
	}
	return k
}

// checksum is the FNV-1a hash of a vertex key.
func checksum(k vertexKey) uint64 {
	var buf [len(k) * 4]byte
	for i, bits := range k {
		binary.LittleEndian.PutUint32(buf[i*4:], bits)
	}
	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}

// dedupResult is the unique vertex buffer and, for every polygon vertex, the
// index of its unique vertex.
type dedupResult struct {
	vertices []vertex
	remap    []int
}

func dedup(vertices []vertex, diag *Diagnostics) dedupResult {
	return dedupWith(vertices, checksum, diag)
}

// dedupWith collapses equal vertices in first-seen order. Each checksum keeps
// the first vertex stored under it; a vertex whose checksum matches but whose
// tuple differs is a collision and gets a new unique vertex without replacing
// the stored one.
func dedupWith(vertices []vertex, hash func(vertexKey) uint64, diag *Diagnostics) dedupResult {
	type candidate struct {
		key    vertexKey
		unique int
	}

	res := dedupResult{remap: make([]int, len(vertices))}
	seen := make(map[uint64]candidate, len(vertices))
	collisions := 0

	for i, v := range vertices {
		k := v.key()
		sum := hash(k)

		if c, ok := seen[sum]; ok {
			if c.key == k {
				res.remap[i] = c.unique
				continue
			}
			collisions++
		}

		res.remap[i] = len(res.vertices)
		res.vertices = append(res.vertices, v)
		if _, ok := seen[sum]; !ok {
			seen[sum] = candidate{key: k, unique: res.remap[i]}
		}
	}

	if collisions > 0 {
		diag.reportWarning(fmt.Errorf("%d vertices: %w", collisions, ErrChecksumCollision), collisions)
	}
	diag.trace("found unique vertices", zap.Int("count", len(res.vertices)))
	return res
}
