// Package convert turns a scene mesh into a renderer-ready mesh asset.
//
// A conversion runs Extract, Repair, Dedup, Sort and Build in sequence. Only
// a missing mesh or an asset too large for 16-bit indices stop it; every
// other anomaly is recorded in the returned Diagnostics and the best
// achievable asset is still produced.
package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/pkg/meshasset"
	"github.com/Faultbox/meshconv/pkg/scene"
)

// Options control a Converter.
type Options struct {
	// WarningsAsErrors records every warning as an error.
	WarningsAsErrors bool
	// Verbose logs progress at info level instead of debug.
	Verbose bool
}

// Converter converts scenes. It holds no state between conversions and is
// safe for concurrent use.
type Converter struct {
	log  *zap.Logger
	opts Options
}

// New creates a converter logging to log. A nil log discards output.
func New(log *zap.Logger, opts Options) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{log: log, opts: opts}
}

// Convert converts the first mesh node of s. The returned Diagnostics is never
// nil. The error is non-nil only when no asset could be built.
func (c *Converter) Convert(s *scene.Scene) (*meshasset.Mesh, *Diagnostics, error) {
	diag := newDiagnostics(c.log.With(zap.String("scene", s.Name)), c.opts)

	nodes := s.FindMeshes()
	if len(nodes) == 0 {
		diag.reportError(ErrNoMesh)
		return nil, diag, ErrNoMesh
	}
	if len(nodes) > 1 {
		// One occurrence per ignored node.
		diag.reportWarning(fmt.Errorf("%d mesh nodes: %w", len(nodes), ErrMultipleMeshes), len(nodes)-1)
	}
	diag.trace("converting mesh", zap.String("node", nodes[0].Name))

	g := extract(nodes[0], diag)
	r := repair(g, diag)
	d := dedup(r.vertices, diag)
	sortByMaterial(r.triangles)

	m, err := build(r.materials, d, r.triangles)
	if err != nil {
		diag.reportError(err)
		return nil, diag, err
	}
	return m, diag, nil
}
