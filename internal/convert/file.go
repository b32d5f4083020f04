package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/pkg/meshasset"
	"github.com/Faultbox/meshconv/pkg/scene"
)

// ConvertFile loads the scene at in, converts it and writes the asset to out
// with w. Diagnostics is nil only if the scene could not be loaded.
func (c *Converter) ConvertFile(in, out string, w meshasset.Writer) (*Diagnostics, error) {
	s, err := scene.LoadFile(in)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", in, err)
	}

	m, diag, err := c.Convert(s)
	if err != nil {
		return diag, err
	}

	if err := meshasset.WriteFile(out, w, m); err != nil {
		return diag, err
	}

	fields := []zap.Field{
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("errors", diag.ErrorCount()),
		zap.Int("warnings", diag.WarningCount()),
	}
	if err := diag.Err(); err != nil {
		c.log.Warn("wrote mesh with errors", append(fields, zap.Error(err))...)
		return diag, nil
	}
	c.log.Info("wrote mesh", fields...)
	return diag, nil
}
