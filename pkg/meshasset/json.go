package meshasset

import (
	"encoding/json"
	"io"
)

// jsonWriter writes the asset as indented JSON, mainly for inspection and diffing.
type jsonWriter struct{}

func (jsonWriter) Extension() string { return ".json" }

func (jsonWriter) Write(w io.Writer, m *Mesh) error {
	out := *m
	// Empty lists encode as [] rather than null.
	if out.Materials == nil {
		out.Materials = []Material{}
	}
	if out.Vertices == nil {
		out.Vertices = []Vertex{}
	}
	if out.Triangles == nil {
		out.Triangles = []Triangle{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ParseJSON decodes an asset written by the json writer.
func ParseJSON(r io.Reader) (*Mesh, error) {
	var m Mesh
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
