package meshasset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrUnknownFormat is returned by NewWriter for unsupported format names.
var ErrUnknownFormat = errors.New("unknown export format")

// DefaultFormat is used when no format name is given.
const DefaultFormat = "binary"

// Writer serializes a mesh asset.
type Writer interface {
	// Write encodes m to w.
	Write(w io.Writer, m *Mesh) error
	// Extension is the conventional file extension, including the dot.
	Extension() string
}

var writers = map[string]func() Writer{
	"binary": func() Writer { return binaryWriter{} },
	"json":   func() Writer { return jsonWriter{} },
	"glb":    func() Writer { return glbWriter{} },
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewWriter returns the writer registered for format. An empty name selects DefaultFormat.
func NewWriter(format string) (Writer, error) {
	if format == "" {
		format = DefaultFormat
	}
	newWriter, ok := writers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return newWriter(), nil
}

// WriteFile encodes m with w into path, creating parent directories as needed.
func WriteFile(path string, w Writer, m *Mesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := w.Write(f, m); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
