package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSceneFormat is returned by LoadFile for unsupported file extensions.
var ErrUnknownSceneFormat = errors.New("unknown scene file format")

// ParseYAML parses a YAML scene description.
func ParseYAML(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if s.Root == nil {
		return nil, ErrEmptyScene
	}
	return &s, nil
}

// ParseYAMLFile parses a YAML scene description from disk.
func ParseYAMLFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	s, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// IsSceneFile reports whether LoadFile knows how to read path.
func IsSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".gltf", ".glb":
		return true
	}
	return false
}

// LoadFile loads a scene, picking the importer from the file extension.
func LoadFile(path string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAMLFile(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSceneFormat, filepath.Ext(path))
	}
}
