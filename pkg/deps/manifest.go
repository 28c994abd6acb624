package deps

import (
	"fmt"
	"path/filepath"
)

// ManifestParser reads dependency entries from a project descriptor file.
type ManifestParser interface {
	// Parse reads the manifest at path. A directory is resolved to the
	// parser's default file name inside it.
	Parse(path string) (*Manifest, error)
	// ParseBytes parses manifest content that did not come from disk.
	// Workspace members cannot be followed.
	ParseBytes(data []byte) (*Manifest, error)
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Type returns the manifest type identifier (e.g., "cargo").
	Type() string
}

// Manifest holds the parsed dependency entries of a project.
type Manifest struct {
	Type    string   // Parser type that produced this result
	Root    string   // Root package name, empty for virtual workspaces
	Path    string   // Manifest file that was read, empty for ParseBytes
	Entries []Entry  // Dependency edges, including workspace members'
	Members []string // Workspace member manifests that were followed
}

// DetectManifest finds a parser that supports the given file path.
// Returns an error if no parser matches.
func DetectManifest(path string, parsers ...ManifestParser) (ManifestParser, error) {
	name := filepath.Base(path)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported manifest: %s", name)
}
