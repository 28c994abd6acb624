package rust

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/acknowledge/pkg/deps"
	"github.com/matzehuels/acknowledge/pkg/errors"
)

// ManifestName is the file a directory argument resolves to.
const ManifestName = "Cargo.toml"

// CargoToml parses Cargo manifests, following workspace members.
type CargoToml struct{}

func (CargoToml) Type() string              { return "cargo" }
func (CargoToml) Supports(name string) bool { return strings.EqualFold(name, ManifestName) }

// Parse reads the manifest at path (or path/Cargo.toml for a directory)
// and every workspace member it lists.
func (c CargoToml) Parse(path string) (*deps.Manifest, error) {
	if err := errors.ValidateManifestPath(path); err != nil {
		return nil, err
	}
	file, err := manifestFile(path)
	if err != nil {
		return nil, err
	}

	p := &cargoParser{visited: make(map[string]bool)}
	m := &deps.Manifest{Type: c.Type(), Path: file}
	root, err := p.parseFile(file, nil, m)
	if err != nil {
		return nil, err
	}
	m.Root = root.Package.Name
	return m, nil
}

// ParseBytes parses a single manifest. Workspace members are not followed
// since there is no directory to resolve them against.
func (c CargoToml) ParseBytes(data []byte) (*deps.Manifest, error) {
	cargo, err := decode(data, "manifest")
	if err != nil {
		return nil, err
	}
	m := &deps.Manifest{Type: c.Type(), Root: cargo.Package.Name}
	m.Entries = collectEntries(cargo, nil)
	return m, nil
}

func manifestFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	if info.IsDir() {
		path = filepath.Join(path, ManifestName)
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
		}
	}
	return path, nil
}

type cargoParser struct {
	visited map[string]bool
}

// parseFile appends the entries of one manifest to m and recurses into its
// workspace members. inherited is the enclosing workspace's dependency
// table, used to resolve `workspace = true` entries.
func (p *cargoParser) parseFile(path string, inherited map[string]any, m *deps.Manifest) (*cargoFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.visited[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	cargo, err := decode(data, path)
	if err != nil {
		return nil, err
	}

	ws := inherited
	if cargo.Workspace != nil {
		ws = cargo.Workspace.Dependencies
	}
	m.Entries = append(m.Entries, collectEntries(cargo, ws)...)

	if cargo.Workspace == nil {
		return cargo, nil
	}

	members, err := expandMembers(filepath.Dir(path), cargo.Workspace.Members, cargo.Workspace.Exclude)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		memberAbs, _ := filepath.Abs(member)
		if p.visited[memberAbs] {
			continue
		}
		m.Members = append(m.Members, member)
		if _, err := p.parseFile(member, ws, m); err != nil {
			return nil, err
		}
	}
	return cargo, nil
}

// expandMembers resolves member patterns relative to dir into manifest
// paths. Glob matches without a Cargo.toml are skipped; a literal member
// without one is an error.
func expandMembers(dir string, patterns, exclude []string) ([]string, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excluded[filepath.Clean(filepath.Join(dir, e))] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		full := filepath.Join(dir, pattern)
		isGlob := strings.ContainsAny(pattern, "*?[")

		matches := []string{full}
		if isGlob {
			var err error
			if matches, err = filepath.Glob(full); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "workspace member pattern %q", pattern)
			}
			sort.Strings(matches)
		}

		for _, match := range matches {
			match = filepath.Clean(match)
			if excluded[match] || seen[match] {
				continue
			}
			manifest := filepath.Join(match, ManifestName)
			if _, err := os.Stat(manifest); err != nil {
				if isGlob {
					continue
				}
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "workspace member %q", pattern)
			}
			seen[match] = true
			out = append(out, manifest)
		}
	}
	return out, nil
}

func decode(data []byte, name string) (*cargoFile, error) {
	var cargo cargoFile
	if _, err := toml.Decode(string(data), &cargo); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	return &cargo, nil
}

// collectEntries lists every dependency edge of one manifest: its own
// tables, platform-specific tables and, for workspace roots, the shared
// workspace table.
func collectEntries(cargo *cargoFile, ws map[string]any) []deps.Entry {
	var out []deps.Entry
	out = appendEntries(out, cargo.Dependencies, deps.KindNormal, ws)
	out = appendEntries(out, cargo.DevDependencies, deps.KindDev, ws)
	out = appendEntries(out, cargo.BuildDependencies, deps.KindBuild, ws)

	targets := make([]string, 0, len(cargo.Target))
	for name := range cargo.Target {
		targets = append(targets, name)
	}
	sort.Strings(targets)
	for _, name := range targets {
		t := cargo.Target[name]
		out = appendEntries(out, t.Dependencies, deps.KindNormal, ws)
		out = appendEntries(out, t.DevDependencies, deps.KindDev, ws)
		out = appendEntries(out, t.BuildDependencies, deps.KindBuild, ws)
	}

	if cargo.Workspace != nil {
		out = appendEntries(out, cargo.Workspace.Dependencies, deps.KindNormal, nil)
	}
	return out
}

func appendEntries(out []deps.Entry, table map[string]any, kind deps.Kind, ws map[string]any) []deps.Entry {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		spec, ok := parseSpec(table[key])
		if !ok {
			continue
		}
		if spec.Workspace {
			if base, ok := parseSpec(ws[key]); ok {
				spec = base.inherit(spec)
			}
		}
		// Local crates are part of this project, not dependencies.
		if spec.Path != "" && spec.Git == "" {
			continue
		}

		name := key
		if spec.Package != "" {
			name = spec.Package
		}
		k := kind
		if spec.Optional && kind == deps.KindNormal {
			k = deps.KindOptional
		}
		out = append(out, deps.Entry{
			Name:       name,
			Version:    spec.Version,
			Kind:       k,
			Repository: spec.Git,
		})
	}
	return out
}

// depSpec is the detailed form of a dependency declaration.
type depSpec struct {
	Version   string
	Package   string
	Git       string
	Path      string
	Optional  bool
	Workspace bool
}

// parseSpec accepts both `name = "1.0"` and `name = { version = "1.0", ... }`.
func parseSpec(v any) (depSpec, bool) {
	switch t := v.(type) {
	case string:
		return depSpec{Version: t}, true
	case map[string]any:
		s := depSpec{
			Version: str(t["version"]),
			Package: str(t["package"]),
			Git:     str(t["git"]),
			Path:    str(t["path"]),
		}
		s.Optional, _ = t["optional"].(bool)
		s.Workspace, _ = t["workspace"].(bool)
		return s, true
	default:
		return depSpec{}, false
	}
}

// inherit applies a member's `workspace = true` declaration on top of the
// workspace definition. Members may only add optional.
func (base depSpec) inherit(member depSpec) depSpec {
	base.Optional = base.Optional || member.Optional
	base.Workspace = false
	return base
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

type depTables struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

type cargoFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"` // string, or {workspace = true}
	} `toml:"package"`
	depTables
	Target    map[string]depTables `toml:"target"`
	Workspace *struct {
		Members      []string       `toml:"members"`
		Exclude      []string       `toml:"exclude"`
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

var _ deps.ManifestParser = CargoToml{}
