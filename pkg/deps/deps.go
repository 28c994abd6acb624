package deps

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/acknowledge/pkg/errors"
)

// Kind is how a manifest declares a dependency.
type Kind string

const (
	KindNormal   Kind = "normal"
	KindOptional Kind = "optional"
	KindBuild    Kind = "build"
	KindDev      Kind = "dev"
)

// rank orders kinds from least to most restrictive. When one dependency is
// reached through several kinds, the lowest rank wins.
func (k Kind) rank() int {
	switch k {
	case KindNormal:
		return 0
	case KindOptional:
		return 1
	case KindBuild:
		return 2
	case KindDev:
		return 3
	default:
		return 4
	}
}

// Breadth selects which dependency kinds a run includes. Each level
// includes everything the previous one does.
type Breadth string

const (
	// BreadthNonOpt includes normal dependencies only.
	BreadthNonOpt Breadth = "non-opt"
	// BreadthAll adds optional dependencies.
	BreadthAll Breadth = "all"
	// BreadthBuildAndDev adds build and dev dependencies.
	BreadthBuildAndDev Breadth = "build-and-dev"
)

// DefaultBreadth is the breadth used when none is configured.
const DefaultBreadth = BreadthNonOpt

// Breadths lists the valid breadth levels, narrowest first.
var Breadths = []Breadth{BreadthNonOpt, BreadthAll, BreadthBuildAndDev}

// ParseBreadth parses a breadth level. Matching ignores case, hyphens and
// underscores, so "NonOpt", "non_opt" and "non-opt" are equivalent.
func ParseBreadth(s string) (Breadth, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultBreadth, nil
	}
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, b := range Breadths {
		if strings.ReplaceAll(string(b), "-", "") == norm {
			return b, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidBreadth,
		"invalid breadth %q (valid: %s)", s, joinBreadths())
}

func joinBreadths() string {
	names := make([]string, len(Breadths))
	for i, b := range Breadths {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// Includes reports whether dependencies of kind k are in scope at this breadth.
func (b Breadth) Includes(k Kind) bool {
	switch b {
	case BreadthNonOpt:
		return k == KindNormal
	case BreadthAll:
		return k == KindNormal || k == KindOptional
	case BreadthBuildAndDev:
		return k.rank() <= KindDev.rank()
	default:
		return false
	}
}

// Entry is one dependency edge as the manifest layer reports it.
type Entry struct {
	Name       string // Registry package name (after renames)
	Version    string // Version requirement as declared, may be empty
	Kind       Kind
	Repository string // Repository URL declared in the manifest (git dependencies)
}

// Descriptor is a resolved dependency, identified by (Name, Version).
type Descriptor struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Kind       Kind   `json:"kind"`
	Repository string `json:"repository,omitempty"`
}

// String returns "name@version", or just the name when no version is declared.
func (d Descriptor) String() string {
	if d.Version == "" {
		return d.Name
	}
	return fmt.Sprintf("%s@%s", d.Name, d.Version)
}

// Resolve flattens manifest entries into descriptors for the given breadth.
//
// Entries whose kind is outside the breadth are dropped. The remaining
// entries are deduplicated by (name, version); a dependency reached through
// several kinds keeps the least restrictive one (normal, optional, build,
// dev). A repository URL declared on any of the merged entries is kept.
// The result is sorted by name, then version.
func Resolve(entries []Entry, breadth Breadth) []Descriptor {
	type key struct{ name, version string }
	byKey := make(map[key]*Descriptor)

	for _, e := range entries {
		if e.Name == "" || !breadth.Includes(e.Kind) {
			continue
		}
		k := key{e.Name, e.Version}
		d, ok := byKey[k]
		if !ok {
			byKey[k] = &Descriptor{Name: e.Name, Version: e.Version, Kind: e.Kind, Repository: e.Repository}
			continue
		}
		if e.Kind.rank() < d.Kind.rank() {
			d.Kind = e.Kind
		}
		if d.Repository == "" {
			d.Repository = e.Repository
		}
	}

	out := make([]Descriptor, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}
